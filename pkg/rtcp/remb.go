package rtcp

import (
	"bytes"

	pionrtcp "github.com/pion/rtcp"
)

const (
	fmtREMB uint8 = 15 // PSFB, FMT=15: REMB (draft-alvestrand-rmcat-remb-03)

	rembFCIOffset    = headerLen + 4 + 4 // sender SSRC, media SSRC
	rembIdentOffset  = 0                 // "REMB", relative to FCI
	rembIdentLen     = 4
	rembNumSSRCOff   = rembIdentLen
	rembExpMantOff   = rembIdentLen + 1
	rembMantissaBits = 18
	rembMantissaMax  = (1 << rembMantissaBits) - 1
)

var rembIdent = [rembIdentLen]byte{'R', 'E', 'M', 'B'}

// CapREMB locates the PSFB/REMB sub-packet in buf and, if its decoded
// bitrate exceeds maxBitrate, re-encodes maxBitrate into the (exp,
// mantissa) pair in place. It leaves the "REMB"
// identifier, num_ssrc, and the feedback SSRC list untouched. Returns
// ErrUnknownFeedback if no REMB sub-packet is present, ErrMalformed if
// one is present but too short to hold a single feedback SSRC.
func CapREMB(buf []byte, maxBitrate uint64) error {
	found := false
	err := walk(buf, func(sp SubPacket) error {
		if sp.Type != pionrtcp.TypePayloadSpecificFeedback || sp.FMT != fmtREMB {
			return nil
		}
		body := sp.Body(buf)
		if len(body) < rembFCIOffset-headerLen+rembExpMantOff+3+4 {
			return ErrMalformed
		}
		fci := body[rembFCIOffset-headerLen:]
		if !bytes.Equal(fci[:rembIdentLen], rembIdent[:]) {
			return nil
		}
		found = true

		exp, mantissa := decodeREMB(fci)
		current := mantissa << exp
		if current <= maxBitrate {
			return nil
		}

		newExp, newMantissa := encodeREMB(maxBitrate)
		encodeREMBInto(fci, newExp, newMantissa)
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrUnknownFeedback
	}
	return nil
}

// decodeREMB reads the current (exp, mantissa) pair out of a REMB FCI
// body (the slice starting at the "REMB" identifier).
func decodeREMB(fci []byte) (exp uint, mantissa uint64) {
	b1 := fci[rembExpMantOff]
	b2 := fci[rembExpMantOff+1]
	b3 := fci[rembExpMantOff+2]
	exp = uint(b1 >> 2)
	mantissa = uint64(b1&0x03)<<16 | uint64(b2)<<8 | uint64(b3)
	return exp, mantissa
}

// encodeREMB picks the smallest exponent such that bitrate>>exp fits in
// 18 bits.
func encodeREMB(bitrate uint64) (exp uint, mantissa uint64) {
	for exp = 0; exp < 64; exp++ {
		if bitrate>>exp <= rembMantissaMax {
			return exp, bitrate >> exp
		}
	}
	return 63, bitrate >> 63
}

// encodeREMBInto packs (exp, mantissa) into the three bytes following
// num_ssrc in a REMB FCI body, preserving everything else.
func encodeREMBInto(fci []byte, exp uint, mantissa uint64) {
	fci[rembExpMantOff] = byte(exp<<2) | byte((mantissa>>16)&0x03)
	fci[rembExpMantOff+1] = byte((mantissa >> 8) & 0xFF)
	fci[rembExpMantOff+2] = byte(mantissa & 0xFF)
}
