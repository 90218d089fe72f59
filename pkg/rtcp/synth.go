package rtcp

import (
	pionrtcp "github.com/pion/rtcp"
)

const (
	rembBufLen = 24
	firBufLen  = 20
	pliBufLen  = 12
)

// EmitREMB marshals a single-SSRC PSFB/REMB sub-packet reporting
// bitrate into out. out must be at least 24 bytes; only the first 24
// are written. Sender and media SSRC are left 0, to be filled in by
// the caller (e.g. via FixSSRC) where a non-zero sender is needed.
//
// The FCI is packed with the same encodeREMB/encodeREMBInto helpers
// CapREMB uses, rather than pionrtcp's own REMB struct: that type
// encodes its Bitrate field as a float32, and nothing guarantees its
// internal exponent choice is the smallest one whose mantissa fits in
// 18 bits, which is the encoding CapREMB emits.
func EmitREMB(out []byte, bitrate uint64) error {
	if len(out) < rembBufLen {
		return ErrBufferTooSmall
	}
	hdr := pionrtcp.Header{
		Count:  fmtREMB,
		Type:   pionrtcp.TypePayloadSpecificFeedback,
		Length: uint16(rembBufLen/4 - 1),
	}
	raw, err := hdr.Marshal()
	if err != nil || len(raw) != headerLen {
		return ErrMalformed
	}
	copy(out[:headerLen], raw)
	for i := headerLen; i < rembFCIOffset; i++ {
		out[i] = 0 // sender SSRC, media SSRC
	}

	fci := out[rembFCIOffset:rembBufLen]
	copy(fci[:rembIdentLen], rembIdent[:])
	fci[rembNumSSRCOff] = 1
	exp, mantissa := encodeREMB(bitrate)
	encodeREMBInto(fci, exp, mantissa)
	for i := rembExpMantOff + 3; i < len(fci); i++ {
		fci[i] = 0 // one feedback SSRC slot, value 0
	}
	return nil
}

// EmitFIR marshals a PSFB/FMT=4 Full Intra Request into out (at least
// 20 bytes), using and post-incrementing *seqnr modulo 256 as its FIR
// command sequence number, per RFC 5104 §4.3.1.1.
func EmitFIR(out []byte, seqnr *uint8) error {
	if len(out) < firBufLen {
		return ErrBufferTooSmall
	}
	pkt := &pionrtcp.FullIntraRequest{
		SenderSSRC: 0,
		MediaSSRC:  0,
		FIR: []pionrtcp.FIREntry{
			{SSRC: 0, SequenceNumber: *seqnr},
		},
	}
	raw, err := pkt.Marshal()
	if err != nil || len(raw) != firBufLen {
		return ErrMalformed
	}
	copy(out[:firBufLen], raw)
	*seqnr++
	return nil
}

// EmitPLI marshals a PSFB/FMT=1 Picture Loss Indication into out (at
// least 12 bytes), per RFC 4585 §6.3.1.
func EmitPLI(out []byte) error {
	if len(out) < pliBufLen {
		return ErrBufferTooSmall
	}
	pkt := &pionrtcp.PictureLossIndication{
		SenderSSRC: 0,
		MediaSSRC:  0,
	}
	raw, err := pkt.Marshal()
	if err != nil || len(raw) != pliBufLen {
		return ErrMalformed
	}
	copy(out[:pliBufLen], raw)
	return nil
}
