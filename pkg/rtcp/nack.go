package rtcp

import (
	pionrtcp "github.com/pion/rtcp"
)

const (
	fmtGenericNACK uint8 = 1 // RTPFB, FMT=1: Generic NACK (RFC 4585 §6.2.1)
	nackEntrySize        = 4 // pid (2 bytes) + blp (2 bytes)
	nackFCIOffset        = 8 // sender SSRC, media SSRC precede the FCI
)

// GetNacks iterates every RTPFB/FMT=1 sub-packet in buf and expands its
// FCI entries into the RTP sequence numbers being NACKed, per RFC 4585
// §6.2.1: for each (pid, blp) pair, pid itself is emitted, then for every set
// bit i in [0,16) of blp, pid+1+i (mod 2^16) is emitted. Entries are
// emitted in sub-packet order, then intra-entry pid-then-blp-bit order;
// the result is order-preserving and may contain duplicates across
// sub-packets.
func GetNacks(buf []byte) ([]uint16, error) {
	var out []uint16
	err := walk(buf, func(sp SubPacket) error {
		if sp.Type != pionrtcp.TypeTransportSpecificFeedback || sp.FMT != fmtGenericNACK {
			return nil
		}
		body := sp.Body(buf)
		if len(body) < nackFCIOffset {
			return ErrMalformed
		}
		body = body[nackFCIOffset:]
		for off := 0; off+nackEntrySize <= len(body); off += nackEntrySize {
			pid, ok := readUint16At(body, off)
			if !ok {
				return ErrMalformed
			}
			blp, ok := readUint16At(body, off+2)
			if !ok {
				return ErrMalformed
			}
			out = append(out, pid)
			for i := uint(0); i < 16; i++ {
				if blp&(1<<i) != 0 {
					out = append(out, pid+1+uint16(i))
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
