package rtcp

import (
	pionrtcp "github.com/pion/rtcp"
)

const headerLen = 4

// SubPacket is one element of a compound RTCP packet walk: its type,
// its FMT/RC subtype, and the byte range it spans in the original
// buffer (header included).
type SubPacket struct {
	Type   pionrtcp.PacketType
	FMT    uint8
	Offset int // offset of the sub-packet's header within the compound buffer
	Length int // total byte length of this sub-packet, header included
}

// Body returns the sub-packet's payload (everything after the 4-byte
// common header) as a slice aliasing the original buffer.
func (s SubPacket) Body(buf []byte) []byte {
	return buf[s.Offset+headerLen : s.Offset+s.Length]
}

// Parse walks buf and reports whether it is a well-formed compound
// RTCP packet: every sub-packet's declared length must fit in the
// remaining buffer and every sub-packet must carry version 2.
// Unknown sub-packet types are tolerated.
func Parse(buf []byte) error {
	return walk(buf, nil)
}

// walk iterates the sub-packets of buf in order, invoking visit for
// each one. It stops at the first malformed header or at end of
// buffer. visit may be nil to simply validate. The iteration is lazy
// and non-restartable: it never looks back at buffer state it has
// already consumed.
func walk(buf []byte, visit func(SubPacket) error) error {
	offset := 0
	for offset < len(buf) {
		if offset+headerLen > len(buf) {
			return ErrMalformed
		}
		version := buf[offset] >> 6
		if version != 2 {
			return ErrMalformed
		}
		var hdr pionrtcp.Header
		if err := hdr.Unmarshal(buf[offset : offset+headerLen]); err != nil {
			return ErrMalformed
		}
		length := (int(hdr.Length) + 1) * 4
		if offset+length > len(buf) {
			return ErrMalformed
		}
		sp := SubPacket{
			Type:   hdr.Type,
			FMT:    hdr.Count,
			Offset: offset,
			Length: length,
		}
		if visit != nil {
			if err := visit(sp); err != nil {
				return err
			}
		}
		offset += length
	}
	return nil
}
