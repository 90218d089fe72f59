package rtcp

import (
	pionrtcp "github.com/pion/rtcp"
)

const (
	reportBlockSize = 24 // ssrc, flcnpl, ehsnr, jitter, lsr, delay: 6 x uint32

	srSenderSSRCOffset   = 4  // within the sub-packet
	srSenderInfoSize     = 20 // ntp_msw, ntp_lsw, rtp_ts, s_packets, s_octets
	srFirstBlockOffset   = headerLen + 4 + srSenderInfoSize // 28

	rrReporterSSRCOffset = 4
	rrFirstBlockOffset   = headerLen + 4 // 8

	fbSenderSSRCOffset = 4
	fbMediaSSRCOffset  = 8
)

// FixSSRC walks buf as a compound RTCP packet and, when fix is true,
// substitutes SSRCs per the B2BUA rewriting rules of
// draft-ietf-straw-b2bua-rtcp: SR/RR get their reporter SSRC replaced
// with newLocal and every report block's SSRC_1 replaced with
// newRemote; RTPFB/PSFB get their sender SSRC replaced with newLocal
// and their media-source SSRC replaced with newRemote, on every
// feedback packet. SDES/BYE/APP are left untouched. When fix is false
// the walk only validates.
//
// On ErrMalformed, buf may have been partially mutated: the caller must
// not forward it.
func FixSSRC(buf []byte, fix bool, newLocal, newRemote uint32) error {
	return walk(buf, func(sp SubPacket) error {
		if !fix {
			return nil
		}
		switch sp.Type {
		case pionrtcp.TypeSenderReport:
			return fixReports(buf, sp, srSenderSSRCOffset, srFirstBlockOffset, newLocal, newRemote)
		case pionrtcp.TypeReceiverReport:
			return fixReports(buf, sp, rrReporterSSRCOffset, rrFirstBlockOffset, newLocal, newRemote)
		case pionrtcp.TypeTransportSpecificFeedback, pionrtcp.TypePayloadSpecificFeedback:
			if !writeUint32At(buf[sp.Offset:sp.Offset+sp.Length], fbSenderSSRCOffset, newLocal) {
				return ErrMalformed
			}
			if !writeUint32At(buf[sp.Offset:sp.Offset+sp.Length], fbMediaSSRCOffset, newRemote) {
				return ErrMalformed
			}
			return nil
		default:
			// SDES, BYE, APP, and unknown types: no SSRC substitution.
			return nil
		}
	})
}

// fixReports rewrites the sender/reporter SSRC at senderOffset and, for
// every report block present after firstBlockOffset, the block's
// SSRC_1 field (the block's first 4 bytes).
func fixReports(buf []byte, sp SubPacket, senderOffset, firstBlockOffset int, newLocal, newRemote uint32) error {
	sub := buf[sp.Offset : sp.Offset+sp.Length]
	if !writeUint32At(sub, senderOffset, newLocal) {
		return ErrMalformed
	}
	rc := int(sp.FMT) // report count is carried in the same 5-bit field as FMT
	for i := 0; i < rc; i++ {
		blockOffset := firstBlockOffset + i*reportBlockSize
		if !writeUint32At(sub, blockOffset, newRemote) {
			return ErrMalformed
		}
	}
	return nil
}
