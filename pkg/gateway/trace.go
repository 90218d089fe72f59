package gateway

import (
	"github.com/rs/zerolog"

	"github.com/meetecho-oss/b2bua-core/pkg/ice"
)

// WireTracer logs individual RTCP/SDP operations at a finer grain than
// the session's own slog.Logger: one event per packet or per SDP pass,
// tagged with the session and stream it belongs to. It sits alongside
// the structured session logger rather than replacing it - zerolog's
// zero-allocation event builder is cheap enough to leave enabled on the
// hot RTCP path, where the std-lib logger's per-call args slice is not.
type WireTracer struct {
	log       zerolog.Logger
	sessionID string
}

// NewWireTracer builds a tracer scoped to one session.
func NewWireTracer(log zerolog.Logger, sessionID string) *WireTracer {
	return &WireTracer{
		log:       log.With().Str("session", sessionID).Logger(),
		sessionID: sessionID,
	}
}

// RTCPRewrite records an SSRC rewrite applied to an outbound compound
// packet.
func (t *WireTracer) RTCPRewrite(stream ice.StreamID, fix bool, newLocal, newRemote uint32) {
	t.log.Debug().
		Str("stream", string(stream)).
		Bool("fix_ssrc", fix).
		Uint32("new_local", newLocal).
		Uint32("new_remote", newRemote).
		Msg("rtcp rewritten")
}

// RembCapped records that a REMB report was clamped to a bitrate ceiling.
func (t *WireTracer) RembCapped(stream ice.StreamID, maxBitrate uint64) {
	t.log.Debug().
		Str("stream", string(stream)).
		Uint64("max_bitrate", maxBitrate).
		Msg("remb capped")
}

// KeyframeRequested records a FIR/PLI emitted (or dropped by the pacer)
// towards the media source.
func (t *WireTracer) KeyframeRequested(stream ice.StreamID, useFIR, sent bool) {
	evt := t.log.Debug().
		Str("stream", string(stream)).
		Bool("fir", useFIR).
		Bool("sent", sent)
	if sent {
		evt.Msg("keyframe request sent")
	} else {
		evt.Msg("keyframe request paced out")
	}
}

// SDPOffer records an offer extraction pass, with the number of remote
// candidates found per stream.
func (t *WireTracer) SDPOffer(audioCandidates, videoCandidates int) {
	t.log.Debug().
		Int("audio_candidates", audioCandidates).
		Int("video_candidates", videoCandidates).
		Msg("sdp offer extracted")
}

// SDPAnswer records a merge pass producing the gateway's answer.
func (t *WireTracer) SDPAnswer(bytesWritten int) {
	t.log.Debug().
		Int("bytes", bytesWritten).
		Msg("sdp answer merged")
}
