// Package gateway wires pkg/ice, pkg/dtls, pkg/transport, pkg/sdp and
// pkg/rtcp into a per-call orchestration layer: one Session per browser
// leg, each backed by its own ice.Handle holding that leg's SSRCs and
// remote transport.
package gateway

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meetecho-oss/b2bua-core/pkg/dtls"
	"github.com/meetecho-oss/b2bua-core/pkg/ice"
	"github.com/meetecho-oss/b2bua-core/pkg/rtcp"
	"github.com/meetecho-oss/b2bua-core/pkg/sdp"
	"github.com/meetecho-oss/b2bua-core/pkg/transport"
)

// ErrSessionClosed is returned by Session methods once Close has run.
var ErrSessionClosed = errors.New("gateway: session closed")

// Session represents one browser leg of a bridged call: the ICE handle
// that tracks remote candidates and DTLS role for both its audio and
// video streams, and the collaborators used to fill in the gateway's
// own side when an SDP offer is merged back for the browser.
type Session struct {
	logger *slog.Logger

	id     string
	handle *ice.Handle

	ice       ice.Collaborator
	dtls      dtls.Collaborator
	transport transport.Collaborator
	pacer     *KeyframePacer
	tracer    *WireTracer

	maxVideoBitrate uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// Deps bundles the collaborators a Session needs. ICE, DTLS and Transport
// are required; Pacer may be nil, in which case keyframe requests are
// never paced.
type Deps struct {
	ICE       ice.Collaborator
	DTLS      dtls.Collaborator
	Transport transport.Collaborator
	Pacer     *KeyframePacer
	Tracer    *WireTracer
}

// NewSession creates a session bound to a freshly allocated ICE handle.
func NewSession(ctx context.Context, id string, deps Deps, maxVideoBitrate uint64, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(ctx)

	return &Session{
		logger:          logger.With("session", id),
		id:              id,
		handle:          ice.NewHandle(),
		ice:             deps.ICE,
		dtls:            deps.DTLS,
		transport:       deps.Transport,
		pacer:           deps.Pacer,
		tracer:          deps.Tracer,
		maxVideoBitrate: maxVideoBitrate,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// Handle returns the ICE handle backing this session.
func (s *Session) Handle() *ice.Handle { return s.handle }

// HandleOffer extracts ICE/DTLS transport state from a browser's SDP
// offer into the session's handle, then anonymizes the offer text so it
// carries no transport details across the bridge.
func (s *Session) HandleOffer(offer []byte) ([]byte, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	parsed, err := sdp.Preparse(offer)
	if err != nil {
		return nil, fmt.Errorf("preparse offer: %w", err)
	}

	if err := sdp.Extract(parsed, s.handle); err != nil {
		return nil, fmt.Errorf("extract transport state: %w", err)
	}

	anonymized, err := sdp.Anonymize(offer)
	if err != nil {
		return nil, fmt.Errorf("anonymize offer: %w", err)
	}

	audioCandidates := candidateCount(s.handle, s.handle.AudioID)
	videoCandidates := candidateCount(s.handle, s.handle.VideoID)
	s.logger.Debug("offer processed",
		"audio_candidates", audioCandidates,
		"video_candidates", videoCandidates)
	if s.tracer != nil {
		s.tracer.SDPOffer(audioCandidates, videoCandidates)
	}

	return anonymized, nil
}

// BuildAnswer merges this session's local transport state into a
// previously anonymized SDP body, producing the answer sent back to the
// browser.
func (s *Session) BuildAnswer(anonymized []byte) ([]byte, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	merged, err := sdp.Merge(s.handle, s.ice, s.dtls, s.transport, anonymized)
	if err != nil {
		return nil, fmt.Errorf("merge answer: %w", err)
	}
	if s.tracer != nil {
		s.tracer.SDPAnswer(len(merged))
	}
	return merged, nil
}

// RewriteRTCP rewrites an in-flight RTCP compound packet read off this
// leg before it is forwarded to the other leg of the call: SSRCs are
// remapped to the peer's own, and any REMB report is capped at the
// session's configured ceiling. fix is the caller's "needs SSRC
// rewrite" decision; newLocal/newRemote are the peer's own SSRC pair.
func (s *Session) RewriteRTCP(buf []byte, stream ice.StreamID, fix bool, newLocal, newRemote uint32) error {
	if s.isClosed() {
		return ErrSessionClosed
	}

	if err := rtcp.FixSSRC(buf, fix, newLocal, newRemote); err != nil {
		return fmt.Errorf("fix ssrc: %w", err)
	}
	if s.tracer != nil {
		s.tracer.RTCPRewrite(stream, fix, newLocal, newRemote)
	}

	if s.maxVideoBitrate > 0 {
		err := rtcp.CapREMB(buf, s.maxVideoBitrate)
		if err != nil && !errors.Is(err, rtcp.ErrUnknownFeedback) {
			return fmt.Errorf("cap remb: %w", err)
		}
		if err == nil && s.tracer != nil {
			s.tracer.RembCapped(stream, s.maxVideoBitrate)
		}
	}
	return nil
}

// RequestKeyframe emits a FIR (preferred) or PLI request for streamID
// into out, subject to the session's keyframe pacer. It returns false,
// nil if the request was paced out rather than emitted.
func (s *Session) RequestKeyframe(out []byte, streamID ice.StreamID, mediaSSRC uint32, seqnr *uint8, useFIR bool) (bool, error) {
	if s.isClosed() {
		return false, ErrSessionClosed
	}

	if s.pacer != nil && !s.pacer.Allow(streamID) {
		if s.tracer != nil {
			s.tracer.KeyframeRequested(streamID, useFIR, false)
		}
		return false, nil
	}

	if useFIR {
		if err := rtcp.EmitFIR(out, seqnr); err != nil {
			return false, fmt.Errorf("emit fir: %w", err)
		}
	} else if err := rtcp.EmitPLI(out); err != nil {
		return false, fmt.Errorf("emit pli: %w", err)
	}
	// Synthesis leaves the media-source SSRC zeroed for the caller to
	// fill in; the session knows which publisher the request targets.
	binary.BigEndian.PutUint32(out[8:12], mediaSSRC)

	if s.tracer != nil {
		s.tracer.KeyframeRequested(streamID, useFIR, true)
	}
	return true, nil
}

// Close tears down the session. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	if s.pacer != nil {
		s.pacer.Forget(s.handle.AudioID)
		s.pacer.Forget(s.handle.VideoID)
	}

	s.logger.Info("session closed")
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func candidateCount(handle *ice.Handle, streamID ice.StreamID) int {
	stream, ok := handle.Stream(streamID)
	if !ok {
		return 0
	}
	rtp, ok := stream.Component(ice.ComponentRTP)
	if !ok {
		return 0
	}
	return len(rtp.RemoteCandidates)
}
