// Package ice carries the ICE handle data model consumed and mutated
// by the SDP extractor and queried by the SDP merger: per-session
// streams, their components, and the remote candidates gathered off
// an offer. It never runs STUN or performs connectivity checks;
// those live outside this module (see Collaborator).
package ice

import "github.com/google/uuid"

// StreamID identifies one of a handle's media streams. The core only
// ever deals with "the audio stream" and "the video stream" of a
// single handle, so this is a small closed set in practice, but it is
// modeled as an opaque string to match the extractor's table lookups.
type StreamID string

// ComponentID is 1 for RTP, 2 for RTCP, per RFC 5245's component
// numbering.
type ComponentID int

const (
	ComponentRTP  ComponentID = 1
	ComponentRTCP ComponentID = 2
)

// DTLSRole is the role a side will take in the DTLS handshake, derived
// from the peer's SDP `a=setup` attribute.
type DTLSRole int

const (
	DTLSRoleUnset DTLSRole = iota
	DTLSRoleClient
	DTLSRoleServer
)

// CandidateType is the `typ` token of an `a=candidate` line.
type CandidateType string

const (
	CandidateHost  CandidateType = "host"
	CandidateSrflx CandidateType = "srflx"
	CandidatePrflx CandidateType = "prflx"
	CandidateRelay CandidateType = "relay"
)

// CandidateTransport is the transport token of an `a=candidate` line.
type CandidateTransport string

const (
	TransportUDP CandidateTransport = "udp"
	TransportTCP CandidateTransport = "tcp"
	TransportTLS CandidateTransport = "tls"
)

// RemoteCandidate is one ICE candidate learned from a peer's SDP.
type RemoteCandidate struct {
	Foundation  string
	Component   ComponentID
	Stream      StreamID
	Transport   CandidateTransport
	Priority    uint32
	Address     string
	Port        int
	BaseAddress string // set for srflx/prflx/relay
	BasePort    int
	Type        CandidateType
	Ufrag       string // copied from the stream at extraction time
	Pwd         string
}

// ComponentRecord holds the remote candidates gathered for one ICE
// component of a stream, in the order they were extracted.
type ComponentRecord struct {
	ID               ComponentID
	RemoteCandidates []RemoteCandidate
}

// StreamRecord is one of a handle's media streams (audio or video).
type StreamRecord struct {
	StreamID StreamID
	SSRC     uint32
	DTLSRole DTLSRole

	Components map[ComponentID]*ComponentRecord
}

// Component looks up a component by id within the stream.
func (s *StreamRecord) Component(id ComponentID) (*ComponentRecord, bool) {
	c, ok := s.Components[id]
	return c, ok
}

// Handle is the per-session ICE state the SDP extractor and merger
// read and write.
type Handle struct {
	ID uuid.UUID

	AudioID StreamID
	VideoID StreamID

	Streams map[StreamID]*StreamRecord

	RemoteHashing     string // "sha-256" or "sha-1"
	RemoteFingerprint string // hex, colon-separated per RFC 8122
}

// Stream looks up one of the handle's streams by id.
func (h *Handle) Stream(id StreamID) (*StreamRecord, bool) {
	s, ok := h.Streams[id]
	return s, ok
}

// NewHandle allocates a Handle with one audio and one video stream,
// each pre-populated with RTP and RTCP component records; a session
// carries exactly one of each. The returned handle's streams are
// empty until the extractor fills them in.
func NewHandle() *Handle {
	audio := StreamID("audio")
	video := StreamID("video")

	return &Handle{
		ID:      uuid.New(),
		AudioID: audio,
		VideoID: video,
		Streams: map[StreamID]*StreamRecord{
			audio: newStreamRecord(audio),
			video: newStreamRecord(video),
		},
	}
}

func newStreamRecord(id StreamID) *StreamRecord {
	return &StreamRecord{
		StreamID: id,
		Components: map[ComponentID]*ComponentRecord{
			ComponentRTP:  {ID: ComponentRTP},
			ComponentRTCP: {ID: ComponentRTCP},
		},
	}
}
