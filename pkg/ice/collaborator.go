package ice

import "bytes"

// Collaborator is the external ICE agent the SDP merger queries for
// locally gathered credentials and candidates. The core never
// implements STUN or connectivity checks itself; this interface
// is the entire surface it needs from whatever does.
type Collaborator interface {
	// LocalCredentials returns the local ICE ufrag/pwd for streamID.
	LocalCredentials(streamID StreamID) (ufrag, pwd string, err error)

	// SetupCandidate appends `a=candidate:...` lines for the given
	// stream/component to buf, in whatever order the agent currently
	// holds them.
	SetupCandidate(buf *bytes.Buffer, streamID StreamID, componentID ComponentID) error
}
