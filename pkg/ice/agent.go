package ice

import (
	"bytes"
	"fmt"
	"sync"

	pionice "github.com/pion/ice/v4"
)

// GatheringCollaborator implements Collaborator with a real pion/ice
// Agent per stream, used strictly for the gateway's own local half of
// ICE: generating credentials and gathering this host's candidates.
// It never dials, accepts, or runs a connectivity check against a
// remote peer, and candidate gathering is restricted to host
// candidates so it never needs a STUN server either - both the
// connectivity-check state machine and the STUN protocol itself
// live outside the core this collaborator feeds.
type GatheringCollaborator struct {
	mu     sync.Mutex
	agents map[StreamID]*pionice.Agent
}

// NewGatheringCollaborator returns a collaborator with no agents yet;
// one is created lazily per stream on first use.
func NewGatheringCollaborator() *GatheringCollaborator {
	return &GatheringCollaborator{agents: make(map[StreamID]*pionice.Agent)}
}

func (g *GatheringCollaborator) agentFor(streamID StreamID) (*pionice.Agent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if a, ok := g.agents[streamID]; ok {
		return a, nil
	}

	a, err := pionice.NewAgent(&pionice.AgentConfig{
		NetworkTypes:   []pionice.NetworkType{pionice.NetworkTypeUDP4, pionice.NetworkTypeUDP6},
		CandidateTypes: []pionice.CandidateType{pionice.CandidateTypeHost},
	})
	if err != nil {
		return nil, fmt.Errorf("ice: new agent for stream %s: %w", streamID, err)
	}

	if err := a.OnCandidate(func(pionice.Candidate) {}); err != nil {
		a.Close()
		return nil, fmt.Errorf("ice: register candidate handler for stream %s: %w", streamID, err)
	}
	if err := a.GatherCandidates(); err != nil {
		a.Close()
		return nil, fmt.Errorf("ice: gather candidates for stream %s: %w", streamID, err)
	}

	g.agents[streamID] = a
	return a, nil
}

// LocalCredentials implements Collaborator by returning the pion/ice
// Agent's own generated ufrag/pwd for streamID.
func (g *GatheringCollaborator) LocalCredentials(streamID StreamID) (string, string, error) {
	a, err := g.agentFor(streamID)
	if err != nil {
		return "", "", err
	}
	frag, pwd, err := a.GetLocalUserCredentials()
	if err != nil {
		return "", "", fmt.Errorf("ice: local credentials for stream %s: %w", streamID, err)
	}
	return frag, pwd, nil
}

// SetupCandidate implements Collaborator by writing one `a=candidate:`
// line per locally gathered candidate belonging to componentID.
func (g *GatheringCollaborator) SetupCandidate(buf *bytes.Buffer, streamID StreamID, componentID ComponentID) error {
	a, err := g.agentFor(streamID)
	if err != nil {
		return err
	}

	candidates, err := a.GetLocalCandidates()
	if err != nil {
		return fmt.Errorf("ice: get local candidates for stream %s: %w", streamID, err)
	}

	for _, c := range candidates {
		if ComponentID(c.Component()) != componentID {
			continue
		}
		fmt.Fprintf(buf, "a=candidate:%s\r\n", c.Marshal())
	}
	return nil
}

// Close releases every per-stream agent this collaborator created.
func (g *GatheringCollaborator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var firstErr error
	for id, a := range g.agents {
		if err := a.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(g.agents, id)
	}
	return firstErr
}
