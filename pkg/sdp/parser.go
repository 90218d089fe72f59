package sdp

import (
	pionsdp "github.com/pion/sdp/v3"
)

// Parsed is the result of Preparse: a session description plus the
// audio/video m-line counts a caller uses to decide whether a session
// is usable before running the heavier extract/anonymize/merge
// passes.
type Parsed struct {
	Session    *pionsdp.SessionDescription
	AudioCount int
	VideoCount int
}

// Preparse validates text against RFC 4566 grammar and counts its
// audio/video m-lines. No parser arena is kept across calls — each
// call owns its own parsed tree, so concurrent callers with disjoint
// inputs never contend.
func Preparse(text []byte) (*Parsed, error) {
	var session pionsdp.SessionDescription
	if err := session.Unmarshal(text); err != nil {
		return nil, ErrInvalidSDP
	}

	p := &Parsed{Session: &session}
	for _, md := range session.MediaDescriptions {
		switch md.MediaName.Media {
		case "audio":
			p.AudioCount++
		case "video":
			p.VideoCount++
		}
	}
	return p, nil
}

// Free releases parser resources. pion/sdp/v3 allocates no arena to
// release; this is kept as a documented no-op so callers can pair it
// with Preparse. Nothing in this module calls it.
func Free(*Parsed) {}
