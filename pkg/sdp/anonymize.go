package sdp

import (
	pionsdp "github.com/pion/sdp/v3"
)

var sessionAttrsToStrip = map[string]bool{
	"ice-ufrag":     true,
	"ice-pwd":       true,
	"ice-options":   true,
	"fingerprint":   true,
	"group":         true,
	"msid-semantic": true,
}

var mediaAttrsToStrip = map[string]bool{
	"ice-ufrag":     true,
	"ice-pwd":       true,
	"ice-options":   true,
	"crypto":        true,
	"fingerprint":   true,
	"setup":         true,
	"connection":    true,
	"group":         true,
	"msid-semantic": true,
	"rtcp":          true,
	"rtcp-mux":      true,
	"candidate":     true,
	"ssrc":          true,
	"extmap":        true,
}

const anonymizedAddress = "1.1.1.1"

// Anonymize parses text and re-emits it with transport-layer
// attributes stripped, so the result can be forwarded to a plugin
// that must see media semantics but never ICE/DTLS credentials.
// Direction attributes pass through unchanged; an explicit
// `a=sendrecv` in the input survives in the output.
func Anonymize(text []byte) ([]byte, error) {
	parsed, err := Preparse(text)
	if err != nil {
		return nil, err
	}
	session := parsed.Session

	if session.ConnectionInformation != nil && session.ConnectionInformation.Address != nil {
		session.ConnectionInformation.Address.Address = anonymizedAddress
	}
	session.Attributes = filterAttributes(session.Attributes, sessionAttrsToStrip)

	audioSeen, videoSeen := false, false
	for _, md := range session.MediaDescriptions {
		switch md.MediaName.Media {
		case "audio":
			if !audioSeen {
				md.MediaName.Port = pionsdp.RangedPort{Value: 1}
				audioSeen = true
			} else {
				md.MediaName.Port = pionsdp.RangedPort{Value: 0}
			}
		case "video":
			if !videoSeen {
				md.MediaName.Port = pionsdp.RangedPort{Value: 1}
				videoSeen = true
			} else {
				md.MediaName.Port = pionsdp.RangedPort{Value: 0}
			}
		default:
			md.MediaName.Port = pionsdp.RangedPort{Value: 0}
		}

		if md.ConnectionInformation != nil && md.ConnectionInformation.Address != nil {
			md.ConnectionInformation.Address.Address = anonymizedAddress
		}

		md.Attributes = filterAttributes(md.Attributes, mediaAttrsToStrip)
	}

	out, err := session.Marshal()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func filterAttributes(attrs []pionsdp.Attribute, strip map[string]bool) []pionsdp.Attribute {
	kept := make([]pionsdp.Attribute, 0, len(attrs))
	for _, a := range attrs {
		if strip[a.Key] {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
