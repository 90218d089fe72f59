package sdp

import (
	"strconv"
	"strings"

	pionsdp "github.com/pion/sdp/v3"

	"github.com/meetecho-oss/b2bua-core/pkg/ice"
)

// transportCreds accumulates ufrag/pwd/fingerprint as the scan walks
// from session level to media level; a later write always overrides
// an earlier one.
type transportCreds struct {
	ufrag           string
	pwd             string
	fingerprintHash string
	fingerprintHex  string
	haveUfrag       bool
	havePwd         bool
	haveFingerprint bool
}

func (c *transportCreds) complete() bool {
	return c.haveUfrag && c.havePwd && c.haveFingerprint
}

// scanAttributes overlays attrs onto acc:
// ice-ufrag/ice-pwd/fingerprint override whatever was captured before.
func scanAttributes(attrs []pionsdp.Attribute, acc *transportCreds) {
	for _, a := range attrs {
		switch a.Key {
		case "ice-ufrag":
			acc.ufrag = a.Value
			acc.haveUfrag = true
		case "ice-pwd":
			acc.pwd = a.Value
			acc.havePwd = true
		case "fingerprint":
			hash, hex, ok := parseFingerprint(a.Value)
			if !ok {
				continue
			}
			acc.fingerprintHash = hash
			acc.fingerprintHex = hex
			acc.haveFingerprint = true
		}
	}
}

// parseFingerprint splits an `a=fingerprint` value of the form
// "<alg> <hex>". Only sha-256 and sha-1 are accepted;
// unknown algorithms are treated as absent.
func parseFingerprint(value string) (hash, hex string, ok bool) {
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return "", "", false
	}
	alg := strings.ToLower(fields[0])
	if alg != "sha-256" && alg != "sha-1" {
		return "", "", false
	}
	return alg, fields[1], true
}

// dtlsRoleFromSetup maps an `a=setup` value onto the local DTLS role:
// actpass/passive mean the peer will be the DTLS server so this side
// is CLIENT, active means SERVER, and holdconn is accepted but
// carries no role.
func dtlsRoleFromSetup(value string) (ice.DTLSRole, bool) {
	switch strings.ToLower(value) {
	case "actpass", "passive":
		return ice.DTLSRoleClient, true
	case "active":
		return ice.DTLSRoleServer, true
	case "holdconn":
		return ice.DTLSRoleUnset, false
	default:
		return ice.DTLSRoleUnset, false
	}
}

// Extract walks parsed and fills handle's streams: a
// session-level scan, then a per-media scan of the first audio and
// first video m-line (later m-lines of the same type, and
// unsupported media types, are skipped), then a third pass over
// `candidate:` attributes.
func Extract(parsed *Parsed, handle *ice.Handle) error {
	session := parsed.Session

	sessionCreds := transportCreds{}
	scanAttributes(session.Attributes, &sessionCreds)

	var sawAudio, sawVideo bool
	selected, usable := 0, 0
	for _, md := range session.MediaDescriptions {
		var streamID ice.StreamID
		switch md.MediaName.Media {
		case "audio":
			if sawAudio {
				continue
			}
			sawAudio = true
			streamID = handle.AudioID
		case "video":
			if sawVideo {
				continue
			}
			sawVideo = true
			streamID = handle.VideoID
		default:
			continue
		}
		selected++

		// An m-line without a matching stream is skipped; the error is
		// fatal only when no media section is usable at all.
		stream, ok := handle.Stream(streamID)
		if !ok {
			continue
		}
		usable++

		mediaCreds := sessionCreds
		scanAttributes(md.Attributes, &mediaCreds)

		for _, a := range md.Attributes {
			if a.Key != "setup" {
				continue
			}
			if role, ok := dtlsRoleFromSetup(a.Value); ok {
				stream.DTLSRole = role
			}
		}

		if !mediaCreds.complete() {
			return ErrMissingTransport
		}

		handle.RemoteHashing = mediaCreds.fingerprintHash
		handle.RemoteFingerprint = mediaCreds.fingerprintHex

		extractCandidates(md.Attributes, stream, mediaCreds.ufrag, mediaCreds.pwd)
	}

	if selected > 0 && usable == 0 {
		return ErrNoSuchStream
	}
	return nil
}

// extractCandidates is the third pass over a media section: parse each
// `candidate:` attribute's first 7-9 tokens, skip malformed or
// unsupported lines, and append well-formed candidates (insertion
// order preserved) to the matching component's remote candidate list.
func extractCandidates(attrs []pionsdp.Attribute, stream *ice.StreamRecord, ufrag, pwd string) {
	for _, a := range attrs {
		if a.Key != "candidate" {
			continue
		}
		cand, ok := parseCandidate(a.Value, stream.StreamID)
		if !ok {
			continue
		}
		component, ok := stream.Component(cand.Component)
		if !ok {
			continue
		}
		cand.Ufrag = ufrag
		cand.Pwd = pwd
		component.RemoteCandidates = append(component.RemoteCandidates, cand)
	}
}

// parseCandidate parses the RFC 8839 candidate-attribute grammar:
// foundation component transport priority ip port "typ" type
// [raddr ip rport port]. Lines with fewer than 7 matched tokens, or
// an unaccepted type/transport combination, are rejected.
func parseCandidate(value string, streamID ice.StreamID) (ice.RemoteCandidate, bool) {
	fields := strings.Fields(value)
	if len(fields) < 7 {
		return ice.RemoteCandidate{}, false
	}

	componentNum, err := strconv.Atoi(fields[1])
	if err != nil {
		return ice.RemoteCandidate{}, false
	}
	priority, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return ice.RemoteCandidate{}, false
	}
	port, err := strconv.Atoi(fields[5])
	if err != nil {
		return ice.RemoteCandidate{}, false
	}
	if fields[6] != "typ" || len(fields) < 8 {
		return ice.RemoteCandidate{}, false
	}

	candType := ice.CandidateType(strings.ToLower(fields[7]))
	transport := ice.CandidateTransport(strings.ToLower(fields[2]))

	switch candType {
	case ice.CandidateHost, ice.CandidateSrflx, ice.CandidatePrflx:
		if transport != ice.TransportUDP {
			return ice.RemoteCandidate{}, false
		}
	case ice.CandidateRelay:
		if transport != ice.TransportUDP && transport != ice.TransportTCP && transport != ice.TransportTLS {
			return ice.RemoteCandidate{}, false
		}
	default:
		return ice.RemoteCandidate{}, false
	}

	cand := ice.RemoteCandidate{
		Foundation: fields[0],
		Component:  ice.ComponentID(componentNum),
		Stream:     streamID,
		Transport:  transport,
		Priority:   uint32(priority),
		Address:    fields[4],
		Port:       port,
		Type:       candType,
	}

	if len(fields) >= 12 && fields[8] == "raddr" && fields[10] == "rport" {
		cand.BaseAddress = fields[9]
		if basePort, err := strconv.Atoi(fields[11]); err == nil {
			cand.BasePort = basePort
		}
	}

	return cand, true
}
