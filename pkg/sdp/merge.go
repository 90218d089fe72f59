package sdp

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	pionsdp "github.com/pion/sdp/v3"

	"github.com/meetecho-oss/b2bua-core/pkg/dtls"
	"github.com/meetecho-oss/b2bua-core/pkg/ice"
	"github.com/meetecho-oss/b2bua-core/pkg/transport"
)

const maxMergeOutputBytes = 8 * 1024

const (
	defaultSubject = "Meetecho Janus"
	msidSemantic   = "WMS janus"

	audioPortPlaceholder = "ARTPP"
	videoPortPlaceholder = "VRTPP"
	audioRTCPPlaceholder = "ARTCP"
	videoRTCPPlaceholder = "VRTCP"
)

var directionKeys = map[string]bool{
	"sendrecv": true,
	"sendonly": true,
	"recvonly": true,
	"inactive": true,
}

// Merge parses anonymizedText and emits a full session description
// combining it with the local transport state held in handle and
// reachable through the three collaborators. The
// output is built as literal text rather than through a marshaled
// session object: the port fields it must emit (`ARTPP`, `VRTPP`,
// `ARTCP`, `VRTCP`) are textual sentinels the transport layer
// substitutes later, which a typed SDP model with integer port
// fields has no slot for.
func Merge(handle *ice.Handle, iceCollab ice.Collaborator, dtlsCollab dtls.Collaborator, transportCollab transport.Collaborator, anonymizedText []byte) ([]byte, error) {
	parsed, err := Preparse(anonymizedText)
	if err != nil {
		return nil, err
	}
	session := parsed.Session

	localFingerprint, err := dtlsCollab.LocalFingerprint()
	if err != nil {
		return nil, fmt.Errorf("sdp: local fingerprint: %w", err)
	}
	localIP, err := transportCollab.LocalIP()
	if err != nil {
		return nil, fmt.Errorf("sdp: local ip: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("v=0\r\n")
	writeOrigin(&buf, session)
	writeSubject(&buf, session)
	writeTiming(&buf, session)
	fmt.Fprintf(&buf, "a=msid-semantic: %s\r\n", msidSemantic)
	fmt.Fprintf(&buf, "a=fingerprint:sha-256 %s\r\n", localFingerprint)
	writeRemainingAttributes(&buf, session.Attributes)

	audioSeen, videoSeen := false, false
	for _, md := range session.MediaDescriptions {
		mediaType := md.MediaName.Media

		var streamID ice.StreamID
		var portPlaceholder, rtcpPlaceholder, ssrcCName, ssrcLabel string
		switch mediaType {
		case "audio":
			if audioSeen {
				fmt.Fprintf(&buf, "m=%s 0 RTP/SAVPF 0\r\n", mediaType)
				continue
			}
			audioSeen = true
			streamID = handle.AudioID
			portPlaceholder, rtcpPlaceholder = audioPortPlaceholder, audioRTCPPlaceholder
			ssrcCName, ssrcLabel = "janusaudio", "a0"
		case "video":
			if videoSeen {
				fmt.Fprintf(&buf, "m=%s 0 RTP/SAVPF 0\r\n", mediaType)
				continue
			}
			videoSeen = true
			streamID = handle.VideoID
			portPlaceholder, rtcpPlaceholder = videoPortPlaceholder, videoRTCPPlaceholder
			ssrcCName, ssrcLabel = "janusvideo", "v0"
		default:
			fmt.Fprintf(&buf, "m=%s 0 RTP/SAVPF 0\r\n", mediaType)
			continue
		}

		stream, ok := handle.Stream(streamID)
		if !ok {
			fmt.Fprintf(&buf, "m=%s 0 RTP/SAVPF 0\r\n", mediaType)
			continue
		}

		if err := writeMediaSection(&buf, md, mediaType, stream, streamID, portPlaceholder, rtcpPlaceholder,
			ssrcCName, ssrcLabel, localIP, iceCollab, dtlsCollab); err != nil {
			return nil, err
		}
	}

	if buf.Len() > maxMergeOutputBytes {
		return nil, fmt.Errorf("sdp: merged output of %d bytes exceeds %d-byte bound", buf.Len(), maxMergeOutputBytes)
	}
	return buf.Bytes(), nil
}

func writeOrigin(buf *bytes.Buffer, session *pionsdp.SessionDescription) {
	username := session.Origin.Username
	sessionID := session.Origin.SessionID
	version := session.Origin.SessionVersion
	if username == "" {
		username = "-"
		now := uint64(time.Now().UnixMicro())
		sessionID = now
		version = now
	}
	fmt.Fprintf(buf, "o=%s %d %d IN IP4 127.0.0.1\r\n", username, sessionID, version)
}

func writeSubject(buf *bytes.Buffer, session *pionsdp.SessionDescription) {
	subject := string(session.SessionName)
	if subject == "" {
		subject = defaultSubject
	}
	fmt.Fprintf(buf, "s=%s\r\n", subject)
}

func writeTiming(buf *bytes.Buffer, session *pionsdp.SessionDescription) {
	var start, stop uint64
	if len(session.TimeDescriptions) > 0 {
		start = session.TimeDescriptions[0].Timing.StartTime
		stop = session.TimeDescriptions[0].Timing.StopTime
	}
	fmt.Fprintf(buf, "t=%d %d\r\n", start, stop)
}

func writeRemainingAttributes(buf *bytes.Buffer, attrs []pionsdp.Attribute) {
	for _, a := range attrs {
		if a.Value == "" {
			fmt.Fprintf(buf, "a=%s\r\n", a.Key)
		} else {
			fmt.Fprintf(buf, "a=%s:%s\r\n", a.Key, a.Value)
		}
	}
}

func writeMediaSection(
	buf *bytes.Buffer,
	md *pionsdp.MediaDescription,
	mediaType string,
	stream *ice.StreamRecord,
	streamID ice.StreamID,
	portPlaceholder, rtcpPlaceholder string,
	ssrcCName, ssrcLabelSuffix string,
	localIP string,
	iceCollab ice.Collaborator,
	dtlsCollab dtls.Collaborator,
) error {
	payloadTypes := selectPayloadTypes(md)
	fmt.Fprintf(buf, "m=%s %s RTP/SAVPF %s\r\n", mediaType, portPlaceholder, strings.Join(payloadTypes, " "))

	if len(md.Bandwidth) > 0 {
		bw := md.Bandwidth[0]
		modifier := bw.Type
		if modifier == "" {
			modifier = "AS"
		}
		fmt.Fprintf(buf, "b=%s:%d\r\n", modifier, bw.Bandwidth)
	}

	fmt.Fprintf(buf, "c=IN IP4 %s\r\n", localIP)

	direction := "sendrecv"
	for _, a := range md.Attributes {
		if directionKeys[a.Key] {
			direction = a.Key
			break
		}
	}
	fmt.Fprintf(buf, "a=%s\r\n", direction)

	fmt.Fprintf(buf, "a=rtcp:%s IN IP4 %s\r\n", rtcpPlaceholder, localIP)

	var rtpmaps, fmtps, remaining []pionsdp.Attribute
	for _, a := range md.Attributes {
		switch a.Key {
		case "rtpmap":
			rtpmaps = append(rtpmaps, a)
		case "fmtp":
			fmtps = append(fmtps, a)
		case "ice-ufrag", "ice-pwd", "ice-options", "crypto", "fingerprint", "setup",
			"connection", "group", "msid-semantic", "rtcp", "rtcp-mux", "candidate",
			"ssrc", "extmap", "sendrecv", "sendonly", "recvonly", "inactive":
			// already emitted or never forwarded
		default:
			remaining = append(remaining, a)
		}
	}
	writeRemainingAttributes(buf, rtpmaps)
	writeRemainingAttributes(buf, fmtps)

	ufrag, pwd, err := iceCollab.LocalCredentials(streamID)
	if err != nil {
		return fmt.Errorf("sdp: local credentials for stream %s: %w", streamID, err)
	}
	fmt.Fprintf(buf, "a=ice-ufrag:%s\r\n", ufrag)
	fmt.Fprintf(buf, "a=ice-pwd:%s\r\n", pwd)
	fmt.Fprintf(buf, "a=setup:%s\r\n", dtlsCollab.RoleText(stream.DTLSRole))
	buf.WriteString("a=connection:new\r\n")

	writeRemainingAttributes(buf, remaining)

	for _, field := range []string{"cname:" + ssrcCName, "msid:janus janus" + ssrcLabelSuffix, "mslabel:janus", "label:janus" + ssrcLabelSuffix} {
		fmt.Fprintf(buf, "a=ssrc:%d %s\r\n", stream.SSRC, field)
	}

	if err := iceCollab.SetupCandidate(buf, streamID, ice.ComponentRTP); err != nil {
		return fmt.Errorf("sdp: setup rtp candidates for stream %s: %w", streamID, err)
	}
	if err := iceCollab.SetupCandidate(buf, streamID, ice.ComponentRTCP); err != nil {
		return fmt.Errorf("sdp: setup rtcp candidates for stream %s: %w", streamID, err)
	}
	return nil
}

// selectPayloadTypes returns the PTs to place on the m= line: rtpmap
// PTs in rtpmap order if any rtpmap attributes are present, else the
// m-line's raw format tokens, else "0".
func selectPayloadTypes(md *pionsdp.MediaDescription) []string {
	var pts []string
	for _, a := range md.Attributes {
		if a.Key != "rtpmap" {
			continue
		}
		fields := strings.Fields(a.Value)
		if len(fields) == 0 {
			continue
		}
		pts = append(pts, fields[0])
	}
	if len(pts) > 0 {
		return pts
	}
	if len(md.MediaName.Formats) > 0 {
		return md.MediaName.Formats
	}
	return []string{"0"}
}
