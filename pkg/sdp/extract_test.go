package sdp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meetecho-oss/b2bua-core/pkg/ice"
)

func TestExtract_SessionAndMediaLevel(t *testing.T) {
	p, err := Preparse([]byte(sampleOffer))
	require.NoError(t, err)

	h := ice.NewHandle()
	require.NoError(t, Extract(p, h))

	require.Equal(t, "sha-256", h.RemoteHashing)
	require.Equal(t, "AB:CD:EF", h.RemoteFingerprint)

	audio, ok := h.Stream(h.AudioID)
	require.True(t, ok)
	require.Equal(t, ice.DTLSRoleClient, audio.DTLSRole) // setup:actpass -> CLIENT

	rtp, ok := audio.Component(ice.ComponentRTP)
	require.True(t, ok)
	require.Len(t, rtp.RemoteCandidates, 1)
	cand := rtp.RemoteCandidates[0]
	require.Equal(t, "192.168.1.10", cand.Address)
	require.Equal(t, 54321, cand.Port)
	require.Equal(t, uint32(2122260223), cand.Priority)
	require.Equal(t, ice.CandidateHost, cand.Type)
	require.Equal(t, "U", cand.Ufrag)
	require.Equal(t, "P", cand.Pwd)
}

func TestExtract_MediaLevelOverridesSession(t *testing.T) {
	text := "v=0\r\n" +
		"o=- 1 1 IN IP4 127.0.0.1\r\n" +
		"s=-\r\n" +
		"t=0 0\r\n" +
		"a=ice-ufrag:SESSIONUFRAG\r\n" +
		"a=ice-pwd:SESSIONPWD\r\n" +
		"a=fingerprint:sha-1 11:22:33\r\n" +
		"m=audio 9 UDP/TLS/RTP/SAVPF 111\r\n" +
		"c=IN IP4 0.0.0.0\r\n" +
		"a=ice-ufrag:MEDIAUFRAG\r\n" +
		"a=ice-pwd:MEDIAPWD\r\n" +
		"a=fingerprint:sha-256 AA:BB:CC\r\n" +
		"a=setup:active\r\n"

	p, err := Preparse([]byte(text))
	require.NoError(t, err)

	h := ice.NewHandle()
	require.NoError(t, Extract(p, h))

	require.Equal(t, "sha-256", h.RemoteHashing)
	require.Equal(t, "AA:BB:CC", h.RemoteFingerprint)

	audio, ok := h.Stream(h.AudioID)
	require.True(t, ok)
	require.Equal(t, ice.DTLSRoleServer, audio.DTLSRole) // setup:active -> SERVER
}

func TestExtract_MissingTransport(t *testing.T) {
	text := "v=0\r\n" +
		"o=- 1 1 IN IP4 127.0.0.1\r\n" +
		"s=-\r\n" +
		"t=0 0\r\n" +
		"m=audio 9 UDP/TLS/RTP/SAVPF 111\r\n" +
		"c=IN IP4 0.0.0.0\r\n"

	p, err := Preparse([]byte(text))
	require.NoError(t, err)

	h := ice.NewHandle()
	require.ErrorIs(t, Extract(p, h), ErrMissingTransport)
}

func TestExtract_OnlyFirstAudioAndVideoConsidered(t *testing.T) {
	text := sampleOffer + "m=audio 9 UDP/TLS/RTP/SAVPF 0\r\n" +
		"c=IN IP4 0.0.0.0\r\n" +
		"a=candidate:1 1 udp 100 10.0.0.1 1111 typ host\r\n"

	p, err := Preparse([]byte(text))
	require.NoError(t, err)

	h := ice.NewHandle()
	require.NoError(t, Extract(p, h))

	audio, _ := h.Stream(h.AudioID)
	rtp, _ := audio.Component(ice.ComponentRTP)
	require.Len(t, rtp.RemoteCandidates, 1)
	require.Equal(t, "192.168.1.10", rtp.RemoteCandidates[0].Address)
}

func TestExtract_AbsentStreamSkippedNotFatal(t *testing.T) {
	p, err := Preparse([]byte(sampleOffer))
	require.NoError(t, err)

	h := ice.NewHandle()
	delete(h.Streams, h.VideoID)
	require.NoError(t, Extract(p, h))

	audio, ok := h.Stream(h.AudioID)
	require.True(t, ok)
	rtp, _ := audio.Component(ice.ComponentRTP)
	require.Len(t, rtp.RemoteCandidates, 1)
}

func TestExtract_NoUsableStream(t *testing.T) {
	p, err := Preparse([]byte(sampleOffer))
	require.NoError(t, err)

	h := ice.NewHandle()
	delete(h.Streams, h.AudioID)
	delete(h.Streams, h.VideoID)
	require.ErrorIs(t, Extract(p, h), ErrNoSuchStream)
}

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		wantOK bool
	}{
		{"host udp ok", "1 1 udp 2122260223 192.168.1.10 54321 typ host", true},
		{"host tcp rejected", "1 1 tcp 2122260223 192.168.1.10 54321 typ host", false},
		{"relay tcp ok", "1 1 tcp 2122260223 192.168.1.10 54321 typ relay", true},
		{"too few tokens", "1 1 udp 100 10.0.0.1 1111", false},
		{"unknown type", "1 1 udp 100 10.0.0.1 1111 typ bogus", false},
		{"srflx with raddr", "1 1 udp 100 1.2.3.4 1111 typ srflx raddr 10.0.0.1 rport 2222", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := parseCandidate(tc.value, ice.StreamID("audio"))
			require.Equal(t, tc.wantOK, ok)
		})
	}
}
