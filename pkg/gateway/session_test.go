package gateway

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meetecho-oss/b2bua-core/pkg/dtls"
	"github.com/meetecho-oss/b2bua-core/pkg/ice"
	"github.com/meetecho-oss/b2bua-core/pkg/transport"
)

type fakeCollaborator struct{}

func (fakeCollaborator) LocalCredentials(streamID ice.StreamID) (string, string, error) {
	return "localufrag", "localpwd", nil
}

func (fakeCollaborator) SetupCandidate(buf *bytes.Buffer, streamID ice.StreamID, componentID ice.ComponentID) error {
	return nil
}

const sampleOffer = "v=0\r\n" +
	"o=- 1 1 IN IP4 127.0.0.1\r\n" +
	"s=-\r\n" +
	"t=0 0\r\n" +
	"a=ice-ufrag:U\r\n" +
	"a=ice-pwd:P\r\n" +
	"a=fingerprint:sha-256 AB:CD:EF\r\n" +
	"m=audio 9 UDP/TLS/RTP/SAVPF 111\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"a=sendrecv\r\n" +
	"a=rtpmap:111 opus/48000/2\r\n" +
	"a=setup:actpass\r\n" +
	"a=candidate:1 1 udp 2122260223 192.168.1.10 54321 typ host\r\n" +
	"m=video 9 UDP/TLS/RTP/SAVPF 96\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"a=sendrecv\r\n" +
	"a=rtpmap:96 VP8/90000\r\n" +
	"a=setup:actpass\r\n" +
	"a=candidate:1 1 udp 2122260223 192.168.1.10 54322 typ host\r\n"

func testDeps(t *testing.T) Deps {
	t.Helper()
	dtlsCollab, err := dtls.NewSelfSignedCollaborator()
	require.NoError(t, err)
	return Deps{
		ICE:       fakeCollaborator{},
		DTLS:      dtlsCollab,
		Transport: &transport.AutoDetectCollaborator{Override: "203.0.113.5"},
		Pacer:     NewKeyframePacer(0, discardLogger()),
	}
}

func TestSession_HandleOfferThenBuildAnswer(t *testing.T) {
	s := NewSession(context.Background(), "sess-1", testDeps(t), 0, discardLogger())
	defer s.Close()

	anonymized, err := s.HandleOffer([]byte(sampleOffer))
	require.NoError(t, err)
	require.NotContains(t, string(anonymized), "a=candidate")

	answer, err := s.BuildAnswer(anonymized)
	require.NoError(t, err)
	require.Contains(t, string(answer), "a=fingerprint:sha-256")
	require.Contains(t, string(answer), "c=IN IP4 203.0.113.5")
}

func TestSession_HandleOffer_AfterClose(t *testing.T) {
	s := NewSession(context.Background(), "sess-2", testDeps(t), 0, discardLogger())
	require.NoError(t, s.Close())

	_, err := s.HandleOffer([]byte(sampleOffer))
	require.ErrorIs(t, err, ErrSessionClosed)
}

func rrPacket(reporterSSRC uint32) []byte {
	buf := make([]byte, 8)
	buf[0] = 0x80 // V=2, P=0, RC=0
	buf[1] = 201  // RR
	binary.BigEndian.PutUint16(buf[2:4], 1)
	binary.BigEndian.PutUint32(buf[4:8], reporterSSRC)
	return buf
}

func TestSession_RewriteRTCP(t *testing.T) {
	s := NewSession(context.Background(), "sess-3", testDeps(t), 0, discardLogger())
	defer s.Close()

	buf := rrPacket(0xAAAAAAAA)
	require.NoError(t, s.RewriteRTCP(buf, s.handle.AudioID, true, 0x11111111, 0x22222222))
	require.Equal(t, uint32(0x11111111), binary.BigEndian.Uint32(buf[4:8]))
}

func TestSession_RequestKeyframe_EmitsFIR(t *testing.T) {
	deps := testDeps(t)
	s := NewSession(context.Background(), "sess-4", deps, 0, discardLogger())
	defer s.Close()

	out := make([]byte, 20)
	var seq uint8
	sent, err := s.RequestKeyframe(out, s.handle.VideoID, 0xAAAAAAAA, &seq, true)
	require.NoError(t, err)
	require.True(t, sent)
	require.Equal(t, uint8(1), seq)
	require.Equal(t, uint32(0xAAAAAAAA), binary.BigEndian.Uint32(out[8:12]))
}

func TestSession_Close_Idempotent(t *testing.T) {
	s := NewSession(context.Background(), "sess-5", testDeps(t), 0, discardLogger())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
