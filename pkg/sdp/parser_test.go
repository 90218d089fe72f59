package sdp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleOffer = "v=0\r\n" +
	"o=- 123456 1 IN IP4 127.0.0.1\r\n" +
	"s=-\r\n" +
	"t=0 0\r\n" +
	"a=group:BUNDLE audio video\r\n" +
	"a=ice-ufrag:U\r\n" +
	"a=ice-pwd:P\r\n" +
	"a=fingerprint:sha-256 AB:CD:EF\r\n" +
	"m=audio 9 UDP/TLS/RTP/SAVPF 111\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"a=rtcp:9 IN IP4 0.0.0.0\r\n" +
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

func TestPreparse(t *testing.T) {
	p, err := Preparse([]byte(sampleOffer))
	require.NoError(t, err)
	require.Equal(t, 1, p.AudioCount)
	require.Equal(t, 1, p.VideoCount)
}

func TestPreparse_InvalidSDP(t *testing.T) {
	_, err := Preparse([]byte("not an sdp packet"))
	require.ErrorIs(t, err, ErrInvalidSDP)
}

func TestPreparse_CountsSkipUnsupportedMediaTypes(t *testing.T) {
	text := sampleOffer + "m=application 9 DTLS/SCTP 5000\r\n" + "c=IN IP4 0.0.0.0\r\n"
	p, err := Preparse([]byte(text))
	require.NoError(t, err)
	require.Equal(t, 1, p.AudioCount)
	require.Equal(t, 1, p.VideoCount)
}
