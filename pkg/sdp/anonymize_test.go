package sdp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var strippedPrefixes = []string{
	"a=ice-ufrag", "a=ice-pwd", "a=ice-options", "a=fingerprint", "a=group",
	"a=msid-semantic", "a=crypto", "a=setup", "a=connection", "a=rtcp",
	"a=rtcp-mux", "a=candidate", "a=ssrc", "a=extmap",
}

func TestAnonymize_StripsTransportAttributes(t *testing.T) {
	out, err := Anonymize([]byte(sampleOffer))
	require.NoError(t, err)

	text := string(out)
	for _, prefix := range strippedPrefixes {
		require.False(t, strings.Contains(text, prefix+":") || strings.Contains(text, prefix+"\r\n"),
			"anonymized output still contains %q", prefix)
	}
}

func TestAnonymize_SendrecvPreserved(t *testing.T) {
	out, err := Anonymize([]byte(sampleOffer))
	require.NoError(t, err)

	text := string(out)
	require.True(t, strings.Contains(text, "a=sendrecv\r\n"))
	require.False(t, strings.Contains(text, "a=inactive\r\n"))
}

func TestAnonymize_Idempotent(t *testing.T) {
	once, err := Anonymize([]byte(sampleOffer))
	require.NoError(t, err)
	twice, err := Anonymize(once)
	require.NoError(t, err)
	require.Equal(t, string(once), string(twice))
}

func TestAnonymize_InvalidSDP(t *testing.T) {
	_, err := Anonymize([]byte("garbage"))
	require.ErrorIs(t, err, ErrInvalidSDP)
}
