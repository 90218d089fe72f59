package dtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/meetecho-oss/b2bua-core/pkg/ice"
)

// SelfSignedCollaborator is a Collaborator backed by a single
// self-signed certificate generated at construction time, matching
// what a real DTLS stack would present for SDP fingerprinting
// purposes without this module performing a handshake.
type SelfSignedCollaborator struct {
	cert        tls.Certificate
	fingerprint string
}

// NewSelfSignedCollaborator generates an ECDSA P-256 self-signed
// certificate and precomputes its SHA-256 fingerprint in RFC 8122
// colon-separated hex form.
func NewSelfSignedCollaborator() (*SelfSignedCollaborator, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("dtls: generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("dtls: generate serial: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "b2bua-core"},
		NotBefore:    time.Unix(0, 0),
		NotAfter:     time.Unix(0, 0).AddDate(10, 0, 0),
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("dtls: create certificate: %w", err)
	}

	sum := sha256.Sum256(der)
	return &SelfSignedCollaborator{
		cert: tls.Certificate{
			Certificate: [][]byte{der},
			PrivateKey:  key,
		},
		fingerprint: colonHex(sum[:]),
	}, nil
}

func colonHex(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, ":")
}

// LocalFingerprint implements Collaborator.
func (c *SelfSignedCollaborator) LocalFingerprint() (string, error) {
	return c.fingerprint, nil
}

// RoleText implements Collaborator.
func (c *SelfSignedCollaborator) RoleText(role ice.DTLSRole) string {
	switch role {
	case ice.DTLSRoleClient:
		return "active"
	case ice.DTLSRoleServer:
		return "passive"
	default:
		return "actpass"
	}
}
