// Package dtls provides the minimal DTLS collaborator interface the
// SDP merger needs plus a stdlib-backed implementation that derives a
// certificate fingerprint without performing a handshake. The
// handshake itself, packet encryption, and SRTP live outside this
// module and are never implemented here.
package dtls

import "github.com/meetecho-oss/b2bua-core/pkg/ice"

// Collaborator is the external DTLS engine the SDP merger queries for
// the local fingerprint and the textual form of a role.
type Collaborator interface {
	// LocalFingerprint returns the local certificate's fingerprint as
	// a colon-separated hex string (RFC 8122 form), with no
	// "sha-256 " prefix.
	LocalFingerprint() (string, error)

	// RoleText renders role as the `a=setup` token: "active",
	// "passive", or "actpass".
	RoleText(role ice.DTLSRole) string
}
