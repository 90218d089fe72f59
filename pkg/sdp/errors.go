// Package sdp implements the SDP rewriting layer of the gateway: a
// parser adapter over an RFC 4566 tokenizer, and the three operations
// that read and write session descriptions around a B2BUA's ICE/DTLS
// state — extraction, anonymization, and merging.
package sdp

import "errors"

var (
	// ErrInvalidSDP is returned when the underlying tokenizer rejects
	// the input text.
	ErrInvalidSDP = errors.New("sdp: invalid sdp")

	// ErrMissingTransport is returned by Extract when, after scanning
	// session- and media-level attributes, the ufrag, pwd, or
	// fingerprint hash/hex is still absent.
	ErrMissingTransport = errors.New("sdp: missing ufrag, pwd, or fingerprint")

	// ErrNoSuchStream is returned by Extract when none of the selected
	// m-lines has a corresponding stream in the ICE handle. A single
	// m-line without a stream is skipped, not fatal.
	ErrNoSuchStream = errors.New("sdp: no such stream")
)
