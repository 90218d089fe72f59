// Package rtcp implements the byte-exact RTCP codec and B2BUA rewriting
// rules described in RFC 3550/4585/5104 and draft-ietf-straw-b2bua-rtcp-00:
// parsing and validating compound packets, substituting SSRCs on the way
// through a gateway, extracting NACK sequence numbers, capping REMB
// bitrates, and synthesizing FIR/PLI/REMB feedback.
package rtcp

import "errors"

// Error kinds surfaced by this package.
var (
	// ErrMalformed is returned when a compound buffer violates a bounds
	// or version invariant while being parsed or rewritten. On
	// ErrMalformed from FixSSRC, the caller must treat the buffer as
	// untrusted: partial mutation may have already occurred.
	ErrMalformed = errors.New("rtcp: malformed packet")

	// ErrUnknownFeedback is returned when an operation that requires a
	// specific feedback type/format (e.g. CapREMB) is pointed at a
	// sub-packet that isn't it.
	ErrUnknownFeedback = errors.New("rtcp: unknown or absent feedback sub-packet")

	// ErrBufferTooSmall is returned by the synthesis operations when the
	// caller-supplied output buffer is smaller than the fixed size they
	// produce.
	ErrBufferTooSmall = errors.New("rtcp: output buffer too small")
)
