package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/meetecho-oss/b2bua-core/pkg/ice"
)

// KeyframePacer throttles outbound FIR/PLI keyframe requests per stream so a
// downstream renegotiation storm or a flapping receiver can't turn into a
// FIR/PLI flood on the upstream publisher. One limiter per stream, smooth
// pacing, no bursting - the same shape nest.CommandQueue uses to keep Nest
// API calls under its QPM ceiling, repurposed here for keyframe requests.
type KeyframePacer struct {
	logger   *slog.Logger
	interval time.Duration

	mu       sync.Mutex
	limiters map[ice.StreamID]*rate.Limiter
}

// NewKeyframePacer builds a pacer that allows at most one keyframe request
// per stream every interval. A zero or negative interval disables pacing.
func NewKeyframePacer(interval time.Duration, logger *slog.Logger) *KeyframePacer {
	return &KeyframePacer{
		logger:   logger,
		interval: interval,
		limiters: make(map[ice.StreamID]*rate.Limiter),
	}
}

// Allow reports whether a keyframe request for streamID may be sent now. A
// false result means one was sent too recently and the caller should drop
// the request rather than forward it upstream.
func (p *KeyframePacer) Allow(streamID ice.StreamID) bool {
	if p.interval <= 0 {
		return true
	}

	limiter := p.limiterFor(streamID)
	allowed := limiter.Allow()
	if !allowed {
		p.logger.Debug("keyframe request paced out", "stream", string(streamID))
	}
	return allowed
}

// Wait blocks until a keyframe request for streamID is allowed or ctx is
// done, whichever comes first.
func (p *KeyframePacer) Wait(ctx context.Context, streamID ice.StreamID) error {
	if p.interval <= 0 {
		return nil
	}
	return p.limiterFor(streamID).Wait(ctx)
}

func (p *KeyframePacer) limiterFor(streamID ice.StreamID) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	limiter, ok := p.limiters[streamID]
	if !ok {
		qps := rate.Limit(1.0 / p.interval.Seconds())
		limiter = rate.NewLimiter(qps, 1)
		p.limiters[streamID] = limiter
	}
	return limiter
}

// Forget drops the limiter state for a stream, e.g. once its session ends.
func (p *KeyframePacer) Forget(streamID ice.StreamID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.limiters, streamID)
}
