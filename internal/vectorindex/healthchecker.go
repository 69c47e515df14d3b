package vectorindex

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/health"
)

// IndexHealthChecker monitors a vector index.
type IndexHealthChecker struct {
	idx          Index
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewIndexHealthChecker(idx Index, log zerolog.Logger, probeTimeout time.Duration) *IndexHealthChecker {
	hc := &IndexHealthChecker{idx: idx, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0)
	return hc
}

func (c *IndexHealthChecker) Name() string    { return "vectorindex" }
func (c *IndexHealthChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

func (c *IndexHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		to := c.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()
		p, ok := any(c.idx).(health.HealthPinger)
		if !ok {
			// No probe available; assume healthy.
			c.healthy.Store(1)
			return
		}
		if err := p.HealthPing(checkCtx); err != nil {
			c.healthy.Store(0)
			c.log.Error().Stack().Str("checker", c.Name()).Err(err).Msg("vector index health check failed")
			return
		}
		c.healthy.Store(1)
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
