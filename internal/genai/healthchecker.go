package genai

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/health"
)

// ServiceHealthChecker monitors a generation backend.
type ServiceHealthChecker struct {
	svc          Service
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewServiceHealthChecker(svc Service, log zerolog.Logger, probeTimeout time.Duration) *ServiceHealthChecker {
	hc := &ServiceHealthChecker{svc: svc, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0) // start unhealthy until first successful probe
	return hc
}

func (c *ServiceHealthChecker) Name() string    { return "generator" }
func (c *ServiceHealthChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

func (c *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		to := c.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()
		p, ok := any(c.svc).(health.HealthPinger)
		if !ok {
			// Backends without a cheap probe (mock) count as healthy.
			c.healthy.Store(1)
			return
		}
		if err := p.HealthPing(checkCtx); err != nil {
			c.healthy.Store(0)
			c.log.Error().Stack().Str("checker", c.Name()).Err(err).Msg("generator health check failed")
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
