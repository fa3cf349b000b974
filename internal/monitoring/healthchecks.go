package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_INTERVAL = 15 * time.Second
	HEALTHCHECK_TIMEOUT  = 2 * time.Second
)

// Pinger is anything that can answer a liveness probe, such as the valkey client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorValkeyHealth probes p on every tick and stores the outcome in
// healthy until ctx is cancelled. State changes are logged once.
func MonitorValkeyHealth(ctx context.Context, p Pinger, interval time.Duration, healthy *atomic.Bool) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := probe(ctx, p)
			if healthy.Swap(isHealthy) == isHealthy {
				continue
			}
			if isHealthy {
				slog.Info("[HealthCheck] Valkey is healthy again")
			} else {
				slog.Warn("[HealthCheck] Valkey is unhealthy, rate limiting fails open")
			}
		}
	}
}

func probe(ctx context.Context, p Pinger) bool {
	ctx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()
	return p.Ping(ctx) == nil
}
