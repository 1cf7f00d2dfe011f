package executor

// simulation.go — paper execution: artificial latency, occasional rejections,
// positive slippage on fills and a bounded random walk for price marks.

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

const (
	simMinLatency  = 300 * time.Millisecond
	simMaxLatency  = 800 * time.Millisecond
	simFailureRate = 0.05 // fills succeed ≥95% of the time
	simMaxSlippage = 0.01 // up to 1% worse than quoted
	simMaxDrift    = 0.02 // per-cycle random walk step
)

// simulator produces deterministic-enough fills for paper trading.
// Tests swap the rng and zero the latency.
type simulator struct {
	rng        *rand.Rand
	minLatency time.Duration
	maxLatency time.Duration
}

func newSimulator(rng *rand.Rand) simulator {
	return simulator{rng: rng, minLatency: simMinLatency, maxLatency: simMaxLatency}
}

// execute settles a pending trade in simulation. On success it applies a
// small positive slippage to the fill price and recomputes the share count
// from the unchanged total cost. On failure the trade stays untouched so the
// caller can mark it FAILED without any portfolio mutation.
func (s simulator) execute(ctx context.Context, t *domain.Trade) bool {
	if err := s.wait(ctx); err != nil {
		return false
	}

	if s.rng.Float64() < simFailureRate {
		slog.Debug("simulated fill rejected", "trade", t.ID)
		return false
	}

	slippage := s.rng.Float64() * simMaxSlippage
	fillPrice := clampPrice(t.Price * (1 + slippage))
	t.Price = fillPrice
	t.Shares = t.Total / fillPrice
	return true
}

// wait sleeps the artificial execution latency, respecting cancellation.
func (s simulator) wait(ctx context.Context) error {
	if s.maxLatency <= 0 {
		return nil
	}
	span := s.maxLatency - s.minLatency
	latency := s.minLatency
	if span > 0 {
		latency += time.Duration(s.rng.Int63n(int64(span)))
	}
	select {
	case <-time.After(latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drift moves a price one random-walk step, bounded to [0.01, 0.99].
func (s simulator) drift(price float64) float64 {
	step := (s.rng.Float64()*2 - 1) * simMaxDrift
	return clampPrice(price + step)
}
