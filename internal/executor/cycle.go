package executor

// cycle.go — one execution cycle: safety gate → scan → trade → mark → publish.
//
// Failure semantics: network errors during market fetch or price refresh are
// logged and the cycle proceeds with whatever data it has. Only an explicit
// safety breach is fatal to the run.

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polyagent/internal/domain"
	"github.com/alejandrodnm/polyagent/internal/ports"
	"github.com/alejandrodnm/polyagent/internal/risk"
)

// runCycle executes one full cycle. Returns true when the safety breaker
// fired and the run must stop.
func (e *Executor) runCycle(ctx context.Context) bool {
	start := time.Now()
	cfg := e.config()

	// 1. Safety gate. Breach is terminal for this run: restarting requires
	// an explicit external Start.
	e.stateMu.Lock()
	breached, reason := risk.CheckSafety(cfg.Limits, e.state)
	if breached {
		e.state.SafetyTriggered = true
		e.state.SafetyReason = reason
		e.state.IsRunning = false
		e.phase = StateSafetyStopped
		e.stateMu.Unlock()

		slog.Warn("safety breaker triggered, stopping", "reason", reason)
		if e.notifier != nil {
			if err := e.notifier.NotifySafetyStop(ctx, reason); err != nil {
				slog.Warn("notifier error", "err", err)
			}
		}
		e.publish()
		return true
	}
	e.stateMu.Unlock()

	// 2. Fetch + scan. Fetch errors leave us with zero new opportunities
	// but do not abort the cycle.
	markets, err := e.markets.GetMarkets(ctx, cfg.MarketLimit)
	if err != nil {
		slog.Warn("market fetch failed, continuing with empty batch", "err", err)
		markets = nil
	}

	opps := e.scan.Scan(ctx, markets)
	if len(opps) > cfg.TopN {
		opps = opps[:cfg.TopN]
	}

	e.stateMu.Lock()
	e.state.Opportunities = opps
	e.stateMu.Unlock()

	if e.notifier != nil {
		if err := e.notifier.NotifyOpportunities(ctx, opps); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	e.publish()

	// 3. Auto-execute the top-K in ranked order.
	filled, failed := 0, 0
	if cfg.AutoExecute {
		limits := cfg.Limits
		e.stateMu.Lock()
		if cfg.DynamicLimits {
			limits = risk.RecalculateLimits(limits, e.state)
		}
		e.stateMu.Unlock()

		taken := min(cfg.MaxTradesPerCycle, len(opps))
		for _, opp := range opps[:taken] {
			switch e.executeOpportunity(ctx, cfg, limits, opp) {
			case tradeFilled:
				filled++
			case tradeFailed:
				failed++
			case tradeSkipped:
			}
		}
	}

	// 4. Mark all open positions to current price and re-derive P&L.
	e.markPositions(ctx, cfg)
	e.publish()

	if e.store != nil {
		e.stateMu.Lock()
		rec := ports.CycleRecord{
			RanAt:         start,
			Opportunities: len(e.state.Opportunities),
			TradesFilled:  filled,
			TradesFailed:  failed,
			Bankroll:      e.state.Bankroll,
			TotalPnL:      e.state.TotalPnL,
		}
		e.stateMu.Unlock()
		if err := e.store.SaveCycle(ctx, rec); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("cycle complete",
		"opportunities", len(opps),
		"filled", filled,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return false
}

// tradeOutcome is the per-opportunity result within a cycle.
type tradeOutcome int

const (
	tradeSkipped tradeOutcome = iota
	tradeFilled
	tradeFailed
)

// executeOpportunity validates, sizes and executes one opportunity.
// Invalid or zero-sized opportunities are skipped silently (log only,
// non-fatal); no trade is created for them.
func (e *Executor) executeOpportunity(ctx context.Context, cfg Config, limits domain.SafetyLimits, opp domain.BettingOpportunity) tradeOutcome {
	valid, reason := risk.ValidateOpportunity(limits, opp)
	if !valid {
		slog.Debug("opportunity rejected", "market", opp.Market.ID, "reason", reason)
		return tradeSkipped
	}

	e.stateMu.Lock()
	size := risk.ResolveSize(limits, e.state, opp)
	e.stateMu.Unlock()
	if size <= 0 {
		slog.Debug("no size available for opportunity", "market", opp.Market.ID)
		return tradeSkipped
	}

	live := cfg.LiveTrading && e.trader != nil && e.trader.HasCredentials()
	if cfg.LiveTrading && !live {
		slog.Warn("live trading requested but no credentials, simulating",
			"market", opp.Market.ID)
	}

	price := opp.Outcome.Price
	trade := domain.Trade{
		ID:        uuid.NewString(),
		MarketID:  opp.Market.ID,
		Question:  opp.Market.Question,
		Outcome:   opp.Outcome.Name,
		Side:      opp.RecommendedBet,
		Shares:    size / price,
		Price:     price,
		Total:     size,
		Simulated: !live,
		Status:    domain.TradePending,
		Timestamp: time.Now(),
	}

	e.stateMu.Lock()
	e.state.PrependTrade(trade)
	e.stateMu.Unlock()

	var filled bool
	if live {
		filled = e.executeLive(ctx, &trade, opp)
	} else {
		filled = e.sim.execute(ctx, &trade)
	}

	e.stateMu.Lock()
	if filled {
		trade.Status = domain.TradeFilled
		e.state.UpdateTrade(trade)
		e.state.ApplyFill(trade)
	} else {
		trade.Status = domain.TradeFailed
		e.state.UpdateTrade(trade)
	}
	e.stateMu.Unlock()

	if e.notifier != nil {
		if err := e.notifier.NotifyTrade(ctx, trade); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	if e.store != nil {
		if err := e.store.SaveTrade(ctx, trade); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}
	e.publish()

	if filled {
		return tradeFilled
	}
	return tradeFailed
}

// executeLive delegates order placement to the trading API.
// Rejections mark the trade FAILED; the portfolio stays untouched.
func (e *Executor) executeLive(ctx context.Context, t *domain.Trade, opp domain.BettingOpportunity) bool {
	res, err := e.trader.PlaceOrder(ctx, domain.OrderRequest{
		TokenID: opp.Outcome.ID,
		Side:    t.Side,
		Size:    t.Total,
		Price:   t.Price,
	})
	if err != nil {
		slog.Warn("order placement failed", "market", t.MarketID, "err", err)
		return false
	}
	if !res.Success {
		slog.Warn("order rejected", "market", t.MarketID, "reason", res.Error)
		return false
	}
	return true
}

// markPositions marks every open position to the current price (random walk
// in simulation, real quote in live mode), bounded to [0.01, 0.99], then
// re-derives the aggregate P&L figures.
func (e *Executor) markPositions(ctx context.Context, cfg Config) {
	type mark struct {
		key   string
		price float64
	}

	e.stateMu.Lock()
	marks := make([]mark, 0, len(e.state.Positions))
	for key, pos := range e.state.Positions {
		marks = append(marks, mark{key: key, price: pos.CurrentPrice})
	}
	e.stateMu.Unlock()

	for i := range marks {
		if cfg.LiveTrading {
			quote, err := e.markets.GetPrices(ctx, marketIDFromKey(marks[i].key))
			if err != nil {
				slog.Warn("price refresh failed, keeping stale mark",
					"position", marks[i].key, "err", err)
				continue
			}
			marks[i].price = clampPrice(quote.Mid)
		} else {
			marks[i].price = e.sim.drift(marks[i].price)
		}
	}

	e.stateMu.Lock()
	for _, m := range marks {
		if pos, ok := e.state.Positions[m.key]; ok {
			pos.Mark(m.price)
		}
	}
	e.state.RecomputePnL()
	e.stateMu.Unlock()
}

func marketIDFromKey(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}

func clampPrice(p float64) float64 {
	if p < 0.01 {
		return 0.01
	}
	if p > 0.99 {
		return 0.99
	}
	return p
}
