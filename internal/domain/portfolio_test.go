package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Position ---

func TestPosition_ApplyFill_WeightedAverage(t *testing.T) {
	// 10 shares @ 0.20 ($2.00) + 5 shares @ 0.30 ($1.50) → avg 3.50/15
	var p Position
	p.ApplyFill(10, 2.00)
	p.ApplyFill(5, 1.50)

	assert.InDelta(t, 15.0, p.Shares, 1e-9)
	assert.InDelta(t, 0.23333, p.AvgPrice, 0.0001)
	assert.InDelta(t, 3.50, p.CostBasis(), 1e-9)
}

func TestPosition_ApplyFill_OrderIndependent(t *testing.T) {
	var a, b Position
	a.ApplyFill(10, 2.00)
	a.ApplyFill(5, 1.50)
	b.ApplyFill(5, 1.50)
	b.ApplyFill(10, 2.00)

	assert.InDelta(t, a.AvgPrice, b.AvgPrice, 1e-9)
	assert.InDelta(t, a.Shares, b.Shares, 1e-9)
}

func TestPosition_ApplyFill_ZeroSharesIgnored(t *testing.T) {
	var p Position
	p.ApplyFill(0, 0)
	assert.Equal(t, 0.0, p.Shares)
	assert.Equal(t, 0.0, p.AvgPrice)
}

func TestPosition_Mark(t *testing.T) {
	var p Position
	p.ApplyFill(15, 3.50)
	p.Mark(0.30)

	// PnL = 15 × (0.30 - 0.23333) = 1.00
	assert.InDelta(t, 1.0, p.PnL, 0.001)
	assert.InDelta(t, 28.57, p.PnLPercent, 0.01)
	assert.Equal(t, 0.30, p.CurrentPrice)
}

func TestPosition_Mark_LossSide(t *testing.T) {
	var p Position
	p.ApplyFill(10, 2.00)
	p.Mark(0.10)

	assert.InDelta(t, -1.0, p.PnL, 1e-9)
	assert.InDelta(t, -50.0, p.PnLPercent, 1e-9)
}

func TestPositionKey(t *testing.T) {
	assert.Equal(t, "0xabc:Yes", PositionKey("0xabc", "Yes"))
}

// --- AgentState ---

func filledTrade(id, marketID string, shares, total, price float64) Trade {
	return Trade{
		ID:        id,
		MarketID:  marketID,
		Question:  "q",
		Outcome:   "Yes",
		Side:      BetYes,
		Shares:    shares,
		Price:     price,
		Total:     total,
		Simulated: true,
		Status:    TradeFilled,
		Timestamp: time.Now(),
	}
}

func TestAgentState_ApplyFill_CreatesPosition(t *testing.T) {
	s := NewAgentState(1000)
	s.ApplyFill(filledTrade("t1", "m1", 50, 10, 0.20))

	require.Len(t, s.Positions, 1)
	pos := s.Positions[PositionKey("m1", "Yes")]
	require.NotNil(t, pos)
	assert.InDelta(t, 50.0, pos.Shares, 1e-9)
	assert.InDelta(t, 0.20, pos.AvgPrice, 1e-9)
	assert.InDelta(t, 990.0, s.Bankroll, 1e-9)
}

func TestAgentState_ApplyFill_AggregatesSameOutcome(t *testing.T) {
	s := NewAgentState(1000)
	s.ApplyFill(filledTrade("t1", "m1", 50, 10, 0.20))
	s.ApplyFill(filledTrade("t2", "m1", 20, 6, 0.30))

	require.Len(t, s.Positions, 1)
	pos := s.Positions[PositionKey("m1", "Yes")]
	assert.InDelta(t, 70.0, pos.Shares, 1e-9)
	assert.InDelta(t, 16.0/70.0, pos.AvgPrice, 1e-9)
	assert.InDelta(t, 984.0, s.Bankroll, 1e-9)
}

func TestAgentState_Exposure(t *testing.T) {
	s := NewAgentState(1000)
	s.ApplyFill(filledTrade("t1", "m1", 50, 10, 0.20))
	s.ApplyFill(filledTrade("t2", "m2", 25, 5, 0.20))

	assert.InDelta(t, 15.0, s.TotalExposure(), 1e-9)
	assert.InDelta(t, 10.0, s.MarketExposure("m1"), 1e-9)
	assert.InDelta(t, 5.0, s.MarketExposure("m2"), 1e-9)
	assert.Equal(t, 0.0, s.MarketExposure("m3"))
}

func TestAgentState_RecomputePnL(t *testing.T) {
	s := NewAgentState(1000)
	s.ApplyFill(filledTrade("t1", "m1", 50, 10, 0.20))
	s.ApplyFill(filledTrade("t2", "m2", 25, 5, 0.20))

	s.Positions[PositionKey("m1", "Yes")].Mark(0.25) // +2.50
	s.Positions[PositionKey("m2", "Yes")].Mark(0.10) // -2.50
	s.RecomputePnL()

	assert.InDelta(t, 0.0, s.TodayPnL, 1e-9)
	assert.InDelta(t, 0.0, s.TotalPnL, 1e-9)

	s.Positions[PositionKey("m2", "Yes")].Mark(0.30) // +2.50
	s.RecomputePnL()
	assert.InDelta(t, 5.0, s.TodayPnL, 1e-9)
	assert.InDelta(t, 5.0, s.TotalPnL, 1e-9)
}

func TestAgentState_TradeLog(t *testing.T) {
	s := NewAgentState(1000)
	t1 := filledTrade("t1", "m1", 50, 10, 0.20)
	t1.Status = TradePending
	t2 := filledTrade("t2", "m2", 25, 5, 0.20)
	t2.Status = TradePending

	s.PrependTrade(t1)
	s.PrependTrade(t2)

	// Más reciente primero
	require.Len(t, s.Trades, 2)
	assert.Equal(t, "t2", s.Trades[0].ID)
	assert.Equal(t, "t1", s.Trades[1].ID)

	t1.Status = TradeFilled
	t1.Price = 0.21
	s.UpdateTrade(t1)
	assert.Equal(t, TradeFilled, s.Trades[1].Status)
	assert.Equal(t, 0.21, s.Trades[1].Price)
	assert.Equal(t, TradePending, s.Trades[0].Status)
}

func TestAgentState_UpdateTrade_UnknownIDIsNoop(t *testing.T) {
	s := NewAgentState(1000)
	s.PrependTrade(filledTrade("t1", "m1", 50, 10, 0.20))
	s.UpdateTrade(filledTrade("missing", "m9", 1, 1, 0.5))

	require.Len(t, s.Trades, 1)
	assert.Equal(t, "t1", s.Trades[0].ID)
}

func TestAgentState_Snapshot_DeepCopy(t *testing.T) {
	s := NewAgentState(1000)
	s.ApplyFill(filledTrade("t1", "m1", 50, 10, 0.20))
	s.PrependTrade(filledTrade("t1", "m1", 50, 10, 0.20))

	snap := s.Snapshot()

	// Mutar el estado vivo no debe tocar el snapshot
	s.Positions[PositionKey("m1", "Yes")].Mark(0.99)
	s.Bankroll = 0
	s.Trades[0].Status = TradeFailed

	assert.InDelta(t, 990.0, snap.Bankroll, 1e-9)
	assert.Equal(t, 0.20, snap.Positions[PositionKey("m1", "Yes")].CurrentPrice)
	assert.Equal(t, TradeFilled, snap.Trades[0].Status)
}
