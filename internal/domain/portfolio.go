package domain

import "time"

// TradeStatus represents the lifecycle of a trade attempt.
// Trades are immutable once created except for this status transition.
type TradeStatus string

const (
	TradePending TradeStatus = "PENDING"
	TradeFilled  TradeStatus = "FILLED"
	TradeFailed  TradeStatus = "FAILED"
)

// Trade is one executed (or attempted) order against a market outcome.
type Trade struct {
	ID        string
	MarketID  string
	Question  string
	Outcome   string // "Yes" | "No"
	Side      BetSide
	Shares    float64
	Price     float64
	Total     float64 // cost in USD
	Simulated bool
	Status    TradeStatus
	Timestamp time.Time
}

// Position is the aggregate holding for one (marketID, outcome) pair.
// Owned exclusively by the execution cycle: mutated only through fills
// (weighted-average cost basis) and price marks.
type Position struct {
	MarketID     string
	Question     string
	Outcome      string
	Shares       float64
	AvgPrice     float64
	CurrentPrice float64
	PnL          float64
	PnLPercent   float64
}

// CostBasis returns the cumulative amount paid for the current share count.
func (p Position) CostBasis() float64 {
	return p.Shares * p.AvgPrice
}

// ApplyFill folds a filled trade into the position using volume-weighted
// average cost: newAvg = (oldShares×oldAvg + total) / newShares.
func (p *Position) ApplyFill(shares, total float64) {
	newShares := p.Shares + shares
	if newShares <= 0 {
		return
	}
	p.AvgPrice = (p.Shares*p.AvgPrice + total) / newShares
	p.Shares = newShares
}

// Mark updates the position to the given price and recomputes P&L.
func (p *Position) Mark(price float64) {
	p.CurrentPrice = price
	p.PnL = p.Shares * (p.CurrentPrice - p.AvgPrice)
	if basis := p.CostBasis(); basis > 0 {
		p.PnLPercent = p.PnL / basis * 100
	} else {
		p.PnLPercent = 0
	}
}

// PositionKey builds the map key for a (marketID, outcome) position.
func PositionKey(marketID, outcome string) string {
	return marketID + ":" + outcome
}

// SafetyLimits bounds what the agent is allowed to risk. Externally supplied,
// mutable between cycles, read-only within a cycle.
type SafetyLimits struct {
	MaxBetSize         float64 `yaml:"max_bet_size"`
	MaxDailyLoss       float64 `yaml:"max_daily_loss"`
	MaxTotalExposure   float64 `yaml:"max_total_exposure"`
	MaxPositionPercent float64 `yaml:"max_position_percent"` // fraction of bankroll per market
	MinLiquidity       float64 `yaml:"min_liquidity"`
}

// AgentState is the aggregate root of the engine: cash, open positions,
// trade log and the last scan's ranked opportunities. Constructed once at
// engine start and mutated in place by each execution cycle.
//
// TodayPnL and TotalPnL are both derived as the sum of open-position PnL;
// realized and unrealized P&L are not tracked separately.
type AgentState struct {
	Bankroll        float64
	TodayPnL        float64
	TotalPnL        float64
	Positions       map[string]*Position
	Trades          []Trade // insertion order: newest first
	Opportunities   []BettingOpportunity
	IsRunning       bool
	SafetyTriggered bool
	SafetyReason    string
}

// NewAgentState creates a state seeded with the given bankroll.
func NewAgentState(bankroll float64) *AgentState {
	return &AgentState{
		Bankroll:  bankroll,
		Positions: make(map[string]*Position),
	}
}

// TotalExposure returns the sum of all position cost bases.
func (s *AgentState) TotalExposure() float64 {
	total := 0.0
	for _, p := range s.Positions {
		total += p.CostBasis()
	}
	return total
}

// MarketExposure returns the cost basis already committed to one market.
func (s *AgentState) MarketExposure(marketID string) float64 {
	total := 0.0
	for _, p := range s.Positions {
		if p.MarketID == marketID {
			total += p.CostBasis()
		}
	}
	return total
}

// ApplyFill mutates the portfolio with a FILLED trade: updates or creates the
// matching position and decrements the bankroll by the trade's total cost.
// This is the only path that mutates Bankroll or Positions.
func (s *AgentState) ApplyFill(t Trade) {
	key := PositionKey(t.MarketID, t.Outcome)
	pos, ok := s.Positions[key]
	if !ok {
		pos = &Position{
			MarketID: t.MarketID,
			Question: t.Question,
			Outcome:  t.Outcome,
		}
		s.Positions[key] = pos
	}
	pos.ApplyFill(t.Shares, t.Total)
	pos.Mark(t.Price)
	s.Bankroll -= t.Total
}

// RecomputePnL re-derives TodayPnL and TotalPnL as the sum of all
// open-position PnL.
func (s *AgentState) RecomputePnL() {
	total := 0.0
	for _, p := range s.Positions {
		total += p.PnL
	}
	s.TodayPnL = total
	s.TotalPnL = total
}

// PrependTrade inserts a trade at the head of the log (newest first).
func (s *AgentState) PrependTrade(t Trade) {
	s.Trades = append([]Trade{t}, s.Trades...)
}

// UpdateTrade replaces the logged trade with the same ID, used for the
// PENDING → FILLED/FAILED transition after execution settles.
func (s *AgentState) UpdateTrade(t Trade) {
	for i := range s.Trades {
		if s.Trades[i].ID == t.ID {
			s.Trades[i] = t
			return
		}
	}
}

// Snapshot returns a deep copy safe to hand to observers while the engine
// keeps mutating the live state.
func (s *AgentState) Snapshot() AgentState {
	snap := *s
	snap.Positions = make(map[string]*Position, len(s.Positions))
	for k, p := range s.Positions {
		cp := *p
		snap.Positions[k] = &cp
	}
	snap.Trades = append([]Trade(nil), s.Trades...)
	snap.Opportunities = append([]BettingOpportunity(nil), s.Opportunities...)
	return snap
}
