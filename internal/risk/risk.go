package risk

// Pure, stateless functions over (SafetyLimits, AgentState, BettingOpportunity).
// Nothing here mutates state; the executor owns all portfolio mutation.

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

const (
	// Half-Kelly: scale the optimal fraction down to halve variance.
	kellyMultiplier = 0.5
	// Hard cap on the bankroll fraction a single Kelly suggestion may reach.
	maxKellyFraction = 0.10
	// Absolute per-trade ceiling as fraction of bankroll.
	maxBankrollPerTrade = 0.05
	// Opportunities below this confidence are rejected outright.
	minConfidence = 0.55
)

// KellySize returns the suggested bet size in USD for the given opportunity
// using fractional Kelly. price is the market price of the YES outcome;
// predictedProb the estimated probability that YES occurs.
//
//	YES: odds = (1-price)/price, p = predictedProb
//	NO:  odds = price/(1-price), p = 1-predictedProb
//	kelly = (odds×p - (1-p)) / odds
//
// The half-Kelly fraction is clamped to [0, 0.10] before scaling by bankroll.
func KellySize(bankroll, price, predictedProb float64, bet domain.BetSide) float64 {
	if price <= 0 || price >= 1 || bankroll <= 0 {
		return 0
	}

	var odds, p float64
	if bet == domain.BetNo {
		odds = price / (1 - price)
		p = 1 - predictedProb
	} else {
		odds = (1 - price) / price
		p = predictedProb
	}
	if odds <= 0 {
		return 0
	}

	kelly := (odds*p - (1 - p)) / odds
	fraction := kelly * kellyMultiplier
	if fraction < 0 {
		fraction = 0
	}
	if fraction > maxKellyFraction {
		fraction = maxKellyFraction
	}
	return bankroll * fraction
}

// ResolveSize turns the Kelly suggestion into the actual order size by
// applying every cap: max bet size, remaining room under total exposure,
// remaining room under the per-market cap, and 5% of bankroll. The result is
// floored to cents; anything negative means "do not trade" and returns 0.
func ResolveSize(limits domain.SafetyLimits, state *domain.AgentState, opp domain.BettingOpportunity) float64 {
	size := KellySize(state.Bankroll, opp.Outcome.Price, opp.PredictedProbability, opp.RecommendedBet)

	size = math.Min(size, limits.MaxBetSize)
	size = math.Min(size, limits.MaxTotalExposure-state.TotalExposure())
	size = math.Min(size, state.Bankroll*limits.MaxPositionPercent-state.MarketExposure(opp.Market.ID))
	size = math.Min(size, state.Bankroll*maxBankrollPerTrade)

	size = math.Floor(size*100) / 100
	if size < 0 {
		return 0
	}
	return size
}

// CheckSafety evaluates the circuit-breaker conditions in order and returns
// a human-readable reason for the first one that fires.
func CheckSafety(limits domain.SafetyLimits, state *domain.AgentState) (bool, string) {
	if state.TodayPnL < -limits.MaxDailyLoss {
		return true, fmt.Sprintf("Daily loss limit reached: $%.2f > $%.0f",
			-state.TodayPnL, limits.MaxDailyLoss)
	}
	if exposure := state.TotalExposure(); exposure >= limits.MaxTotalExposure {
		return true, fmt.Sprintf("Total exposure limit reached: $%.2f >= $%.0f",
			exposure, limits.MaxTotalExposure)
	}
	// Deliberately compares raw bankroll against the configured bet size,
	// not against any dynamically recalculated limit.
	if state.Bankroll < limits.MaxBetSize {
		return true, fmt.Sprintf("Bankroll too low: $%.2f < minimum bet size $%.0f",
			state.Bankroll, limits.MaxBetSize)
	}
	return false, ""
}

// ValidateOpportunity rejects an opportunity independently of sizing.
// Any single failing condition invalidates it with a reason.
func ValidateOpportunity(limits domain.SafetyLimits, opp domain.BettingOpportunity) (bool, string) {
	if opp.Market.Liquidity < limits.MinLiquidity {
		return false, fmt.Sprintf("liquidity $%.0f below minimum $%.0f",
			opp.Market.Liquidity, limits.MinLiquidity)
	}
	if !opp.Market.Tradeable() {
		return false, "market inactive or closed"
	}
	if opp.ExpectedValue <= 0 {
		return false, fmt.Sprintf("expected value %.4f is not positive", opp.ExpectedValue)
	}
	if opp.Confidence < minConfidence {
		return false, fmt.Sprintf("confidence %.2f below %.2f", opp.Confidence, minConfidence)
	}
	return true, ""
}

// RecalculateLimits is the drawdown throttle: when both today's and total
// P&L are negative, every sizing limit is halved. Returns a copy; the
// caller's limits are untouched.
func RecalculateLimits(limits domain.SafetyLimits, state *domain.AgentState) domain.SafetyLimits {
	if state.TodayPnL >= 0 || state.TotalPnL >= 0 {
		return limits
	}
	out := limits
	out.MaxBetSize /= 2
	out.MaxTotalExposure /= 2
	out.MaxPositionPercent /= 2
	return out
}
