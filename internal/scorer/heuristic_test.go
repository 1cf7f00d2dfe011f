package scorer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

func testMarket(price float64) (domain.Market, domain.Outcome) {
	o := domain.Outcome{ID: "tok", Name: "Yes", Price: price}
	m := domain.Market{
		ID:        "0xcond",
		Question:  "Will it happen?",
		Liquidity: 5000,
		Active:    true,
		Outcomes:  []domain.Outcome{o},
	}
	return m, o
}

func scoreAt(t *testing.T, h *Heuristic, price float64) domain.ScoreResult {
	t.Helper()
	m, o := testMarket(price)
	res, err := h.Score(context.Background(), m, o)
	require.NoError(t, err)
	return res
}

// --- Tiers de reversión ---

func TestHeuristic_ExtremeUndervalued(t *testing.T) {
	// 0.15 → YES con reversión fuerte: 0.15 + (0.5-0.15)×0.40 = 0.29
	res := scoreAt(t, NewHeuristic(0, 0), 0.15)

	assert.Equal(t, domain.RecommendYes, res.Recommendation)
	assert.InDelta(t, 0.29, res.PredictedProbability, 1e-9)
	assert.Equal(t, 0.65, res.Confidence)
}

func TestHeuristic_ModerateUndervalued(t *testing.T) {
	// 0.25 → YES con reversión suave: 0.25 + 0.25×0.30 = 0.325
	res := scoreAt(t, NewHeuristic(0, 0), 0.25)

	assert.Equal(t, domain.RecommendYes, res.Recommendation)
	assert.InDelta(t, 0.325, res.PredictedProbability, 1e-9)
	assert.Equal(t, 0.55, res.Confidence)
}

func TestHeuristic_ModerateOvervalued(t *testing.T) {
	// 0.80 → NO: 0.80 - (0.80-0.5)×0.30 = 0.71
	res := scoreAt(t, NewHeuristic(0, 0), 0.80)

	assert.Equal(t, domain.RecommendNo, res.Recommendation)
	assert.InDelta(t, 0.71, res.PredictedProbability, 1e-9)
	assert.Equal(t, 0.55, res.Confidence)
}

func TestHeuristic_ExtremeOvervalued(t *testing.T) {
	// 0.90 → NO con reversión fuerte: 0.90 - 0.40×0.40 = 0.74
	res := scoreAt(t, NewHeuristic(0, 0), 0.90)

	assert.Equal(t, domain.RecommendNo, res.Recommendation)
	assert.InDelta(t, 0.74, res.PredictedProbability, 1e-9)
	assert.Equal(t, 0.65, res.Confidence)
}

func TestHeuristic_FairBandSkips(t *testing.T) {
	for _, price := range []float64{0.30, 0.45, 0.50, 0.60, 0.75} {
		res := scoreAt(t, NewHeuristic(0, 0), price)
		assert.Equal(t, domain.RecommendSkip, res.Recommendation, "price %.2f", price)
	}
}

// La reversión nunca cruza 0.5: predicted queda estrictamente entre el
// precio y el valor justo, en ambos lados.
func TestHeuristic_ReversionNeverCrossesFair(t *testing.T) {
	h := NewHeuristic(0, 0)
	for price := 0.01; price < 0.30; price += 0.01 {
		res := scoreAt(t, h, price)
		require.Equal(t, domain.RecommendYes, res.Recommendation)
		assert.Greater(t, res.PredictedProbability, price)
		assert.Less(t, res.PredictedProbability, 0.5)
	}
	for price := 0.76; price < 0.995; price += 0.01 {
		res := scoreAt(t, h, price)
		require.Equal(t, domain.RecommendNo, res.Recommendation)
		assert.Less(t, res.PredictedProbability, price)
		assert.Greater(t, res.PredictedProbability, 0.5)
	}
}

func TestHeuristic_CustomThresholds(t *testing.T) {
	h := NewHeuristic(0.40, 0.60)

	res := scoreAt(t, h, 0.35)
	assert.Equal(t, domain.RecommendYes, res.Recommendation)

	res = scoreAt(t, h, 0.65)
	assert.Equal(t, domain.RecommendNo, res.Recommendation)
}

func TestHeuristic_DefaultThresholds(t *testing.T) {
	h := NewHeuristic(0, 0)
	assert.Equal(t, DefaultUndervalued, h.undervalued)
	assert.Equal(t, DefaultOvervalued, h.overvalued)
}

func TestHeuristic_PriceOutOfRange(t *testing.T) {
	h := NewHeuristic(0, 0)
	for _, price := range []float64{0, 1, -0.1, 1.2} {
		m, o := testMarket(price)
		_, err := h.Score(context.Background(), m, o)
		assert.Error(t, err, "price %.2f", price)
	}
}
