package scorer

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

const (
	// Umbrales por defecto de mispricing.
	DefaultUndervalued = 0.30
	DefaultOvervalued  = 0.75

	// Tiers de reversión: cuanto más extremo el precio, más fuerte la
	// reversión hacia 0.5 y mayor la confianza.
	extremeLow    = 0.20
	extremeHigh   = 0.85
	reversionFast = 0.40
	reversionSlow = 0.30
	confHigh      = 0.65
	confLow       = 0.55
)

// Heuristic estima probabilidades con reversión asimétrica a la media.
// Asume que los precios extremos exageran la probabilidad real y tira la
// estimación hacia 0.5. Función pura del precio más dos umbrales; sin
// llamadas externas.
type Heuristic struct {
	undervalued float64
	overvalued  float64
}

// NewHeuristic crea el scorer heurístico. Umbrales <= 0 usan los defaults.
func NewHeuristic(undervalued, overvalued float64) *Heuristic {
	if undervalued <= 0 {
		undervalued = DefaultUndervalued
	}
	if overvalued <= 0 {
		overvalued = DefaultOvervalued
	}
	return &Heuristic{undervalued: undervalued, overvalued: overvalued}
}

// Score aplica la heurística de reversión sobre el precio del outcome.
//
// price < undervalued → YES con predicted = price + (0.5-price)×rate
// price > overvalued  → NO  con predicted = price - (price-0.5)×rate
// en otro caso        → SKIP
//
// La probabilidad estimada queda siempre estrictamente entre price y 0.5:
// la reversión nunca cruza el valor justo.
func (h *Heuristic) Score(_ context.Context, m domain.Market, o domain.Outcome) (domain.ScoreResult, error) {
	price := o.Price
	if price <= 0 || price >= 1 {
		return domain.ScoreResult{}, fmt.Errorf("scorer.Score: price %.4f out of range for market %s", price, m.ID)
	}

	switch {
	case price < h.undervalued:
		rate, conf := tier(price < extremeLow)
		return domain.ScoreResult{
			PredictedProbability: price + (0.5-price)*rate,
			Confidence:           conf,
			Recommendation:       domain.RecommendYes,
		}, nil

	case price > h.overvalued:
		rate, conf := tier(price > extremeHigh)
		return domain.ScoreResult{
			PredictedProbability: price - (price-0.5)*rate,
			Confidence:           conf,
			Recommendation:       domain.RecommendNo,
		}, nil

	default:
		return domain.ScoreResult{Recommendation: domain.RecommendSkip}, nil
	}
}

// tier devuelve (reversionRate, confidence) según lo extremo del precio.
func tier(extreme bool) (float64, float64) {
	if extreme {
		return reversionFast, confHigh
	}
	return reversionSlow, confLow
}
