package ports

import (
	"context"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

// Scorer estima la probabilidad "real" de un outcome y emite una recomendación.
// Una recomendación SKIP significa que no hay oportunidad en este mercado.
type Scorer interface {
	Score(ctx context.Context, m domain.Market, o domain.Outcome) (domain.ScoreResult, error)
}

// MarketAnalyzer es el scorer probabilístico externo opcional (LLM).
// Un resultado nil o un error hacen fallback al scorer heurístico.
type MarketAnalyzer interface {
	ScoreMarket(ctx context.Context, m domain.Market) (*domain.ScoreResult, error)
}
