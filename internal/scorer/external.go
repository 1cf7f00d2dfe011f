package scorer

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/polyagent/internal/domain"
	"github.com/alejandrodnm/polyagent/internal/ports"
)

// External envuelve un analyzer probabilístico externo (LLM) con fallback al
// scorer heurístico. Un resultado nil o un error del analyzer nunca se
// propagan: se degrada silenciosamente a la heurística.
type External struct {
	analyzer ports.MarketAnalyzer
	fallback ports.Scorer
}

// NewExternal crea el wrapper. fallback no puede ser nil.
func NewExternal(analyzer ports.MarketAnalyzer, fallback ports.Scorer) *External {
	return &External{analyzer: analyzer, fallback: fallback}
}

// Score consulta el analyzer externo y degrada a la heurística si falla.
func (e *External) Score(ctx context.Context, m domain.Market, o domain.Outcome) (domain.ScoreResult, error) {
	if e.analyzer == nil {
		return e.fallback.Score(ctx, m, o)
	}

	result, err := e.analyzer.ScoreMarket(ctx, m)
	if err != nil {
		slog.Debug("external scorer failed, using heuristic", "market", m.ID, "err", err)
		return e.fallback.Score(ctx, m, o)
	}
	if result == nil {
		return e.fallback.Score(ctx, m, o)
	}
	return *result, nil
}
