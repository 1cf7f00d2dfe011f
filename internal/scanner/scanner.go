package scanner

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/alejandrodnm/polyagent/internal/domain"
	"github.com/alejandrodnm/polyagent/internal/ports"
)

const (
	defaultMinEdge      = 0.03
	defaultMinLiquidity = 1000.0
	defaultScoreWorkers = 3
)

// Config contiene los parámetros de escaneo. Se puede reemplazar en caliente
// vía UpdateConfig sin reiniciar el loop de ejecución.
type Config struct {
	// MinEdge es el EV mínimo para emitir una oportunidad.
	MinEdge float64
	// MinLiquidity descarta mercados con menos liquidez que esto (USD).
	MinLiquidity float64
	// ScoreWorkers acota las llamadas concurrentes al scorer (2-3 para
	// respetar rate limits de scorers externos).
	ScoreWorkers int
	// BatchDelay es la pausa entre batches de scoring. 0 = sin pausa
	// (scorer heurístico local).
	BatchDelay time.Duration
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		MinEdge:      defaultMinEdge,
		MinLiquidity: defaultMinLiquidity,
		ScoreWorkers: defaultScoreWorkers,
	}
}

// Scanner convierte mercados en oportunidades rankeadas por EV.
// Transformación pura: nunca muta los Market que recibe.
type Scanner struct {
	mu     sync.RWMutex
	cfg    Config
	scorer ports.Scorer
}

// New crea un Scanner con el scorer inyectado.
func New(cfg Config, scorer ports.Scorer) *Scanner {
	if cfg.ScoreWorkers <= 0 {
		cfg.ScoreWorkers = defaultScoreWorkers
	}
	return &Scanner{cfg: cfg, scorer: scorer}
}

// UpdateConfig reemplaza la configuración para los próximos scans.
func (s *Scanner) UpdateConfig(cfg Config) {
	if cfg.ScoreWorkers <= 0 {
		cfg.ScoreWorkers = defaultScoreWorkers
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Scan filtra, puntúa y rankea los mercados dados.
// Devuelve las oportunidades ordenadas por ExpectedValue descendente.
func (s *Scanner) Scan(ctx context.Context, markets []domain.Market) []domain.BettingOpportunity {
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	type candidate struct {
		market  domain.Market
		outcome domain.Outcome
	}

	candidates := make([]candidate, 0, len(markets))
	for _, m := range markets {
		if m.Liquidity < cfg.MinLiquidity {
			continue
		}
		if !m.Tradeable() {
			continue
		}
		yes, ok := m.YesOutcome()
		if !ok {
			slog.Debug("market without outcomes, skipping", "market", m.ID)
			continue
		}
		candidates = append(candidates, candidate{market: m, outcome: yes})
	}

	// Scoring en batches acotados: como máximo cfg.ScoreWorkers llamadas
	// concurrentes, con pausa entre batches si el scorer es externo.
	var (
		oppMu sync.Mutex
		opps  []domain.BettingOpportunity
	)
	for start := 0; start < len(candidates); start += cfg.ScoreWorkers {
		end := min(start+cfg.ScoreWorkers, len(candidates))

		var wg sync.WaitGroup
		for _, c := range candidates[start:end] {
			wg.Add(1)
			go func() {
				defer wg.Done()
				score, err := s.scorer.Score(ctx, c.market, c.outcome)
				if err != nil {
					slog.Debug("score failed", "market", c.market.ID, "err", err)
					return
				}
				opp, ok := domain.OpportunityFromScore(c.market, c.outcome, score, cfg.MinEdge)
				if !ok {
					return
				}
				oppMu.Lock()
				opps = append(opps, opp)
				oppMu.Unlock()
			}()
		}
		wg.Wait()

		if end < len(candidates) && cfg.BatchDelay > 0 {
			select {
			case <-time.After(cfg.BatchDelay):
			case <-ctx.Done():
				return rankByEV(opps)
			}
		}
	}

	return rankByEV(opps)
}

// rankByEV ordena las oportunidades por EV descendente.
func rankByEV(opps []domain.BettingOpportunity) []domain.BettingOpportunity {
	sort.Slice(opps, func(i, j int) bool {
		return opps[i].ExpectedValue > opps[j].ExpectedValue
	})
	return opps
}
