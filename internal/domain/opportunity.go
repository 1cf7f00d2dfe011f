package domain

import "time"

// Strategy clasifica el tipo de mispricing detectado.
type Strategy string

const (
	StrategyUndervalued Strategy = "UNDERVALUED"
	StrategyOvervalued  Strategy = "OVERVALUED"
)

// BetSide es el lado recomendado de la apuesta.
type BetSide string

const (
	BetYes BetSide = "YES"
	BetNo  BetSide = "NO"
)

// Recommendation es la salida cruda de un scorer.
type Recommendation string

const (
	RecommendYes  Recommendation = "YES"
	RecommendNo   Recommendation = "NO"
	RecommendSkip Recommendation = "SKIP"
)

// ScoreResult es el contrato de salida de cualquier scorer (heurístico o externo).
type ScoreResult struct {
	PredictedProbability float64
	Confidence           float64 // ∈ [0,1]
	Recommendation       Recommendation
	Reasoning            string
	KeyFactors           []string
}

// BettingOpportunity es el resultado del análisis de un mercado.
// Es efímera: se recalcula en cada ciclo y nunca se persiste entre ciclos.
// Invariante: solo se emite cuando ExpectedValue supera el edge mínimo.
type BettingOpportunity struct {
	Market    Market
	Outcome   Outcome
	ScannedAt time.Time

	Strategy       Strategy
	RecommendedBet BetSide
	Confidence     float64

	// PredictedProbability es la estimación del scorer de que YES ocurra.
	PredictedProbability float64

	// ExpectedValue es el retorno esperado por unidad apostada (fracción del stake).
	ExpectedValue float64

	// Opacos, suministrados por el scorer (vacíos con el heurístico).
	Reasoning  string
	KeyFactors []string
}

// PotentialReturn calcula el retorno por unidad si la apuesta gana.
// Para YES se paga price por un share que vale $1 al resolverse: 1/price - 1.
// Para NO el precio efectivo es el complemento: 1/(1-price) - 1.
func PotentialReturn(price float64, bet BetSide) float64 {
	p := price
	if bet == BetNo {
		p = 1 - price
	}
	if p <= 0 || p >= 1 {
		return 0
	}
	return 1/p - 1
}

// ExpectedValue calcula el EV de una apuesta dado el precio de mercado del
// outcome YES y la probabilidad estimada de que YES ocurra.
//
// Fórmula (YES): EV = p × (1/price - 1) - (1-p) × 1
// Para NO se sustituye el precio por su complemento y p por 1-p.
func ExpectedValue(price, predictedProbability float64, bet BetSide) float64 {
	ret := PotentialReturn(price, bet)
	if ret == 0 {
		return 0
	}
	winProb := predictedProbability
	if bet == BetNo {
		winProb = 1 - predictedProbability
	}
	return winProb*ret - (1 - winProb)
}

// OpportunityFromScore convierte un ScoreResult en BettingOpportunity.
// Devuelve false si la recomendación es SKIP o si el EV no supera minEdge —
// este es el único filtro que la conversión score→opportunity debe garantizar.
func OpportunityFromScore(m Market, o Outcome, score ScoreResult, minEdge float64) (BettingOpportunity, bool) {
	if score.Recommendation == RecommendSkip || score.Recommendation == "" {
		return BettingOpportunity{}, false
	}

	bet := BetYes
	strategy := StrategyUndervalued
	if score.Recommendation == RecommendNo {
		bet = BetNo
		strategy = StrategyOvervalued
	}

	ev := ExpectedValue(o.Price, score.PredictedProbability, bet)
	if ev <= minEdge {
		return BettingOpportunity{}, false
	}

	return BettingOpportunity{
		Market:               m,
		Outcome:              o,
		ScannedAt:            time.Now(),
		Strategy:             strategy,
		RecommendedBet:       bet,
		Confidence:           score.Confidence,
		PredictedProbability: score.PredictedProbability,
		ExpectedValue:        ev,
		Reasoning:            score.Reasoning,
		KeyFactors:           score.KeyFactors,
	}, true
}
