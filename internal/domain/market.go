package domain

// Market representa un snapshot inmutable de un mercado de predicción binario.
// Se refresca en cada ciclo desde el proveedor de datos; nunca se muta in place.
type Market struct {
	ID        string
	Question  string
	Liquidity float64 // USD disponibles en el book
	Volume    float64 // volumen acumulado en USD
	Active    bool
	Closed    bool
	Outcomes  []Outcome
}

// Outcome es uno de los dos lados del mercado (YES/NO).
// Price ∈ [0,1] se interpreta como probabilidad implícita.
type Outcome struct {
	ID    string
	Name  string // "Yes" | "No"
	Price float64
}

// YesOutcome devuelve el outcome de referencia ("Yes") que dirige el scoring.
// Si no existe un outcome llamado "Yes", devuelve el primero disponible.
func (m Market) YesOutcome() (Outcome, bool) {
	for _, o := range m.Outcomes {
		if o.Name == "Yes" {
			return o, true
		}
	}
	if len(m.Outcomes) > 0 {
		return m.Outcomes[0], true
	}
	return Outcome{}, false
}

// Tradeable devuelve true si el mercado admite nuevas posiciones.
func (m Market) Tradeable() bool {
	return m.Active && !m.Closed
}

// TruncateQuestion devuelve la pregunta truncada a maxLen caracteres.
// Si la pregunta está vacía usa los primeros caracteres del ID como fallback.
func TruncateQuestion(question, marketID string, maxLen int) string {
	q := question
	if q == "" {
		if len(marketID) > 20 {
			q = marketID[:20] + "..."
		} else {
			q = marketID
		}
	}
	if len(q) > maxLen {
		q = q[:maxLen-3] + "..."
	}
	return q
}
