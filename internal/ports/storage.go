package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

// CycleRecord es el resumen ligero de un ciclo de ejecución.
type CycleRecord struct {
	RanAt         time.Time
	Opportunities int
	TradesFilled  int
	TradesFailed  int
	Bankroll      float64
	TotalPnL      float64
}

// HistoryStorage persiste el histórico de ciclos y trades. Best-effort:
// no hay garantías de durabilidad y los errores se loggean y se ignoran.
type HistoryStorage interface {
	// SaveCycle persiste el resumen de un ciclo.
	SaveCycle(ctx context.Context, rec CycleRecord) error

	// SaveTrade persiste un trade ejecutado (o fallido).
	SaveTrade(ctx context.Context, t domain.Trade) error

	// GetTrades devuelve los trades registrados en el rango de tiempo dado.
	GetTrades(ctx context.Context, from, to time.Time) ([]domain.Trade, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
