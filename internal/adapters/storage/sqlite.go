package storage

// sqlite.go — histórico best-effort de ciclos y trades.
//
// Sin garantías de durabilidad: el engine loguea y sigue si un write falla.
// Prune automático al arrancar: ciclos > 30d, trades > 90d.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/polyagent/internal/domain"
	"github.com/alejandrodnm/polyagent/internal/ports"
)

const schema = `
-- Resumen ligero por ciclo de ejecución
CREATE TABLE IF NOT EXISTS cycles (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    ran_at        DATETIME NOT NULL,
    opportunities INTEGER  NOT NULL DEFAULT 0,
    trades_filled INTEGER  NOT NULL DEFAULT 0,
    trades_failed INTEGER  NOT NULL DEFAULT 0,
    bankroll      REAL     NOT NULL DEFAULT 0,
    total_pnl     REAL     NOT NULL DEFAULT 0
);

-- Un registro por trade ejecutado o fallido
CREATE TABLE IF NOT EXISTS trades (
    id         TEXT PRIMARY KEY,
    market_id  TEXT    NOT NULL,
    question   TEXT,
    outcome    TEXT    NOT NULL,
    side       TEXT    NOT NULL,
    shares     REAL    NOT NULL,
    price      REAL    NOT NULL,
    total      REAL    NOT NULL,
    simulated  INTEGER NOT NULL DEFAULT 1,
    status     TEXT    NOT NULL,
    executed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_at ON cycles(ran_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_at ON trades(executed_at DESC);
`

const (
	retentionCycles = 30 * 24 * time.Hour
	retentionTrades = 90 * 24 * time.Hour
)

// SQLiteStorage implementa ports.HistoryStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveCycle persiste el resumen de un ciclo.
func (s *SQLiteStorage) SaveCycle(ctx context.Context, rec ports.CycleRecord) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (ran_at, opportunities, trades_filled, trades_failed, bankroll, total_pnl)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RanAt.UTC(), rec.Opportunities, rec.TradesFilled, rec.TradesFailed,
		rec.Bankroll, rec.TotalPnL,
	); err != nil {
		return fmt.Errorf("storage.SaveCycle: %w", err)
	}
	return nil
}

// SaveTrade persiste un trade (upsert: la transición PENDING→FILLED/FAILED
// del mismo ID sobreescribe el registro).
func (s *SQLiteStorage) SaveTrade(ctx context.Context, t domain.Trade) error {
	simulated := 0
	if t.Simulated {
		simulated = 1
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (id, market_id, question, outcome, side, shares, price, total, simulated, status, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 	shares = excluded.shares,
		 	price  = excluded.price,
		 	status = excluded.status`,
		t.ID, t.MarketID, t.Question, t.Outcome, string(t.Side),
		t.Shares, t.Price, t.Total, simulated, string(t.Status), t.Timestamp.UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveTrade: %w", err)
	}
	return nil
}

// GetTrades devuelve los trades registrados en el rango de tiempo dado,
// más recientes primero.
func (s *SQLiteStorage) GetTrades(ctx context.Context, from, to time.Time) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, market_id, question, outcome, side, shares, price, total, simulated, status, executed_at
		 FROM trades
		 WHERE executed_at >= ? AND executed_at <= ?
		 ORDER BY executed_at DESC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var side, status string
		var simulated int
		if err := rows.Scan(&t.ID, &t.MarketID, &t.Question, &t.Outcome, &side,
			&t.Shares, &t.Price, &t.Total, &simulated, &status, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan: %w", err)
		}
		t.Side = domain.BetSide(side)
		t.Status = domain.TradeStatus(status)
		t.Simulated = simulated == 1
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close cierra la conexión a la base de datos limpiamente.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra registros fuera de la ventana de retención.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cycles WHERE ran_at < ?`, now.Add(-retentionCycles),
	); err != nil {
		slog.Warn("prune cycles failed", "err", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM trades WHERE executed_at < ?`, now.Add(-retentionTrades),
	); err != nil {
		slog.Warn("prune trades failed", "err", err)
	}
}
