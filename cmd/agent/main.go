package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polyagent/config"
	"github.com/alejandrodnm/polyagent/internal/adapters/notify"
	"github.com/alejandrodnm/polyagent/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyagent/internal/adapters/storage"
	"github.com/alejandrodnm/polyagent/internal/executor"
	"github.com/alejandrodnm/polyagent/internal/ports"
	"github.com/alejandrodnm/polyagent/internal/scanner"
	"github.com/alejandrodnm/polyagent/internal/scorer"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	live := flag.Bool("live", false, "enable live trading (requires API credentials)")
	noExec := flag.Bool("no-exec", false, "scan only, never execute trades")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full opportunity table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *live {
		cfg.Agent.LiveTrading = true
	}
	if *noExec {
		cfg.Agent.AutoExecute = false
	}
	setupLogger(cfg.Log)

	slog.Info("polyagent starting",
		"config", *configPath,
		"interval", cfg.CycleInterval(),
		"bankroll", cfg.Agent.Bankroll,
		"auto_execute", cfg.Agent.AutoExecute,
		"live", cfg.Agent.LiveTrading,
	)

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)
	trading := polymarket.NewTrading(client)

	if cfg.Agent.LiveTrading && !trading.HasCredentials() {
		slog.Warn("live trading enabled but POLY_API_* credentials missing — orders will be simulated")
	}

	var store ports.HistoryStorage
	sqlStore, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Warn("failed to open storage, running without history", "err", err, "dsn", cfg.Storage.DSN)
	} else {
		store = sqlStore
		defer sqlStore.Close()
	}

	heuristic := scorer.NewHeuristic(cfg.Scorer.UndervaluedThreshold, cfg.Scorer.OvervaluedThreshold)

	scanCfg := scanner.Config{
		MinEdge:      cfg.Scorer.MinEdge,
		MinLiquidity: cfg.Limits.MinLiquidity,
		ScoreWorkers: cfg.Scorer.ScoreWorkers,
		BatchDelay:   cfg.BatchDelay(),
	}
	scan := scanner.New(scanCfg, heuristic)

	notifier := notify.NewConsole(*table)

	exec := executor.New(executor.Config{
		Interval:          cfg.CycleInterval(),
		TopN:              cfg.Agent.TopN,
		MaxTradesPerCycle: cfg.Agent.MaxTradesPerCycle,
		AutoExecute:       cfg.Agent.AutoExecute,
		LiveTrading:       cfg.Agent.LiveTrading,
		MarketLimit:       cfg.Agent.MarketLimit,
		DynamicLimits:     cfg.Agent.DynamicLimits,
		Limits:            cfg.Limits,
		Scanner:           scanCfg,
	}, cfg.Agent.Bankroll, client, trading, scan, notifier, store)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := exec.Start(ctx); err != nil {
		slog.Error("failed to start executor", "err", err)
		os.Exit(1)
	}

	<-ctx.Done()
	exec.Stop()

	final := exec.State()
	slog.Info("polyagent stopped cleanly",
		"bankroll", final.Bankroll,
		"positions", len(final.Positions),
		"trades", len(final.Trades),
		"total_pnl", final.TotalPnL,
	)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
