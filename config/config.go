package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/polyagent/internal/domain"
)

// Config es la configuración completa del agente.
type Config struct {
	Agent   AgentConfig         `yaml:"agent"`
	Scorer  ScorerConfig        `yaml:"scorer"`
	Limits  domain.SafetyLimits `yaml:"limits"`
	API     APIConfig           `yaml:"api"`
	Storage StorageConfig       `yaml:"storage"`
	Log     LogConfig           `yaml:"log"`
}

// AgentConfig controla el loop de ejecución.
type AgentConfig struct {
	IntervalSeconds   int     `yaml:"interval_seconds"`
	Bankroll          float64 `yaml:"bankroll"`
	AutoExecute       bool    `yaml:"auto_execute"`
	LiveTrading       bool    `yaml:"live_trading"`
	DynamicLimits     bool    `yaml:"dynamic_limits"` // drawdown throttle opcional
	TopN              int     `yaml:"top_n"`
	MaxTradesPerCycle int     `yaml:"max_trades_per_cycle"`
	MarketLimit       int     `yaml:"market_limit"`
}

// ScorerConfig controla el scoring de mercados.
type ScorerConfig struct {
	UndervaluedThreshold float64 `yaml:"undervalued_threshold"`
	OvervaluedThreshold  float64 `yaml:"overvalued_threshold"`
	MinEdge              float64 `yaml:"min_edge"`
	ScoreWorkers         int     `yaml:"score_workers"`
	BatchDelayMillis     int     `yaml:"batch_delay_millis"` // pausa entre batches con scorer externo
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	CLOBBase  string `yaml:"clob_base"`
	GammaBase string `yaml:"gamma_base"`
}

// StorageConfig controla dónde se persiste el histórico.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// CycleInterval devuelve el intervalo de ejecución como time.Duration.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Agent.IntervalSeconds) * time.Second
}

// BatchDelay devuelve la pausa entre batches de scoring como time.Duration.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Scorer.BatchDelayMillis) * time.Millisecond
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Agent.IntervalSeconds <= 0 {
		cfg.Agent.IntervalSeconds = 25
	}
	if cfg.Agent.Bankroll <= 0 {
		cfg.Agent.Bankroll = 1000
	}
	if cfg.Agent.TopN <= 0 {
		cfg.Agent.TopN = 10
	}
	if cfg.Agent.MaxTradesPerCycle <= 0 {
		cfg.Agent.MaxTradesPerCycle = 2
	}
	if cfg.Agent.MarketLimit <= 0 {
		cfg.Agent.MarketLimit = 100
	}
	if cfg.Scorer.UndervaluedThreshold <= 0 {
		cfg.Scorer.UndervaluedThreshold = 0.30
	}
	if cfg.Scorer.OvervaluedThreshold <= 0 {
		cfg.Scorer.OvervaluedThreshold = 0.75
	}
	if cfg.Scorer.MinEdge <= 0 {
		cfg.Scorer.MinEdge = 0.03
	}
	if cfg.Scorer.ScoreWorkers <= 0 {
		cfg.Scorer.ScoreWorkers = 3
	}
	if cfg.Limits.MaxBetSize <= 0 {
		cfg.Limits.MaxBetSize = 10
	}
	if cfg.Limits.MaxDailyLoss <= 0 {
		cfg.Limits.MaxDailyLoss = 50
	}
	if cfg.Limits.MaxTotalExposure <= 0 {
		cfg.Limits.MaxTotalExposure = 200
	}
	if cfg.Limits.MaxPositionPercent <= 0 {
		cfg.Limits.MaxPositionPercent = 0.1
	}
	if cfg.Limits.MinLiquidity <= 0 {
		cfg.Limits.MinLiquidity = 1000
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polyagent.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
