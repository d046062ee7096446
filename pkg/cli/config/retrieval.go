package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/skyelectric/reglens/pkg/usecase"
)

// Retrieval loads the retrieval and orchestration tuning from an optional
// TOML file. Absent file or fields fall back to the defaults.
type Retrieval struct {
	path string
}

// NewRetrieval creates a Retrieval bound to a tuning file path
func NewRetrieval(path string) *Retrieval {
	return &Retrieval{path: path}
}

type retrievalFile struct {
	FusionK                int     `toml:"fusion_k"`
	KBWeight               float64 `toml:"kb_weight"`
	AssessTopK             int     `toml:"assess_top_k"`
	ChatTopK               int     `toml:"chat_top_k"`
	ChatDualTopK           int     `toml:"chat_dual_top_k"`
	MaxConcurrentJudgments int64   `toml:"max_concurrent_judgments"`
	SessionTTLMinutes      int     `toml:"session_ttl_minutes"`
	SweepIntervalSeconds   int     `toml:"sweep_interval_seconds"`
}

// Flags returns CLI flags for the retrieval configuration
func (x *Retrieval) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to retrieval tuning file (TOML)",
			Sources:     cli.EnvVars("REGLENS_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Configure returns the tuning, overlaying the TOML file on the defaults
// when a path is set
func (x *Retrieval) Configure() (usecase.Config, error) {
	cfg := usecase.DefaultConfig()
	if x.path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(x.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, goerr.Wrap(ErrConfigNotFound, "retrieval tuning file not found", goerr.V("path", x.path))
		}
		return cfg, goerr.Wrap(err, "failed to read retrieval tuning file", goerr.V("path", x.path))
	}

	var file retrievalFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, goerr.Wrap(ErrInvalidConfig, "failed to parse retrieval tuning file",
			goerr.V("path", x.path),
			goerr.V("cause", err.Error()),
		)
	}

	if file.FusionK < 0 || file.KBWeight < 0 || file.AssessTopK < 0 || file.ChatTopK < 0 ||
		file.ChatDualTopK < 0 || file.MaxConcurrentJudgments < 0 ||
		file.SessionTTLMinutes < 0 || file.SweepIntervalSeconds < 0 {
		return cfg, goerr.Wrap(ErrInvalidConfig, "retrieval tuning values must not be negative", goerr.V("path", x.path))
	}

	if file.FusionK > 0 {
		cfg.FusionK = file.FusionK
	}
	if file.KBWeight > 0 {
		cfg.KBWeight = file.KBWeight
	}
	if file.AssessTopK > 0 {
		cfg.AssessTopK = file.AssessTopK
	}
	if file.ChatTopK > 0 {
		cfg.ChatTopK = file.ChatTopK
	}
	if file.ChatDualTopK > 0 {
		cfg.ChatDualTopK = file.ChatDualTopK
	}
	if file.MaxConcurrentJudgments > 0 {
		cfg.MaxConcurrentJudgments = file.MaxConcurrentJudgments
	}
	if file.SessionTTLMinutes > 0 {
		cfg.SessionTTL = time.Duration(file.SessionTTLMinutes) * time.Minute
	}
	if file.SweepIntervalSeconds > 0 {
		cfg.SweepInterval = time.Duration(file.SweepIntervalSeconds) * time.Second
	}

	return cfg, nil
}
