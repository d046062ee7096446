package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/service/vectorindex"
)

// Engine holds configuration for the vector engine
type Engine struct {
	dimension int
}

// Flags returns CLI flags for vector engine configuration
func (x *Engine) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding vector dimension",
			Value:       model.EmbeddingDimension,
			Sources:     cli.EnvVars("REGLENS_EMBEDDING_DIMENSION"),
			Destination: &x.dimension,
		},
	}
}

// Dimension returns the configured embedding dimension
func (x *Engine) Dimension() int {
	return x.dimension
}

// Configure creates the in-memory vector engine from the configured flags
func (x *Engine) Configure() (*vectorindex.Engine, error) {
	if x.dimension <= 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "embedding-dimension must be positive",
			goerr.V("dimension", x.dimension),
		)
	}
	return vectorindex.NewEngine(x.dimension), nil
}
