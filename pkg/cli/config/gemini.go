package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini client backing judgment,
// answer synthesis and embeddings
type Gemini struct {
	projectID      string
	location       string
	model          string
	embeddingModel string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Sources:     cli.EnvVars("REGLENS_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("REGLENS_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Generation model used for judgment and chat",
			Value:       "gemini-2.0-flash",
			Sources:     cli.EnvVars("REGLENS_GEMINI_MODEL"),
			Destination: &g.model,
		},
		&cli.StringFlag{
			Name:        "gemini-embedding-model",
			Usage:       "Embedding model used for vector ingest and search",
			Value:       "gemini-embedding-001",
			Sources:     cli.EnvVars("REGLENS_GEMINI_EMBEDDING_MODEL"),
			Destination: &g.embeddingModel,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.String("model", g.model),
		slog.String("embedding_model", g.embeddingModel),
	}
}

// Configure creates a new Gemini LLM client from the configured flags. The
// embedding model must stay in step with the engine's vector dimension, so
// both are surfaced as flags rather than hard-coded.
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if g.projectID == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "gemini-project is required")
	}

	client, err := gemini.New(ctx, g.projectID, g.location,
		gemini.WithModel(g.model),
		gemini.WithEmbeddingModel(g.embeddingModel),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client",
			goerr.V("model", g.model),
			goerr.V("embedding_model", g.embeddingModel),
		)
	}

	return client, nil
}
