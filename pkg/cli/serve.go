package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/urfave/cli/v3"

	"github.com/skyelectric/reglens/pkg/cli/config"
	httpctrl "github.com/skyelectric/reglens/pkg/controller/http"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/repository/memory"
	"github.com/skyelectric/reglens/pkg/service/chat"
	"github.com/skyelectric/reglens/pkg/service/judge"
	"github.com/skyelectric/reglens/pkg/service/vectorindex"
	"github.com/skyelectric/reglens/pkg/usecase"
	"github.com/skyelectric/reglens/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var geminiCfg config.Gemini
	var engineCfg config.Engine
	var retrievalCfg config.Retrieval

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("REGLENS_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, engineCfg.Flags()...)
	flags = append(flags, retrievalCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := retrievalCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load retrieval tuning")
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			engine, err := engineCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure vector engine")
			}

			uc, err := buildUseCases(llmClient, engine, engineCfg.Dimension(), cfg)
			if err != nil {
				return err
			}

			// eviction sweep runs for the lifetime of the server
			sweepCtx, cancelSweep := context.WithCancel(ctx)
			defer cancelSweep()
			go uc.RunSweeper(sweepCtx)

			printStartupDiagnostic(ctx, uc, addr)

			srv := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "HTTP server failed")
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("shutting down", "signal", sig.String())
			case <-ctx.Done():
				logging.Default().Info("shutting down", "reason", "context cancelled")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown HTTP server")
			}
			return nil
		},
	}
}

func buildUseCases(llmClient gollem.LLMClient, engine *vectorindex.Engine, dimension int, cfg usecase.Config) (*usecase.UseCases, error) {
	judgeSvc, err := judge.New(llmClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create judgment service")
	}
	chatSvc, err := chat.New(llmClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chat service")
	}

	repo := memory.New()
	router := vectorindex.NewRouter(engine, llmClient, vectorindex.WithDimension(dimension))

	return usecase.New(repo, router, judgeSvc, chatSvc, usecase.WithConfig(cfg)), nil
}

func printStartupDiagnostic(ctx context.Context, uc *usecase.UseCases, addr string) {
	stats, err := uc.IndexStats(ctx)
	if err != nil {
		logging.Default().Warn("failed to read index stats", "error", err)
		return
	}

	kbCount := stats[types.NamespacePermanent]
	if kbCount > 0 {
		color.Green("Knowledge base loaded: %d vectors", kbCount)
	} else {
		color.Yellow("Knowledge base is empty; run `reglens ingest` to load regulations")
	}
	fmt.Printf("Listening on %s\n", addr)
}
