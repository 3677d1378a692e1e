package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trend/internal/datasource"
	"github.com/rxtech-lab/argo-trend/internal/engine"
	engine_v1 "github.com/rxtech-lab/argo-trend/internal/engine/engine_v1"
	"github.com/rxtech-lab/argo-trend/internal/logger"
	"github.com/rxtech-lab/argo-trend/internal/metrics"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Replay a readings file through the trend engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the trend engine config `FILE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the readings `FILE` (.parquet or .csv)",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:  "start",
				Usage: "Replay readings from `YYYY-MM-DD` (overrides start_time)",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.TimestampFlag{
				Name:  "end",
				Usage: "Replay readings until `YYYY-MM-DD` (overrides end_time)",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.StringFlag{
				Name:  "stats",
				Usage: "Write run statistics as YAML to `FILE`",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve prometheus metrics on `ADDR` (e.g. :9090) while running",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	trendEngine := engine_v1.NewTrendEngineV1WithLogger(log)
	if err := trendEngine.InitializeFromFile(cmd.String("config")); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	if cmd.IsSet("start") || cmd.IsSet("end") {
		config := trendEngine.Config()
		start, end := config.StartTime, config.EndTime

		if cmd.IsSet("start") {
			start = optional.Some(cmd.Timestamp("start"))
		}

		if cmd.IsSet("end") {
			end = optional.Some(cmd.Timestamp("end"))
		}

		if err := trendEngine.SetTimeRange(start, end); err != nil {
			return err
		}
	}

	source, err := datasource.NewReadingSource(log)
	if err != nil {
		return err
	}
	defer source.Close()

	if err := trendEngine.SetDataSource(source); err != nil {
		return err
	}

	if addr := cmd.String("metrics-addr"); addr != "" {
		server := &http.Server{
			Addr:              addr,
			Handler:           metrics.Handler(trendEngine.Gatherer()),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server stopped", zap.Error(err))
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = server.Shutdown(shutdownCtx)
		}()
	}

	dataPath := cmd.String("data")
	callbacks := progressCallbacks(dataPath, !cmd.Bool("no-progress"))

	stats, err := trendEngine.Run(ctx, dataPath, callbacks)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	log.Info("Run completed",
		zap.String("run_id", stats.ID),
		zap.Int("steps", stats.Steps),
		zap.Int("symbols", len(stats.Symbols)),
	)

	if path := cmd.String("stats"); path != "" {
		if err := types.WriteRunStatistics(path, stats); err != nil {
			return err
		}

		log.Info("Run statistics written", zap.String("path", path))
	}

	return nil
}

// progressCallbacks draws a progress bar over the steps of a run.
func progressCallbacks(dataPath string, enabled bool) engine.LifecycleCallbacks {
	if !enabled {
		return engine.LifecycleCallbacks{}
	}

	var bar *progressbar.ProgressBar

	onRunStart := engine.OnRunStartCallback(func(runID string, symbols []string, totalSteps int) error {
		bar = progressbar.Default(int64(totalSteps))
		bar.Describe(fmt.Sprintf("Processing %s (%d instruments)", filepath.Base(dataPath), len(symbols)))

		return nil
	})

	onStep := engine.OnStepCallback(func(current int, total int, result types.StepResult) error {
		return bar.Add(1)
	})

	onRunEnd := engine.OnRunEndCallback(func(stats types.RunStatistics, err error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	return engine.LifecycleCallbacks{
		OnRunStart: &onRunStart,
		OnStep:     &onStep,
		OnRunEnd:   &onRunEnd,
	}
}
