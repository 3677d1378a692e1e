package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-trend/internal/datasource"
	"github.com/rxtech-lab/argo-trend/internal/engine"
	engine_v1 "github.com/rxtech-lab/argo-trend/internal/engine/engine_v1"
	"github.com/rxtech-lab/argo-trend/internal/logger"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Replay a readings file and follow verdicts, ranks and actions live",
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
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Pause between steps",
				Value: 100 * time.Millisecond,
			},
		},
		Action: watchAction,
	}
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	// Engine logs would garble the terminal UI
	nopLog := logger.NewNopLogger()

	trendEngine := engine_v1.NewTrendEngineV1WithLogger(nopLog)
	if err := trendEngine.InitializeFromFile(cmd.String("config")); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	source, err := datasource.NewReadingSource(nopLog)
	if err != nil {
		return err
	}
	defer source.Close()

	if err := trendEngine.SetDataSource(source); err != nil {
		return err
	}

	dataPath := cmd.String("data")
	replay := func(ctx context.Context, callbacks engine.LifecycleCallbacks) (types.RunStatistics, error) {
		return trendEngine.Run(ctx, dataPath, callbacks)
	}

	m := NewModel(filepath.Base(dataPath), replay, cmd.Duration("delay"))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}
