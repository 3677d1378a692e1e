package main

import (
	"context"
	"fmt"
	"path/filepath"

	engine_v1 "github.com/rxtech-lab/argo-trend/internal/engine/engine_v1"
	"github.com/rxtech-lab/argo-trend/internal/signal"
	"github.com/rxtech-lab/argo-trend/pkg/schema"
	"github.com/urfave/cli/v3"
)

// gateSchemaName is the schema of a single gate, for files holding gate lists.
const gateSchemaName = "trend-gate.json"

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Write the JSON schemas of the engine configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output `DIR`",
				Value:   "config",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			written, err := writeSchemas(cmd.String("out"))
			if err != nil {
				return err
			}

			for _, path := range written {
				fmt.Fprintf(cmd.Root().Writer, "Schema written to %s\n", path)
			}

			return nil
		},
	}
}

// writeSchemas writes the config and gate schemas to dir and returns their paths.
func writeSchemas(dir string) ([]string, error) {
	config := engine_v1.EmptyConfig()

	configSchema, err := config.GenerateSchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to generate config schema: %w", err)
	}

	gateSchema, err := schema.ToJSONSchema(signal.Gate{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate gate schema: %w", err)
	}

	configPath := filepath.Join(dir, engine_v1.SchemaName)
	if err := schema.WriteFile(configPath, configSchema); err != nil {
		return nil, err
	}

	gatePath := filepath.Join(dir, gateSchemaName)
	if err := schema.WriteFile(gatePath, gateSchema); err != nil {
		return nil, err
	}

	return []string{configPath, gatePath}, nil
}
