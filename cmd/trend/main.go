package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "trend",
		Usage: "Consolidate indicator lines into trend verdicts and select the strongest instruments",
		Commands: []*cli.Command{
			runCommand(),
			schemaCommand(),
		},
	}
}
