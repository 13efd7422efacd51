package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"CommodityPulse/internal/di"
	"CommodityPulse/pkg/config"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "commoditypulse",
		Usage: "Commodity report ingestion and caching service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Configuration file path",
				Value:   "config/config.yaml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			fetchCommand(),
			sourcesCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API, cache warmer and publisher",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadWithEnv(c.String("config"))
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}

			app, cleanup, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			defer cleanup()

			return app.Run(ctx)
		},
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch one source and print its price rows and blocks",
		ArgsUsage: "<source>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			source := c.Args().First()
			if source == "" {
				return fmt.Errorf("source name is required")
			}

			cfg, err := config.LoadWithEnv(c.String("config"))
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}

			svc, cleanup, err := di.InitializeReportService(cfg)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			defer cleanup()

			report, err := svc.Report(ctx, source)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", source, err)
			}

			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Print(renderReport(report))
			return nil
		},
	}
}

func sourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "List configured sources",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			fmt.Print(renderSources(cfg.Sources))
			return nil
		},
	}
}
