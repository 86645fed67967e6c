package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/scribe/internal"
	"github.com/starford/scribe/internal/codec"
	pkgconfig "github.com/starford/scribe/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOrDefault(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func runType(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("usage: scribe type <id> <text>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	text, err := internal.Type(ctx, cmd.Args().Get(0), cmd.Args().Get(1), cmd.Bool("save"), internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: scribe show <id>")
	}
	format, err := codec.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := internal.Show(ctx, cmd.Args().First(), format, internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func main() {
	cmd := &cli.Command{
		Name:   "scribe",
		Usage:  "Rich-text block documents with Markdown-like shorthand formatting",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and event stream",
				Action: run,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the editing tools over MCP stdio",
				Action: runMCP,
			},
			{
				Name:      "type",
				Usage:     "Type text into a document through the shorthand engine",
				ArgsUsage: "<id> <text>",
				Action:    runType,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Write the result to storage",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Print the stored record of a document",
				ArgsUsage: "<id>",
				Action:    runShow,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "json or yaml",
						Value: "json",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
