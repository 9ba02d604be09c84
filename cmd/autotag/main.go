package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/autotag/internal"
	"github.com/starford/autotag/internal/autotag"
	"github.com/starford/autotag/internal/mcpserver"
	"github.com/starford/autotag/internal/models"
	pkgconfig "github.com/starford/autotag/pkg/config"
)

var version = "dev"

// stdout receives the human progress lines of the one-shot commands.
var stdout io.Writer = os.Stdout

// loadConfig reads the config file when present. vault, if set, wins over
// both the --vault flag and the file.
func loadConfig(cmd *cli.Command, vault string) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if vault == "" {
		vault = cmd.String("vault")
	}
	if vault != "" {
		cfg.Vault.Path = vault
	}
	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	return cfg, nil
}

func textLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
}

// printChanges writes one line per backlink change.
func printChanges(ev models.Event) {
	switch ev.Kind {
	case models.EventBacklinkAdded:
		fmt.Fprintf(stdout, "Adding link from %s to %s\n", ev.Tag, ev.Title)
	case models.EventBacklinkRemoved:
		fmt.Fprintf(stdout, "Removing link from %s to %s\n", ev.Tag, ev.Title)
	}
}

// oneShot loads the config, opens the pipeline and runs fn with it.
func oneShot(cmd *cli.Command, vault string, fn func(*internal.Pipeline, *slog.Logger) error, opts ...autotag.ProcessorOption) error {
	cfg, err := loadConfig(cmd, vault)
	if err != nil {
		return err
	}
	logger := textLogger(cfg)
	pipe, err := internal.NewPipeline(cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer pipe.Close()
	pipe.Syncer.Subscribe(printChanges)
	return fn(pipe, logger)
}

func processCmd() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Extract keywords from one document and update its tag documents",
		ArgsUsage: "<root> <file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Process even when the content is unchanged"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return cli.Exit("usage: autotag process <root> <file>", 2)
			}
			root, file := cmd.Args().Get(0), cmd.Args().Get(1)
			if filepath.Ext(file) != ".md" {
				return nil
			}
			fmt.Fprintf(stdout, "Processing %s\n", filepath.Base(file))
			return oneShot(cmd, root, func(pipe *internal.Pipeline, _ *slog.Logger) error {
				if _, err := pipe.ProcessPath(ctx, file); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "Processing complete")
				return nil
			}, autotag.WithForce(cmd.Bool("force")))
		},
	}
}

func scanCmd() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Process every document in the vault",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Process documents even when their content is unchanged"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return oneShot(cmd, "", func(pipe *internal.Pipeline, logger *slog.Logger) error {
				results, err := pipe.Processor.Scan(ctx)
				if err != nil {
					return err
				}
				changed := 0
				for _, res := range results {
					if res.Report != nil && len(res.Report.Changes) > 0 {
						changed++
					}
				}
				logger.Info("scan finished", slog.Int("documents", len(results)), slog.Int("changed", changed))
				return nil
			}, autotag.WithForce(cmd.Bool("force")))
		},
	}
}

func reconcileCmd() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Repair tag documents from the keyword snapshots",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return oneShot(cmd, "", func(pipe *internal.Pipeline, logger *slog.Logger) error {
				reports, err := pipe.Processor.Reconcile(ctx)
				if err != nil {
					return err
				}
				logger.Info("reconcile finished", slog.Int("documents", len(reports)))
				return nil
			})
		},
	}
}

func forgetCmd() *cli.Command {
	return &cli.Command{
		Name:      "forget",
		Usage:     "Remove a document's backlinks and keyword snapshot",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return cli.Exit("usage: autotag forget <file>", 2)
			}
			file := cmd.Args().First()
			return oneShot(cmd, "", func(pipe *internal.Pipeline, _ *slog.Logger) error {
				rel, err := pipe.Rel(file)
				if err != nil {
					return err
				}
				_, err = pipe.Processor.Forget(ctx, rel)
				return err
			})
		},
	}
}

func runCmd(name, usage string, mode internal.Mode) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "scan", Usage: "Process every document once on startup"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd, "")
			if err != nil {
				return err
			}
			opts := []internal.Option{
				internal.WithConfig(cfg),
				internal.WithMode(mode),
				internal.WithInitialScan(cmd.Bool("scan")),
			}
			if err := internal.Run(ctx, opts...); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the tag tools over MCP on stdin/stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd, "")
			if err != nil {
				return err
			}
			logger := textLogger(cfg)
			pipe, err := internal.NewPipeline(cfg, logger)
			if err != nil {
				return err
			}
			defer pipe.Close()
			if err := pipe.RebuildIndex(logger); err != nil {
				logger.Warn("index rebuild failed", slog.String("error", err.Error()))
			}
			return mcpserver.New(pipe.Processor, pipe.Catalog, version).ServeStdio()
		},
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "autotag",
		Usage:   "Extract keywords from Markdown notes and maintain tag documents that link back to them",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("AUTOTAG_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Vault directory, overrides vault.path",
				Sources: cli.EnvVars("AUTOTAG_VAULT"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			processCmd(),
			scanCmd(),
			reconcileCmd(),
			forgetCmd(),
			runCmd("watch", "Re-tag documents as they change", internal.ModeWatch),
			runCmd("serve", "Watch the vault and serve the HTTP API", internal.ModeServe),
			mcpCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
