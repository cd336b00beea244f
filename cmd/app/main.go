package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/zettelport/internal"
	"github.com/starford/zettelport/internal/converter"
	"github.com/starford/zettelport/internal/index"
	"github.com/starford/zettelport/internal/mcpserver"
	"github.com/starford/zettelport/internal/zettel"
	pkgconfig "github.com/starford/zettelport/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

// loadConfig builds the effective configuration: defaults, then the config
// file (required only when passed explicitly), then flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	path := cmd.String("config")
	if cmd.IsSet("config") {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if err := pkgconfig.LoadIfExists(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.IsSet("title-marker") {
		cfg.Markers.Title = cmd.String("title-marker")
	}
	if cmd.IsSet("content-marker") {
		cfg.Markers.Content = cmd.String("content-marker")
	}
	if cmd.IsSet("on-collision") {
		cfg.Convert.OnCollision = cmd.String("on-collision")
	}
	if cmd.IsSet("index") {
		cfg.Index.Path = cmd.String("index")
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newService builds the conversion service plus its optional index. The
// returned closer is a no-op when indexing is disabled. Logs go to logOut so
// the MCP command can keep stdout clean for the protocol.
func newService(cfg *internal.Config, logOut io.Writer) (*converter.Service, index.NoteIndex, func(), error) {
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	markers := zettel.Markers{Title: cfg.Markers.Title, Content: cfg.Markers.Content}

	var db index.NoteIndex
	closer := func() {}
	if cfg.Index.Enabled() {
		d, err := index.Open(cfg.Index.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init index: %w", err)
		}
		db = d
		closer = func() { d.Close() }
	}

	return converter.New(logger, markers, cfg.Convert.OnCollision, db), db, closer, nil
}

// inOutArgs resolves the two positional arguments shared by convert and watch.
func inOutArgs(cmd *cli.Command) (string, string, error) {
	input := cmd.Args().Get(0)
	output := cmd.Args().Get(1)
	if input == "" || output == "" {
		return "", "", fmt.Errorf("usage: %s <input-file> <output-dir>", cmd.Name)
	}
	return input, output, nil
}

func runConvert(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	input, output, err := inOutArgs(cmd)
	if err != nil {
		return err
	}
	svc, _, closer, err := newService(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer closer()

	if _, err := svc.Convert(ctx, input, output); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	input, output, err := inOutArgs(cmd)
	if err != nil {
		return err
	}
	svc, _, closer, err := newService(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer closer()

	return svc.Watch(ctx, input, output)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	output := cmd.Args().Get(0)
	if output == "" {
		return fmt.Errorf("usage: %s <output-dir>", cmd.Name)
	}

	return internal.Serve(ctx,
		internal.WithConfig(cfg),
		internal.WithOutputDir(output),
	)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol; logs go to stderr.
	svc, db, closer, err := newService(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer()

	return mcpserver.New(svc, db).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: defaultConfigPath,
		Value:       defaultConfigPath,
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	markerFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "title-marker",
			Usage: "Token that starts each Zettel block",
		},
		&cli.StringFlag{
			Name:  "content-marker",
			Usage: "Token that separates a title from its body",
		},
	}
	collisionFlag := &cli.StringFlag{
		Name:  "on-collision",
		Usage: "Policy when two titles sanitize to the same filename: overwrite or fail",
	}
	indexFlag := &cli.StringFlag{
		Name:  "index",
		Usage: "Path to the SQLite index of converted notes",
	}

	cmd := &cli.Command{
		Name:  "zettelport",
		Usage: "Convert delimited Zettel documents into linked Markdown pages for outliner apps",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Convert an input document into one Markdown file per note",
				ArgsUsage: "<input-file> <output-dir>",
				Flags:     append([]cli.Flag{collisionFlag, indexFlag}, markerFlags...),
				Action:    runConvert,
			},
			{
				Name:      "watch",
				Usage:     "Convert, then reconvert whenever the input document changes",
				ArgsUsage: "<input-file> <output-dir>",
				Flags:     append([]cli.Flag{collisionFlag, indexFlag}, markerFlags...),
				Action:    runWatch,
			},
			{
				Name:      "serve",
				Usage:     "Serve a read-only preview API over a converted output directory",
				ArgsUsage: "<output-dir>",
				Flags: []cli.Flag{
					indexFlag,
					&cli.IntFlag{
						Name:  "port",
						Usage: "Preview server port",
					},
				},
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Expose the conversion pipeline over MCP stdio",
				Flags:  []cli.Flag{collisionFlag, indexFlag},
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
