// Package mcp parses MCP command flags and serves the generator over stdio.
package mcp

import (
	"context"
	"flag"
	"fmt"

	"golang.org/x/text/language"

	"github.com/louisbranch/undercroft/internal/app/engine"
	"github.com/louisbranch/undercroft/internal/mcp"
	platformcmd "github.com/louisbranch/undercroft/internal/platform/cmd"
	"github.com/louisbranch/undercroft/internal/platform/config"
)

// Config holds MCP command configuration.
type Config struct {
	TablesDir   string `env:"UNDERCROFT_TABLES_DIR"`
	Script      string `env:"UNDERCROFT_SCRIPT"`
	Store       string `env:"UNDERCROFT_STORE"        envDefault:"file"`
	DataDir     string `env:"UNDERCROFT_DATA_DIR"     envDefault:"dungeons"`
	SQLitePath  string `env:"UNDERCROFT_SQLITE_PATH"  envDefault:"undercroft.db"`
	BoltPath    string `env:"UNDERCROFT_BBOLT_PATH"   envDefault:"undercroft.bolt"`
	PostgresURL string `env:"UNDERCROFT_POSTGRES_URL"`
	Locale      string `env:"UNDERCROFT_LOCALE"       envDefault:"en-US"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.TablesDir, "tables-dir", cfg.TablesDir, "directory of custom table files, searched before the packaged defaults")
	fs.StringVar(&cfg.Script, "script", cfg.Script, "Lua extension file")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "dungeon store backend: none, file, sqlite, bbolt, or postgres")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the file dungeon store")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "path of the SQLite dungeon store")
	fs.StringVar(&cfg.BoltPath, "bbolt-path", cfg.BoltPath, "path of the BoltDB dungeon store")
	fs.StringVar(&cfg.PostgresURL, "postgres-url", cfg.PostgresURL, "PostgreSQL connection string")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "rendered text locale, e.g. en-US or pt-BR")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the generation engine and serves it over the MCP stdio
// transport until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, func(ctx context.Context) error {
		tag, err := language.Parse(cfg.Locale)
		if err != nil {
			return fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
		}

		eng, err := engine.Build(ctx, engine.Options{TablesDir: cfg.TablesDir, Script: cfg.Script})
		if err != nil {
			return err
		}

		store, closeStore, err := engine.OpenDungeonStore(ctx, cfg.Store, engine.StoreOptions{
			Dir:         cfg.DataDir,
			SQLitePath:  cfg.SQLitePath,
			BoltPath:    cfg.BoltPath,
			PostgresURL: cfg.PostgresURL,
		})
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		server, err := mcp.New(mcp.Config{
			Generator: eng.Generator,
			Registry:  eng.Registry,
			Dungeons:  store,
			Locale:    tag,
		})
		if err != nil {
			return err
		}
		return server.Serve(ctx)
	})
}
