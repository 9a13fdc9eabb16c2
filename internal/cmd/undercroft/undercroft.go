// Package undercroft parses CLI flags and runs one generation or storage
// action: generate a dungeon or room, list or show tables, and manage saved
// dungeons.
package undercroft

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/undercroft/internal/app/engine"
	"github.com/louisbranch/undercroft/internal/core/dice"
	"github.com/louisbranch/undercroft/internal/export"
	"github.com/louisbranch/undercroft/internal/generator"
	platformcmd "github.com/louisbranch/undercroft/internal/platform/cmd"
	"github.com/louisbranch/undercroft/internal/platform/config"
	"github.com/louisbranch/undercroft/internal/storage"
)

// Config holds CLI command configuration. Environment variables supply
// defaults; flags override them.
type Config struct {
	TablesDir   string `env:"UNDERCROFT_TABLES_DIR"`
	Script      string `env:"UNDERCROFT_SCRIPT"`
	Store       string `env:"UNDERCROFT_STORE"        envDefault:"none"`
	DataDir     string `env:"UNDERCROFT_DATA_DIR"     envDefault:"dungeons"`
	SQLitePath  string `env:"UNDERCROFT_SQLITE_PATH"  envDefault:"undercroft.db"`
	BoltPath    string `env:"UNDERCROFT_BBOLT_PATH"   envDefault:"undercroft.bolt"`
	PostgresURL string `env:"UNDERCROFT_POSTGRES_URL"`
	Locale      string `env:"UNDERCROFT_LOCALE"       envDefault:"en-US"`

	Roll string

	Rooms         int
	Name          string
	Theme         string
	Seed          int64
	ExtraPassages float64
	RoomOnly      bool
	Save          bool
	Out           string

	ListTables   bool
	ShowTable    string
	ListDungeons bool
	Show         string
	Delete       string
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
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "output locale, e.g. en-US or pt-BR")

	fs.StringVar(&cfg.Roll, "roll", "", "roll plain dice from notation, e.g. 2d6 or d20, and exit")

	fs.IntVar(&cfg.Rooms, "rooms", 5, "number of rooms to generate")
	fs.StringVar(&cfg.Name, "name", "", "dungeon name (empty picks one)")
	fs.StringVar(&cfg.Theme, "theme", "", "theme for table overrides")
	fs.Int64Var(&cfg.Seed, "seed", 0, "seed for reproducible generation (0 draws one)")
	fs.Float64Var(&cfg.ExtraPassages, "extra-passages", 0, "loop passage density in [0,1]")
	fs.BoolVar(&cfg.RoomOnly, "room", false, "generate a single room instead of a dungeon")
	fs.BoolVar(&cfg.Save, "save", false, "save the generated dungeon to the configured store")
	fs.StringVar(&cfg.Out, "out", "", "also write the rendered output to this file")

	fs.BoolVar(&cfg.ListTables, "list-tables", false, "list available tables and exit")
	fs.StringVar(&cfg.ShowTable, "show-table", "", "print one table and exit")
	fs.BoolVar(&cfg.ListDungeons, "dungeons", false, "list saved dungeons and exit")
	fs.StringVar(&cfg.Show, "show", "", "print a saved dungeon by id and exit")
	fs.StringVar(&cfg.Delete, "delete", "", "delete a saved dungeon by id and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the configured action, writing output to stdout.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceCLI, func(ctx context.Context) error {
		return run(ctx, cfg, os.Stdout)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}
	exporter := export.New(tag)

	if cfg.Roll != "" {
		return rollDice(out, cfg)
	}

	eng, err := engine.Build(ctx, engine.Options{TablesDir: cfg.TablesDir, Script: cfg.Script})
	if err != nil {
		return err
	}

	switch {
	case cfg.ListTables:
		return listTables(out, eng)
	case cfg.ShowTable != "":
		return showTable(out, eng, cfg.ShowTable)
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

	switch {
	case cfg.ListDungeons:
		return listDungeons(ctx, out, store)
	case cfg.Show != "":
		return showDungeon(ctx, out, exporter, store, cfg.Show)
	case cfg.Delete != "":
		return deleteDungeon(ctx, out, store, cfg.Delete)
	case cfg.RoomOnly:
		return generateRoom(out, exporter, eng, cfg)
	default:
		return generateDungeon(ctx, out, exporter, eng, store, cfg)
	}
}

func rollDice(out io.Writer, cfg Config) error {
	specs, err := dice.ParseSpecs(cfg.Roll)
	if err != nil {
		return err
	}
	rng, seed := dice.NewSeededRand(cfg.Seed)
	result, err := dice.RollWithRng(rng, specs)
	if err != nil {
		return err
	}
	for _, roll := range result.Rolls {
		fmt.Fprintf(out, "%dd%d: %v = %d\n", len(roll.Results), roll.Sides, roll.Results, roll.Total)
	}
	fmt.Fprintf(out, "Total: %d\n", result.Total)
	fmt.Fprintf(out, "\nSeed: %d\n", seed)
	return nil
}

func listTables(out io.Writer, eng *engine.Engine) error {
	for _, name := range eng.Registry.Names("") {
		tbl, err := eng.Registry.Table(name)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%s (%s", name, tbl.Category())
		if tbl.Theme() != "" {
			line += ", theme " + tbl.Theme()
		}
		fmt.Fprintf(out, "%s, d%d)\n", line, tbl.Max())
	}
	return nil
}

func showTable(out io.Writer, eng *engine.Engine, name string) error {
	tbl, err := eng.Registry.Table(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (d%d)\n", tbl.Name(), tbl.Max())
	if tbl.Description() != "" {
		fmt.Fprintln(out, tbl.Description())
	}
	for _, entry := range tbl.Entries() {
		suffix := ""
		if entry.Reroll {
			suffix = " (roll again)"
		}
		fmt.Fprintf(out, "  %2d-%2d  %s%s\n", entry.Min, entry.Max, entry.Name, suffix)
	}
	return nil
}

func listDungeons(ctx context.Context, out io.Writer, store storage.DungeonStore) error {
	if store == nil {
		return fmt.Errorf("no dungeon store configured; set -store")
	}
	summaries, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, summary := range summaries {
		fmt.Fprintf(out, "%s  %s  %d rooms  %s\n",
			summary.ID, summary.Name, summary.Rooms, summary.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func showDungeon(ctx context.Context, out io.Writer, exporter *export.Exporter, store storage.DungeonStore, id string) error {
	if store == nil {
		return fmt.Errorf("no dungeon store configured; set -store")
	}
	dungeon, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	return exporter.Export(out, dungeon)
}

func deleteDungeon(ctx context.Context, out io.Writer, store storage.DungeonStore, id string) error {
	if store == nil {
		return fmt.Errorf("no dungeon store configured; set -store")
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted dungeon %s\n", id)
	return nil
}

func generateRoom(out io.Writer, exporter *export.Exporter, eng *engine.Engine, cfg Config) error {
	rng, seed := dice.NewSeededRand(cfg.Seed)
	room, err := eng.Generator.RoomGenerator().GenerateRoom(cfg.Theme, rng)
	if err != nil {
		return err
	}
	if err := exporter.ExportRoom(out, room); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSeed: %d\n", seed)
	return nil
}

func generateDungeon(ctx context.Context, out io.Writer, exporter *export.Exporter, eng *engine.Engine, store storage.DungeonStore, cfg Config) error {
	rng, seed := dice.NewSeededRand(cfg.Seed)
	dungeon, err := eng.Generator.GenerateWithRng(rng, generator.Request{
		Rooms:         cfg.Rooms,
		Name:          cfg.Name,
		Theme:         cfg.Theme,
		ExtraPassages: cfg.ExtraPassages,
	})
	if err != nil {
		return err
	}

	if err := exporter.Export(out, *dungeon); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSeed: %d\n", seed)

	if cfg.Out != "" {
		file, err := os.Create(cfg.Out)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer func() { _ = file.Close() }()
		if err := exporter.Export(file, *dungeon); err != nil {
			return err
		}
	}

	if cfg.Save {
		if store == nil {
			return fmt.Errorf("cannot save: no dungeon store configured; set -store")
		}
		if err := store.Put(ctx, *dungeon); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved dungeon %s\n", dungeon.ID)
	}
	return nil
}
