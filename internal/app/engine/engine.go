// Package engine assembles the generation engine the front ends share:
// layered table stores, the registry, the rule profile, and the dungeon
// store backend named by configuration.
package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/louisbranch/undercroft/internal/generator"
	"github.com/louisbranch/undercroft/internal/registry"
	"github.com/louisbranch/undercroft/internal/script"
	"github.com/louisbranch/undercroft/internal/storage"
	"github.com/louisbranch/undercroft/internal/storage/bbolt"
	"github.com/louisbranch/undercroft/internal/storage/file"
	"github.com/louisbranch/undercroft/internal/storage/postgres"
	"github.com/louisbranch/undercroft/internal/storage/sqlite"
	"github.com/louisbranch/undercroft/internal/tables"
)

// Dungeon store backends.
const (
	StoreNone     = "none"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StoreBolt     = "bbolt"
	StorePostgres = "postgres"
)

// Options selects the table sources and extensions for one engine build.
type Options struct {
	// TablesDir is an optional directory of custom table files searched
	// before the packaged defaults.
	TablesDir string
	// Script is an optional Lua extension file.
	Script string
}

// Engine is the assembled generation stack.
type Engine struct {
	Registry  *registry.Registry
	Profile   generator.Profile
	Generator *generator.DungeonGenerator
}

// Build loads tables (custom directory over packaged defaults), applies a
// script extension when configured, and wires the generators.
func Build(ctx context.Context, opts Options) (*Engine, error) {
	tableStore, err := newTableStore(opts.TablesDir)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Load(ctx, tableStore)
	if err != nil {
		return nil, err
	}
	profile := generator.DefaultProfile()

	if strings.TrimSpace(opts.Script) != "" {
		ext, err := script.Load(opts.Script)
		if err != nil {
			return nil, err
		}
		if len(ext.Tables) > 0 {
			reg, err = reg.Override(ext.Tables...)
			if err != nil {
				return nil, err
			}
		}
		profile = profile.Extend(ext.Categories, ext.Triggers)
	}

	if err := profile.Validate(reg); err != nil {
		return nil, fmt.Errorf("validate profile: %w", err)
	}

	return &Engine{
		Registry:  reg,
		Profile:   profile,
		Generator: generator.NewDungeonGenerator(reg, profile),
	}, nil
}

func newTableStore(tablesDir string) (*file.TableStore, error) {
	if strings.TrimSpace(tablesDir) != "" {
		return file.NewTableStore(os.DirFS(tablesDir), tables.Default())
	}
	return file.NewTableStore(tables.Default())
}

// OpenDungeonStore opens the configured dungeon store backend. The returned
// closer is a no-op for backends without a handle to release. StoreNone
// yields a nil store.
func OpenDungeonStore(ctx context.Context, backend string, opts StoreOptions) (storage.DungeonStore, func() error, error) {
	noop := func() error { return nil }
	switch strings.TrimSpace(backend) {
	case StoreNone, "":
		return nil, noop, nil
	case StoreFile:
		store, err := file.NewDungeonStore(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case StoreSQLite:
		store, err := sqlite.Open(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case StoreBolt:
		store, err := bbolt.Open(opts.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case StorePostgres:
		store, err := postgres.Open(ctx, opts.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown dungeon store backend %q", backend)
	}
}

// StoreOptions carries the per-backend settings for OpenDungeonStore.
type StoreOptions struct {
	Dir         string
	SQLitePath  string
	BoltPath    string
	PostgresURL string
}
