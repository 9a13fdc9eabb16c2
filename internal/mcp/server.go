// Package mcp exposes dungeon generation over the Model Context Protocol,
// so MCP clients can roll rooms and dungeons through tool calls.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/language"

	"github.com/louisbranch/undercroft/internal/export"
	"github.com/louisbranch/undercroft/internal/generator"
	"github.com/louisbranch/undercroft/internal/registry"
	"github.com/louisbranch/undercroft/internal/storage"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "undercroft"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Config wires the engine pieces the MCP tools need. Dungeons is optional;
// without it the persistence tools are not registered.
type Config struct {
	Generator *generator.DungeonGenerator
	Registry  *registry.Registry
	Dungeons  storage.DungeonStore
	Locale    language.Tag
}

// Server hosts the MCP server over stdio.
type Server struct {
	mcpServer *mcp.Server
	generator *generator.DungeonGenerator
	registry  *registry.Registry
	dungeons  storage.DungeonStore
	locale    language.Tag
}

// New creates a configured MCP server and registers its tools.
func New(cfg Config) (*Server, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	locale := cfg.Locale
	if locale == language.Und {
		locale = export.BaseLocale
	}

	server := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil),
		generator: cfg.Generator,
		registry:  cfg.Registry,
		dungeons:  cfg.Dungeons,
		locale:    locale,
	}
	server.registerTools()
	return server, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "generate_room",
		Description: "Generate a single dungeon room from the configured tables",
	}, s.generateRoom)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "generate_dungeon",
		Description: "Generate a connected multi-room dungeon",
	}, s.generateDungeon)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "roll_dice",
		Description: "Roll plain dice from notation like 2d6 or d20",
	}, s.rollDice)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_tables",
		Description: "List the generation tables available to the engine",
	}, s.listTables)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_table",
		Description: "Fetch one generation table with its entries and ranges",
	}, s.getTable)

	if s.dungeons == nil {
		return
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "regenerate_room",
		Description: "Re-roll one room of a saved dungeon, keeping its id and passages",
	}, s.regenerateRoom)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_dungeons",
		Description: "List saved dungeons, newest first",
	}, s.listDungeons)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_dungeon",
		Description: "Fetch a saved dungeon by id",
	}, s.getDungeon)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_dungeon",
		Description: "Delete a saved dungeon by id",
	}, s.deleteDungeon)
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends. A canceled context is a clean shutdown, not an error.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
