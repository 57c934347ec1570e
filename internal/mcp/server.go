// Package mcp provides an MCP (Model Context Protocol) server for engram.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/engram/internal/config"
	"github.com/nvandessel/engram/internal/logging"
	"github.com/nvandessel/engram/internal/store"
	"github.com/nvandessel/engram/internal/workspace"
)

// Server wraps the MCP SDK server and exposes the concept workspace as tools.
type Server struct {
	server *sdk.Server
	store  *store.SQLiteStore
	cfg    *config.EngramConfig
	ops    *logging.OperationLogger
	root   string

	// The workspace is shared by all tool handlers; the SDK may dispatch
	// them concurrently.
	mu sync.Mutex
	ws *workspace.Workspace
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "engram")
	Version string // Server version
	Root    string // Project root directory
}

// NewServer creates a new MCP server backed by the project's SQLite store.
// The persisted workspace is loaded eagerly so the first tool call sees it.
func NewServer(cfg *Config) (*Server, error) {
	engramCfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ws, err := sqlStore.LoadWorkspace(context.Background())
	if err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("load workspace: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{
		server: mcpServer,
		store:  sqlStore,
		cfg:    engramCfg,
		ops:    logging.NewOperationLogger(filepath.Join(cfg.Root, ".engram"), engramCfg.Logging.Level),
		root:   cfg.Root,
		ws:     ws,
	}

	if err := s.registerTools(); err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("register tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.Close()

	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	s.ops.Close()
	return s.store.Close()
}

// persist saves the current workspace. Callers must hold s.mu.
func (s *Server) persist(ctx context.Context) error {
	if err := s.store.SaveWorkspace(ctx, s.ws); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}
