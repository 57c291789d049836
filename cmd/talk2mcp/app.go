package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spetersoncode/talk2mcp/agent"
	"github.com/spetersoncode/talk2mcp/client"
	"github.com/spetersoncode/talk2mcp/internal/logging"
	"github.com/spetersoncode/talk2mcp/mcp"
	"github.com/spetersoncode/talk2mcp/plan"
	"github.com/spetersoncode/talk2mcp/store"
	"github.com/spetersoncode/talk2mcp/tool"
)

// engine is everything a run needs, bound to one tool session.
type engine struct {
	session *mcp.Session
	catalog *tool.Catalog
	client  *client.Client
	agent   *agent.Agent
}

// engineEvents are optional sinks for agent and client events.
type engineEvents struct {
	agent  chan<- agent.Event
	client chan<- client.Event
}

func (e *engine) Close() error {
	return e.session.Close()
}

// newLogger builds the process logger from the configured level.
func newLogger(cfg *Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// loadPlan reads path, or returns the built-in plan when path is empty.
func loadPlan(path string) (*plan.Plan, error) {
	if path == "" {
		return plan.Default(), nil
	}
	return plan.Load(path)
}

// connect opens the tool session: SSE when a URL is configured, otherwise
// a subprocess speaking stdio.
func connect(ctx context.Context, cfg *Config, logger *slog.Logger) (*mcp.Session, error) {
	if cfg.ServerURL != "" {
		logger.Info("connecting to tool server", "url", cfg.ServerURL)
		return mcp.NewSSESession(ctx, cfg.ServerURL)
	}
	name, args := cfg.serverCommand()
	logger.Info("starting tool server", "command", cfg.ServerCommand)
	return mcp.NewStdioSession(ctx, name, os.Environ(), args...)
}

// listCatalog lists the session's tools into a catalog.
func listCatalog(ctx context.Context, session *mcp.Session) (*tool.Catalog, error) {
	tools, err := session.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	return tool.NewCatalog(tools)
}

// newEngine connects a session and wires the catalog, dispatcher, client
// and agent for p.
func newEngine(ctx context.Context, cfg *Config, p *plan.Plan, logger *slog.Logger, events engineEvents) (*engine, error) {
	session, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect tool session: %w", err)
	}

	catalog, err := listCatalog(ctx, session)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("list tools: %w", err)
	}
	logger.Info("tools discovered", "count", catalog.Len())

	dispatcher := tool.NewDispatcher(catalog, session,
		tool.WithSettleDelay(cfg.SettleDelay),
		tool.WithStatefulTools(p.StatefulTools...),
		tool.WithLogger(logger),
	)

	clientCfg := cfg.ClientConfig()
	clientCfg.Events = events.client
	clientCfg.Logger = logger
	gen, err := client.New(ctx, clientCfg)
	if err != nil {
		session.Close()
		return nil, err
	}

	return &engine{
		session: session,
		catalog: catalog,
		client:  gen,
		agent:   agent.New(gen, catalog, dispatcher, agentOptions(cfg, logger, events)...),
	}, nil
}

// agentOptions maps the configuration onto agent options. A plan that sets
// max_iterations still takes precedence over cfg.MaxIterations.
func agentOptions(cfg *Config, logger *slog.Logger, events engineEvents) []agent.Option {
	opts := []agent.Option{
		agent.WithMaxIterations(cfg.MaxIterations),
		agent.WithFaultThreshold(cfg.FaultThreshold),
		agent.WithLogger(logger),
	}
	if events.agent != nil {
		opts = append(opts, agent.WithEvents(events.agent))
	}
	return opts
}

// reportStore is where run results are kept.
type reportStore struct {
	*store.Collection[agent.Result]
	close func() error
}

func (s *reportStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openReportStore uses Redis when an address is configured and memory
// otherwise.
func openReportStore(ctx context.Context, cfg *Config, logger *slog.Logger) (*reportStore, error) {
	if cfg.RedisAddr == "" {
		logger.Debug("using in-memory report store")
		return &reportStore{Collection: store.NewCollection[agent.Result](nil)}, nil
	}
	adapter, err := store.DialRedis(ctx, cfg.RedisAddr, store.WithTTL(cfg.ReportTTL))
	if err != nil {
		return nil, err
	}
	logger.Info("using redis report store", "addr", cfg.RedisAddr, "ttl", cfg.ReportTTL)
	return &reportStore{
		Collection: store.NewCollection[agent.Result](adapter),
		close:      adapter.Close,
	}, nil
}
