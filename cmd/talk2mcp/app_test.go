package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/talk2mcp/agent"
	"github.com/spetersoncode/talk2mcp/internal/logging"
	"github.com/spetersoncode/talk2mcp/plan"
	"github.com/spetersoncode/talk2mcp/store"
	"github.com/spetersoncode/talk2mcp/tool"
)

func TestLoadPlan(t *testing.T) {
	t.Run("built-in", func(t *testing.T) {
		p, err := loadPlan("")
		require.NoError(t, err)
		assert.Equal(t, "sum-and-draw", p.Name)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.yaml")
		doc := "name: double\nquery: Multiply 6 by 7\noperations:\n  - name: calculation\n    tools: [multiply]\n    yields_answer: true\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		p, err := loadPlan(path)
		require.NoError(t, err)
		assert.Equal(t, "double", p.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadPlan(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(&Config{LogLevel: "debug"})
	assert.NoError(t, err)

	_, err = newLogger(&Config{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestOpenReportStore(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("memory", func(t *testing.T) {
		reports, err := openReportStore(ctx, &Config{}, logger)
		require.NoError(t, err)
		defer reports.Close()

		_, ok := reports.Adapter().(*store.MemoryAdapter)
		assert.True(t, ok)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		reports, err := openReportStore(ctx, &Config{RedisAddr: mr.Addr(), ReportTTL: time.Hour}, logger)
		require.NoError(t, err)
		defer reports.Close()

		require.NoError(t, reports.Save(ctx, "task-1", agent.Result{TaskID: "task-1"}))
		assert.True(t, mr.Exists(store.DefaultRedisPrefix+"task-1"))
		assert.Equal(t, time.Hour, mr.TTL(store.DefaultRedisPrefix+"task-1"))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := openReportStore(ctx, &Config{RedisAddr: addr}, logger)
		assert.Error(t, err)
	})
}

// answerOnly keeps reporting the same answer and never calls a tool.
type answerOnly struct {
	calls int
}

func (g *answerOnly) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	return "FINAL_ANSWER: [89]", nil
}

type addArgs struct {
	A int `json:"a" required:"true"`
	B int `json:"b" required:"true"`
}

func TestAgentOptions(t *testing.T) {
	registry := tool.NewRegistry().Add(
		tool.Func("add", "Add two numbers", func(ctx context.Context, args addArgs) (string, error) {
			return "done", nil
		}),
	)
	catalog, err := tool.NewCatalog(registry.Tools())
	require.NoError(t, err)
	dispatcher := tool.NewDispatcher(catalog, registry, tool.WithSettleDelay(0))

	t.Run("configured cap reaches the built-in plan run", func(t *testing.T) {
		t.Setenv("TALK2MCP_MAX_ITERATIONS", "12")
		cfg := LoadConfig()

		gen := &answerOnly{}
		a := agent.New(gen, catalog, dispatcher, agentOptions(cfg, logging.NewNop(), engineEvents{})...)
		result, err := a.Run(context.Background(), plan.Default())
		require.NoError(t, err)

		assert.Equal(t, agent.TerminationIterationCap, result.Termination)
		assert.Equal(t, 12, result.Iterations)
		assert.Equal(t, 12, gen.calls)
	})

	t.Run("plan cap still wins when set", func(t *testing.T) {
		t.Setenv("TALK2MCP_MAX_ITERATIONS", "12")
		cfg := LoadConfig()

		p := plan.Default()
		p.MaxIterations = 3
		gen := &answerOnly{}
		a := agent.New(gen, catalog, dispatcher, agentOptions(cfg, logging.NewNop(), engineEvents{})...)
		result, err := a.Run(context.Background(), p)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Iterations)
	})

	t.Run("events are wired when a sink is given", func(t *testing.T) {
		cfg := &Config{MaxIterations: 1, FaultThreshold: 2}
		events := make(chan agent.Event, 64)

		a := agent.New(&answerOnly{}, catalog, dispatcher, agentOptions(cfg, logging.NewNop(), engineEvents{agent: events})...)
		_, err := a.Run(context.Background(), plan.Default())
		require.NoError(t, err)
		assert.NotEmpty(t, events)
	})
}
