package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/talk2mcp/plan"
)

var rootCmd = &cobra.Command{
	Use:           "talk2mcp",
	Short:         "talk2mcp runs an LLM agent loop against MCP tools",
	Long:          `talk2mcp asks a language model for one step at a time, dispatches the tool calls it names to an MCP server, and tracks a task plan until every operation is done.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides TALK2MCP_LOG_LEVEL)")
	flags.String("plan", "", "Path to a YAML task plan (default: built-in sum-and-draw)")
	flags.String("server-cmd", "", "Command that starts a stdio MCP server (overrides TALK2MCP_SERVER_COMMAND)")
	flags.String("server-url", "", "URL of an SSE MCP server (overrides TALK2MCP_SERVER_URL)")
}

// setup holds what every command shares.
type setup struct {
	cfg    *Config
	logger *slog.Logger
	plan   *plan.Plan
}

// loadSetup reads the environment, applies flag overrides, and loads the
// plan. Provider settings are validated only when validate is set.
func loadSetup(cmd *cobra.Command, validate bool) (*setup, error) {
	cfg := LoadConfig()

	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("server-cmd"); v != "" {
		cfg.ServerCommand = v
		cfg.ServerURL = ""
	}
	if v, _ := flags.GetString("server-url"); v != "" {
		cfg.ServerURL = v
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	path, _ := flags.GetString("plan")
	p, err := loadPlan(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("plan loaded", "plan", p.Name, "operations", len(p.Operations))

	return &setup{cfg: cfg, logger: logger, plan: p}, nil
}
