package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/spetersoncode/talk2mcp/agent"
	"github.com/spetersoncode/talk2mcp/client"
	"github.com/spetersoncode/talk2mcp/metrics"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves POST /runs to start runs, GET /runs and GET /runs/{id} to read stored reports, and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSetup(cmd, true)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			s.cfg.Port = port
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder := metrics.NewRecorder(registry)

		agentEvents := make(chan agent.Event, 256)
		clientEvents := make(chan client.Event, 256)
		go recorder.Consume(ctx, agentEvents)
		go recorder.ConsumeClient(ctx, clientEvents)

		eng, err := newEngine(ctx, s.cfg, s.plan, s.logger, engineEvents{agent: agentEvents, client: clientEvents})
		if err != nil {
			return err
		}
		defer eng.Close()

		reports, err := openReportStore(ctx, s.cfg, s.logger)
		if err != nil {
			return err
		}
		defer reports.Close()

		srv := &http.Server{
			Addr:              ":" + s.cfg.Port,
			Handler:           NewServer(eng.agent, s.plan, reports.Collection, registry, s.logger).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			s.logger.Info("starting server", "addr", srv.Addr, "plan", s.plan.Name)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil

		case <-ctx.Done():
			s.logger.Info("shutting down")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			s.logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides TALK2MCP_PORT)")
}
