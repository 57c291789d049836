package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run the plan once and print the report",
	Long:  `Connects to the tool server, runs the task plan to completion, prints a markdown report and saves the result to the report store. A query argument replaces the plan's query.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSetup(cmd, true)
		if err != nil {
			return err
		}
		p := s.plan
		if len(args) > 0 {
			p = p.WithQuery(strings.Join(args, " "))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, err := newEngine(ctx, s.cfg, p, s.logger, engineEvents{})
		if err != nil {
			return err
		}
		defer eng.Close()

		reports, err := openReportStore(ctx, s.cfg, s.logger)
		if err != nil {
			return err
		}
		defer reports.Close()

		res, err := eng.agent.Run(ctx, p)
		if err != nil {
			return err
		}

		usage := eng.client.Usage()
		s.logger.Info("run finished",
			"task_id", res.TaskID,
			"termination", res.Termination,
			"iterations", res.Iterations,
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
		)

		// The run may have been interrupted; the report is still saved.
		if err := reports.Save(context.WithoutCancel(ctx), res.TaskID, *res); err != nil {
			s.logger.Warn("failed to save report", "task_id", res.TaskID, "error", err)
		}

		out, err := renderReport(reportMarkdown(res), s.cfg.PlainOutput)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)

		if !res.Succeeded() {
			return fmt.Errorf("run %s ended with %s: %s", res.TaskID, res.Termination, res.Reason)
		}
		return nil
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the server offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSetup(cmd, false)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		session, err := connect(ctx, s.cfg, s.logger)
		if err != nil {
			return err
		}
		defer session.Close()

		catalog, err := listCatalog(ctx, session)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), catalog.Describe())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(toolsCmd)
}
