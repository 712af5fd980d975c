// Command schedctl reads a ScheduleRequest JSON file, runs it through
// the unified solver, and prints the ScheduleResponse JSON to stdout.
// Grounded on the cobra+pflag entry-point shape used by the
// abramin-kairos and karpenter reference repos' CLI commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danfeder/schedule-engine/internal/metrics"
	"github.com/danfeder/schedule-engine/internal/obslog"
	"github.com/danfeder/schedule-engine/pkg/config"
	"github.com/danfeder/schedule-engine/pkg/scheduleapi"
	"github.com/danfeder/schedule-engine/pkg/weights"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedctl",
		Short: "Generate a class schedule from a ScheduleRequest file",
	}
	root.AddCommand(newSolveCmd())
	root.AddCommand(newWeightsCmd())
	return root
}

func newSolveCmd() *cobra.Command {
	var requestPath string
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a ScheduleRequest and print the ScheduleResponse",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := obslog.Configure(cfg.Env, cfg.LogLevel); err != nil {
				return err
			}

			raw, err := os.ReadFile(requestPath)
			if err != nil {
				return fmt.Errorf("read request file: %w", err)
			}

			m := metrics.NewSolver()
			resp, err := scheduleapi.Solve(context.Background(), raw, m)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "path to a ScheduleRequest JSON file")
	cmd.MarkFlagRequired("request")
	return cmd
}

func newWeightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Administer the global objective weight map",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current weight map",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(weights.Snapshot())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore every weight to its default",
		RunE: func(cmd *cobra.Command, args []string) error {
			weights.Reset()
			fmt.Fprintln(os.Stdout, "weights reset to defaults")
			return nil
		},
	})
	return cmd
}
