package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"meshjoin/internal/config"
)

const defaultConfigPath = "configs/pipeline.yaml"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
}

// runOptions select the metrics backend for "run". Empty values fall back to
// METRICS_BACKEND, PUSHGATEWAY_URL and DATADOG_ADDR.
type runOptions struct {
	metricsBackend string
	pushgatewayURL string
	datadogAddr    string
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}
	root := &cobra.Command{
		Use:           "meshjoin",
		Short:         "Stream-join sales transactions with customer and product reference data",
		Long:          color.CyanString("meshjoin - enrich a sales transaction stream with customers and products"),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&ro.configPath, "config", defaultConfigPath, "pipeline config path (.json, .yaml or .yml)")
	root.PersistentFlags().BoolVarP(&ro.verbose, "verbose", "v", false, "enable verbose logs")

	root.AddCommand(newRunCmd(ro), newValidateCmd(ro))
	return root
}

func newValidateCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Lint the pipeline config and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := loadPipeline(cmd.OutOrStdout(), ro.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("configuration is valid: %s", ro.configPath))
			return nil
		},
	}
}

func newRunCmd(ro *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the join described by the pipeline config",
		Args:  cobra.NoArgs,
		Example: `  meshjoin run --config configs/pipeline.yaml
  meshjoin run --config pipeline.json --metrics-backend pushgateway --pushgateway-url http://localhost:9091
  meshjoin run --config pipeline.yaml --metrics-backend datadog --datadog-addr 127.0.0.1:8125 -v`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			p, err := loadPipeline(out, ro.configPath)
			if err != nil {
				return err
			}

			flush := setupMetrics(*opts, jobName(p), ro.verbose)
			defer flush()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			fmt.Fprintln(out, color.GreenString("starting %s from %s", jobName(p), ro.configPath))
			start := time.Now()
			sum, err := runPipeline(ctx, p, ro.verbose)
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}
			printOutcome(out, sum, time.Since(start))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (env METRICS_BACKEND)")
	cmd.Flags().StringVar(&opts.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL, default http://localhost:9091)")
	cmd.Flags().StringVar(&opts.datadogAddr, "datadog-addr", "", "DogStatsD address (env DATADOG_ADDR, default 127.0.0.1:8125)")
	return cmd
}

// loadPipeline reads and lints the config, printing every issue to out.
// Warnings are shown but only errors fail.
func loadPipeline(out io.Writer, path string) (config.Pipeline, error) {
	p, err := config.Load(path)
	if err != nil {
		return config.Pipeline{}, err
	}
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		c := color.YellowString
		if iss.Severity == config.SeverityError {
			c = color.RedString
		}
		fmt.Fprintln(out, c("%s: %s: %s", iss.Severity, iss.Path, iss.Message))
	}
	if config.HasErrors(issues) {
		return config.Pipeline{}, fmt.Errorf("configuration is invalid: %s", path)
	}
	return p, nil
}

// printOutcome writes the colored end-of-run status. Sink failures do not
// fail the run, so they are reported here as warnings.
func printOutcome(out io.Writer, s runSummary, elapsed time.Duration) {
	for _, err := range s.SinkErrors {
		fmt.Fprintln(out, color.YellowString("warning: %v", err))
	}
	for _, err := range s.ReferenceErrors {
		fmt.Fprintln(out, color.YellowString("warning: %v", err))
	}
	fmt.Fprintln(out, color.GreenString("done in %s: results=%d joined=%d unmatched=%d malformed=%d",
		elapsed.Truncate(time.Millisecond), s.Results, s.Stats.Joined, s.Stats.Unmatched(), s.Stats.Malformed))
}

func jobName(p config.Pipeline) string {
	if p.Job != "" {
		return p.Job
	}
	return "meshjoin"
}
