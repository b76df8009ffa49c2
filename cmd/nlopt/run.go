package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/manakau-com/node-nlopt/internal/logging"
	"github.com/manakau-com/node-nlopt/internal/native"
	"github.com/manakau-com/node-nlopt/internal/native/gonumopt"
	"github.com/manakau-com/node-nlopt/internal/optimization"
	"github.com/manakau-com/node-nlopt/internal/problem"
)

var (
	outputFormat string
	backend      string
	timeout      time.Duration
	seed         int64
)

var runCmd = &cobra.Command{
	Use:   "run <problem.yaml>",
	Short: "Run one optimization problem",
	Long: `Loads a problem file, runs it and prints the result: the status of
every configuration step, the parameter values and the output value.

Interrupting the command stops the run the same way a forced stop does.`,
	Args: cobra.ExactArgs(1),
	RunE: runProblem,
}

func init() {
	runCmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "Output format: json, yaml")
	runCmd.Flags().StringVar(&backend, "backend", "", "Native backend (default from NLOPT_BACKEND)")
	runCmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop the run after this long (0 means no limit)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed of the gonum global algorithms (default from NLOPT_SEED)")
	rootCmd.AddCommand(runCmd)
}

func runProblem(cmd *cobra.Command, args []string) error {
	log := logging.FromContext(cmd.Context())

	name := backend
	if name == "" {
		name = cfg.Optimizer.Backend
	}
	lib, err := native.Lookup(name)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("seed") {
		seed = cfg.Optimizer.Seed
	}
	if _, ok := lib.(*gonumopt.Library); ok && seed != 0 {
		lib = &gonumopt.Library{Seed: seed}
	}

	problemCfg, err := problem.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	opt := optimization.New(lib,
		optimization.WithLogger(zl),
		optimization.WithMetrics(optimization.NewMetrics(reg)),
	)

	log.Info("Starting optimization", map[string]interface{}{
		"problem": args[0],
		"backend": lib.Name(),
	})
	res, runErr := opt.Optimize(ctx, problemCfg)

	if err := writeReport(cmd.OutOrStdout(), res.Report(), outputFormat); err != nil {
		return err
	}

	if path := cfg.Optimizer.MetricsOutput; path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			log.WithError(err).Warn("Failed to write metrics", map[string]interface{}{"path": path})
		}
	}
	return runErr
}

func writeReport(w io.Writer, rep optimization.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(rep)
	}
	return fmt.Errorf("unknown output format %q", format)
}
