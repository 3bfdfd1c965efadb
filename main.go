// Command defillet removes rolling-ball blends from solids described by model
// scripts and reports what it did.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/chazu/defillet/pkg/config"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

// options are the root flags shared by every command. Flags set on the
// command line override the config file.
type options struct {
	configPath      string
	radius          float64
	workers         int
	metricsTextfile string
	verbosity       int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func initLogging(verbosity int) {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", strconv.Itoa(verbosity))
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          false,
	})
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts options
	var app *App

	root := &cobra.Command{
		Use:           "defillet",
		Short:         "Suppress blend faces from B-Rep solids",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			initLogging(cfg.Log.Verbosity)
			app = NewApp(cfg)
			return nil
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML or JSON config file")
	pf.Float64VarP(&opts.radius, "radius", "r", 0, "blend radius to suppress")
	pf.IntVar(&opts.workers, "workers", 0, "parallel surface queries (0: one per CPU)")
	pf.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
	pf.IntVarP(&opts.verbosity, "verbosity", "v", 0, "klog verbosity")

	suppressCmd := &cobra.Command{
		Use:   "suppress SCRIPT",
		Short: "Remove every blend chain of the given radius",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sum, _, runErr := app.Suppress(cmd.Context(), string(src))
			if sum == nil {
				return runErr
			}
			if err := writeJSON(cmd.OutOrStdout(), sum); err != nil {
				return err
			}
			if path := app.cfg.Metrics.Textfile; path != "" {
				if err := app.WriteMetrics(path); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			return runErr
		},
	}

	recognizeCmd := &cobra.Command{
		Use:   "recognize SCRIPT",
		Short: "List blend candidates and their chains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sum, err := app.Recognize(cmd.Context(), string(src))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), sum)
		},
	}

	var withCandidates bool
	aagCmd := &cobra.Command{
		Use:   "aag SCRIPT",
		Short: "Dump the attributed adjacency graph as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return app.DumpAAG(cmd.Context(), string(src), withCandidates, cmd.OutOrStdout())
		},
	}
	aagCmd.Flags().BoolVar(&withCandidates, "candidates", false, "run blend recognition before dumping")

	smoothCmd := &cobra.Command{
		Use:   "smooth-edges SCRIPT",
		Short: "List the ids of edges joining faces tangentially",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ids, err := app.SmoothEdges(string(src))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ids)
		},
	}

	root.AddCommand(suppressCmd, recognizeCmd, aagCmd, smoothCmd)
	return root
}

// loadConfig reads the config file and applies any flags the user set.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Read(opts.configPath)
	if err != nil {
		return cfg, err
	}
	fl := cmd.Flags()
	if fl.Changed("radius") {
		cfg.Recognition.Radius = opts.radius
	}
	if fl.Changed("workers") {
		cfg.Recognition.Workers = opts.workers
	}
	if fl.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = opts.metricsTextfile
	}
	if fl.Changed("verbosity") {
		cfg.Log.Verbosity = opts.verbosity
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
