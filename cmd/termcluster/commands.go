package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/termcluster"
	"github.com/hupe1980/termcluster/centroid"
	"github.com/hupe1980/termcluster/config"
	"github.com/hupe1980/termcluster/engine"
	"github.com/hupe1980/termcluster/metrics/prometheus"
	"github.com/hupe1980/termcluster/source"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runAssign(cmd *cobra.Command, args []string) error {
	rowsPath, _ := cmd.Flags().GetString("rows")
	partitions, _ := cmd.Flags().GetInt("partitions")
	shapeName, _ := cmd.Flags().GetString("shape")
	metricsOut, _ := cmd.Flags().GetString("metrics-out")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	var opts []termcluster.Option
	var registry *prom.Registry
	if metricsOut != "" {
		registry = prom.NewRegistry()
		collector, err := prometheus.NewCollector(registry, "termcluster")
		if err != nil {
			return err
		}
		opts = append(opts, termcluster.WithMetricsCollector(collector))
	}

	rt, err := cfg.Open(ctx, opts...)
	if err != nil {
		return err
	}

	plan := rt.Plan
	if partitions > 0 {
		plan.Partitions = partitions
	}
	if shapeName != "" {
		if plan.Shape, err = engine.ParseMergeShape(shapeName); err != nil {
			return err
		}
	}

	in := cmd.InOrStdin()
	if rowsPath != "-" {
		f, err := os.Open(rowsPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	rows, err := readRows(in)
	if err != nil {
		return err
	}

	assignments, err := rt.Worker.Run(ctx, rows, plan)
	if err != nil {
		return err
	}

	groups := make([]string, 0, len(assignments))
	for g := range assignments {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	if err := writeAssignments(cmd.OutOrStdout(), groups, assignments); err != nil {
		return err
	}

	if registry != nil {
		if err := prom.WriteToTextfile(metricsOut, registry); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	rt, err := cfg.Open(ctx)
	if err != nil {
		return err
	}
	table, err := rt.Worker.Table(ctx)
	if err != nil {
		return err
	}
	return source.Write(cmd.OutOrStdout(), table)
}

func runPublish(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := readTable(f, cfg)
	if err != nil {
		return err
	}

	rt, err := cfg.Open(ctx)
	if err != nil {
		return err
	}
	if err := source.Publish(ctx, rt.Store, name, table); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "published %s: %d clusters, %d terms, fingerprint %08x\n",
		name, table.K(), table.Terms(), table.Fingerprint())

	if rt.Versions != nil {
		v, err := rt.Versions.Publish(ctx, name, table.K())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "current version: %d\n", v.Number)
	}
	return nil
}

func readTable(r io.Reader, cfg *config.Config) (*centroid.Table, error) {
	table, err := source.Read(r, cfg.Clusters, cfg.BuilderOptions()...)
	if err != nil {
		return nil, fmt.Errorf("reading centroids: %w", err)
	}
	return table, nil
}
