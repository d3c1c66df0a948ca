package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wilhasse/goslice/config"
	"github.com/wilhasse/goslice/workload"
)

var (
	runConfigPath string
	runMetrics    bool
	runAllocator  string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a workload and print its report",
		Args:  cobra.NoArgs,
		RunE:  runWorkload,
	}
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "workload file (built-in default when empty)")
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false, "collect and print allocator metrics")
	runCmd.Flags().StringVar(&runAllocator, "allocator", "", "override the workload allocator")
}

func loadWorkload(path string) (*config.Workload, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runWorkload(cmd *cobra.Command, args []string) error {
	w, err := loadWorkload(runConfigPath)
	if err != nil {
		return err
	}
	if runAllocator != "" {
		w.Allocator = strings.ToLower(runAllocator)
	}
	if cmd.Flags().Changed("metrics") {
		w.Metrics = runMetrics
	}
	if logLevel == "" && w.LogLevel != "" {
		l, err := newLogger(w.LogLevel)
		if err != nil {
			return err
		}
		logger = l
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := workload.Run(ctx, w, workload.Options{Logger: logger})
	if err != nil {
		logger.Error("workload failed", zap.String("workload", w.Name), zap.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeReport(out, report); err != nil {
		return err
	}
	if report.Registry != nil {
		return writeMetrics(out, report.Registry)
	}
	return nil
}

func writeReport(out io.Writer, report *workload.Report) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

func writeMetrics(out io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
