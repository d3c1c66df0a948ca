package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	validatePrint bool

	validateCmd = &cobra.Command{
		Use:   "validate <workload.yaml>",
		Short: "Check a workload file and report every problem",
		Args:  cobra.ExactArgs(1),
		RunE:  validateWorkload,
	}
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validatePrint, "print", false, "print the workload with defaults applied")
}

func validateWorkload(cmd *cobra.Command, args []string) error {
	w, err := loadWorkload(args[0])
	if err != nil {
		logger.Error("invalid workload", zap.String("path", args[0]), zap.Error(err))
		return err
	}
	if validatePrint {
		data, err := w.Marshal()
		if err != nil {
			return fmt.Errorf("encode workload: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d operations, allocator %s)\n", args[0], len(w.Operations), w.Allocator)
	return nil
}
