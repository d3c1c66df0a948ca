package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wilhasse/goslice/workload"
)

var (
	growthInitial int
	growthAppends int

	growthCmd = &cobra.Command{
		Use:   "growth",
		Short: "Print the capacity steps taken by sequential appends",
		Args:  cobra.NoArgs,
		RunE:  printGrowth,
	}
)

func init() {
	rootCmd.AddCommand(growthCmd)
	growthCmd.Flags().IntVar(&growthInitial, "initial-capacity", 1, "capacity passed to the constructor")
	growthCmd.Flags().IntVar(&growthAppends, "appends", 1000, "number of appends")
}

func printGrowth(cmd *cobra.Command, args []string) error {
	if growthInitial < 0 || growthAppends < 0 {
		return fmt.Errorf("initial-capacity and appends must not be negative")
	}
	steps, reallocs := workload.GrowthTable(growthInitial, growthAppends)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LENGTH\tCAPACITY")
	for _, s := range steps {
		fmt.Fprintf(tw, "%d\t%d\n", s.Length, s.Capacity)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d appends, %d reallocations\n", growthAppends, reallocs)
	return nil
}
