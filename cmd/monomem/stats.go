package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leslie-fei/monomem"
)

var (
	iterations int
	listSize   int
	maxString  int
	seed       int64
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "workload rounds, each ends with a reset")
	cmd.Flags().IntVar(&listSize, "list-size", 1000, "elements pushed per round")
	cmd.Flags().IntVar(&maxString, "max-string", 64, "maximum length of the strings allocated per element")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Run a workload and show allocator statistics",
		Long: `The stats command runs rounds of list, vector and string allocations
against one allocator, resets it after every round and prints its statistics.

Example:
  monomem stats
  monomem stats --chunk-size 4096 --growth 150 -n 1000
  monomem stats --memory-type mmap --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			report, err := runWorkload(config, workload{
				iterations: iterations,
				listSize:   listSize,
				maxString:  maxString,
				seed:       seed,
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rounds: %d, peak allocated bytes: %d\n\n", report.Rounds, report.PeakAllocSize)
			fmt.Fprint(out, report.Stats.String())
			fmt.Fprintln(out)
			fmt.Fprint(out, report.DbgStats.String())
			return nil
		},
	}
}

type report struct {
	Rounds        int
	PeakAllocSize uint64
	Stats         monomem.Statistics
	DbgStats      monomem.DbgStatistics
}
