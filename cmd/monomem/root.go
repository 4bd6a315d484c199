package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/leslie-fei/monomem"
)

var (
	// Global flags
	configPath string
	memoryType string
	memoryKey  string
	chunkSize  int
	growth     uint32
	debugFill  bool
	logLevel   string
	jsonOut    bool
)

var rootCmd = &cobra.Command{
	Use:   "monomem",
	Short: "Run workloads against the monotonic allocator",
	Long: `monomem drives synthetic workloads through a monotonic chunk allocator
and reports how many chunks, bytes and resets they needed. It helps to pick the
initial chunk size and growth rate for a workload.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&memoryType, "memory-type", "", "chunk memory: go, mmap or shm")
	flags.StringVar(&memoryKey, "memory-key", "", "shm key or mmap file prefix")
	flags.IntVar(&chunkSize, "chunk-size", 0, "initial chunk size in bytes")
	flags.Uint32Var(&growth, "growth", 0, "chunk growth in percent")
	flags.BoolVar(&debugFill, "debug-fill", false, "fill released memory with 0xD2")
	flags.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	monomem.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads --config and applies the flags given on the command line.
func loadConfig(cmd *cobra.Command) (*monomem.Config, error) {
	config := monomem.DefaultConfig()
	if configPath != "" {
		var err error
		if config, err = monomem.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("memory-type") {
		if err := config.MemoryType.UnmarshalText([]byte(memoryType)); err != nil {
			return nil, err
		}
	}
	if flags.Changed("memory-key") {
		config.MemoryKey = memoryKey
	}
	if flags.Changed("chunk-size") {
		config.InitialChunkSize = uint64(chunkSize)
	}
	if flags.Changed("growth") {
		config.ChunkGrowthInPercent = growth
	}
	if flags.Changed("debug-fill") {
		config.DebugFill = debugFill
	}
	return config, nil
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
