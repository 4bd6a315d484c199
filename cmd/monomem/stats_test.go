package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leslie-fei/monomem"
)

// run executes the root command with args and flags reset to their defaults.
func run(t *testing.T, args ...string) string {
	t.Helper()
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(reset)
	}

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestRunWorkload(t *testing.T) {
	config := monomem.DefaultConfig()
	config.InitialChunkSize = 4 * monomem.KB
	r, err := runWorkload(config, workload{iterations: 5, listSize: 200, maxString: 16, seed: 7})
	require.NoError(t, err)

	assert.Equal(t, 5, r.Rounds)
	assert.Greater(t, r.PeakAllocSize, uint64(0))
	assert.Equal(t, 1, r.Stats.QtyChunks)
	assert.Zero(t, r.Stats.AllocSize)
	assert.Equal(t, uint64(5), r.DbgStats.QtyResets)
	assert.Greater(t, r.Stats.QtyRecyclables, 0)
}

func TestRunWorkload_InvalidConfig(t *testing.T) {
	_, err := runWorkload(&monomem.Config{ChunkGrowthInPercent: 20}, workload{iterations: 1})
	assert.Error(t, err)
}

func TestConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monomem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("memory_type: mmap\ninitial_chunk_size: 2048\n"), 0o600))

	out := run(t, "config", "--config", path, "--growth", "300")

	config, err := monomem.ParseConfig([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, monomem.MMAP, config.MemoryType)
	assert.Equal(t, uint64(2048), config.InitialChunkSize)
	assert.Equal(t, uint32(300), config.ChunkGrowthInPercent)
}

func TestStatsCmd(t *testing.T) {
	out := run(t, "stats", "-n", "3", "--list-size", "50", "--chunk-size", "1024", "--log-level", "error")
	assert.Contains(t, out, "Rounds: 3")
	assert.Contains(t, out, "MonoAllocator Statistics:")
	assert.Contains(t, out, "Resets:              3")
}

func TestStatsCmd_InvalidMemoryType(t *testing.T) {
	rootCmd.SetArgs([]string{"stats", "--memory-type", "tape"})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}

func TestRootCmd_Commands(t *testing.T) {
	names := map[string]*cobra.Command{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = cmd
	}
	assert.Contains(t, names, "stats")
	assert.Contains(t, names, "config")
}
