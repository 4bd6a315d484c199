package monomem

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

type MemoryType int

const (
	GO   MemoryType = 1
	SHM  MemoryType = 2
	MMAP MemoryType = 3
)

const (
	// DefaultChunkSize is the initial chunk size used when none is given.
	DefaultChunkSize = 8 * KB
	// DefaultChunkGrowthInPercent doubles the chunk size with every new chunk.
	DefaultChunkGrowthInPercent = 200
)

func (t MemoryType) String() string {
	switch t {
	case GO:
		return "go"
	case SHM:
		return "shm"
	case MMAP:
		return "mmap"
	}
	return fmt.Sprintf("MemoryType(%d)", int(t))
}

func (t MemoryType) MarshalText() ([]byte, error) {
	switch t {
	case GO, SHM, MMAP:
		return []byte(t.String()), nil
	}
	return nil, errors.Wrapf(ErrUnknownMemoryType, "%d", int(t))
}

func (t *MemoryType) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "go", "":
		*t = GO
	case "shm":
		*t = SHM
	case "mmap":
		*t = MMAP
	default:
		return errors.Wrapf(ErrUnknownMemoryType, "%q", text)
	}
	return nil
}

type Config struct {
	// memory type in GO SHM MMAP
	MemoryType MemoryType `yaml:"memory_type"`
	// key of the chunk blocks: shm key prefix, or mmap file prefix (empty maps anonymous memory)
	MemoryKey string `yaml:"memory_key"`
	// size of the first chunk including its header, used when the constructor gets no size
	InitialChunkSize uint64 `yaml:"initial_chunk_size"`
	// growth applied to the next standard chunk size after each new chunk
	ChunkGrowthInPercent uint32 `yaml:"chunk_growth_in_percent"`
	// fill memory released by Reset with 0xD2
	DebugFill bool `yaml:"debug_fill"`
	// Heap overrides the block source selected by MemoryType. It must outlive
	// every allocator built from this config.
	Heap Heap `yaml:"-"`
}

func DefaultConfig() *Config {
	var defaultConfig = &Config{
		MemoryType:           GO,
		InitialChunkSize:     DefaultChunkSize,
		ChunkGrowthInPercent: DefaultChunkGrowthInPercent,
	}
	return defaultConfig
}

// LoadConfig reads a YAML config file. Missing fields keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return mergeConfig(config)
}

// YAML renders the config the way LoadConfig reads it.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// mergeConfig returns a copy of c with defaults filled in, nil means DefaultConfig.
func mergeConfig(c *Config) (*Config, error) {
	config := DefaultConfig()
	if c == nil {
		return config, nil
	}
	merged := *c
	if merged.MemoryType == 0 {
		merged.MemoryType = config.MemoryType
	}
	if merged.InitialChunkSize == 0 {
		merged.InitialChunkSize = config.InitialChunkSize
	}
	if merged.ChunkGrowthInPercent == 0 {
		merged.ChunkGrowthInPercent = config.ChunkGrowthInPercent
	}
	if merged.ChunkGrowthInPercent < 100 {
		return nil, errors.Wrapf(ErrInvalidGrowth, "got %d", merged.ChunkGrowthInPercent)
	}
	switch merged.MemoryType {
	case GO, MMAP:
	case SHM:
		if merged.MemoryKey == "" && merged.Heap == nil {
			return nil, errors.Wrap(ErrMemoryKeyRequired, "shm")
		}
	default:
		return nil, errors.Wrapf(ErrUnknownMemoryType, "%d", int(merged.MemoryType))
	}
	return &merged, nil
}
