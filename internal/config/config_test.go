package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/stats"
)

func TestDefault(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg := Default()

	assert.Equal(t, uint64(47), cfg.Polynomial.Exponent)
	assert.Equal(t, uint64(283), cfg.Residue.Modulus)
	assert.Equal(t, []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}, cfg.Primality.Witnesses)
	assert.Equal(t, DefaultRanges(), cfg.Density.Ranges)
	assert.Equal(t, 1e6, cfg.Density.Scale)
	assert.Equal(t, 10, cfg.Density.FitMinCount)
	assert.Equal(t, []int{2, 3, 4}, cfg.Cluster.TupleSizes)
	assert.Len(t, cfg.Cluster.TupleGrid, 8)
	assert.Equal(t, []uint64{117309848, 136584738, 218787064}, cfg.Verify.Quadruplets)
	assert.Greater(t, cfg.Verify.Workers, 0)
	assert.Equal(t, 2*time.Second, cfg.Verify.ProgressInterval)
	assert.Equal(t, 3.52, cfg.Verify.HardyLittlewoodPrediction)
	assert.Equal(t, "data/prime_n_values_full.txt", cfg.Output.DataFile)
	assert.Equal(t, "q47", cfg.Output.FilenamePrefix)
	assert.Equal(t, "info", cfg.Output.LogLevel)
	assert.True(t, cfg.Output.SaveCSV)
	assert.True(t, cfg.Output.SaveJSON)

	require.NoError(t, validate(cfg))
}

func TestLoadFromFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "q47.yaml")
	content := `polynomial:
  exponent: 5
residue:
  modulus: 7
primality:
  witnesses: [2, 3]
density:
  ranges:
    - low: 1
      high: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(5), cfg.Polynomial.Exponent)
	assert.Equal(t, uint64(7), cfg.Residue.Modulus)
	assert.Equal(t, []uint64{2, 3}, cfg.Primality.Witnesses)
	assert.Equal(t, []stats.Range{{Low: 1, High: 100}}, cfg.Density.Ranges)

	// Unset keys keep their defaults.
	assert.Equal(t, 1e6, cfg.Density.Scale)
	assert.Len(t, cfg.Cluster.TupleGrid, 8)
	assert.Greater(t, cfg.Verify.Workers, 0)
}

func TestLoadWritesDefaultFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "q47.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(47), cfg.Polynomial.Exponent)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# q47 prime polynomial analysis configuration")
	assert.Contains(t, string(data), "modulus: 283")
}

func TestLoadRoundTrip(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "q47.yaml")

	want := Default()
	require.NoError(t, SaveDefault(path, want))

	viper.Reset()
	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("Q47_OUTPUT_LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "q47.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  verbose: true\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Output.LogLevel)
	assert.True(t, cfg.Output.Verbose)
}

func TestValidate(t *testing.T) {
	t.Cleanup(viper.Reset)

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "EvenExponent",
			mutate:  func(c *Config) { c.Polynomial.Exponent = 46 },
			wantErr: "exponent",
		},
		{
			name:    "ExponentTooSmall",
			mutate:  func(c *Config) { c.Polynomial.Exponent = 1 },
			wantErr: "exponent",
		},
		{
			name:    "CompositeModulus",
			mutate:  func(c *Config) { c.Residue.Modulus = 287 },
			wantErr: "not prime",
		},
		{
			name:    "EmptyWitnesses",
			mutate:  func(c *Config) { c.Primality.Witnesses = nil },
			wantErr: "witness",
		},
		{
			name:    "UnsortedWitnesses",
			mutate:  func(c *Config) { c.Primality.Witnesses = []uint64{3, 2} },
			wantErr: "ascending",
		},
		{
			name:    "InvertedRange",
			mutate:  func(c *Config) { c.Density.Ranges = []stats.Range{{Low: 10, High: 10}} },
			wantErr: "range",
		},
		{
			name:    "ZeroScale",
			mutate:  func(c *Config) { c.Density.Scale = 0 },
			wantErr: "scale",
		},
		{
			name:    "TupleSizeOne",
			mutate:  func(c *Config) { c.Cluster.TupleSizes = []int{1} },
			wantErr: "tuple sizes",
		},
		{
			name:    "GridNotAscending",
			mutate:  func(c *Config) { c.Cluster.TupleGrid = []uint64{100, 100} },
			wantErr: "tuple_grid",
		},
		{
			name:    "ZeroQuadrupletStart",
			mutate:  func(c *Config) { c.Verify.Quadruplets = []uint64{0} },
			wantErr: "quadruplet",
		},
		{
			name:    "BadLogLevel",
			mutate:  func(c *Config) { c.Output.LogLevel = "loud" },
			wantErr: "log_level",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
