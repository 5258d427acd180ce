// Package config carries every constant of the analysis as explicit
// configuration: the exponent E, the residue modulus P, the Miller-Rabin
// witness list, density sampling ranges and the claimed quadruplet
// starts. Nothing in the engine packages hardcodes these values, so the
// same engine runs against different exponents and moduli.
//
// Configuration is resolved from a YAML file, Q47_* environment
// variables and command line flags bound by the CLI, in that order of
// increasing precedence. A missing config file is written out with the
// defaults on first run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/primality"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/stats"
)

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = "q47.yaml"

type PolynomialConfig struct {
	Exponent uint64 `json:"exponent" yaml:"exponent" mapstructure:"exponent"`
}

type ResidueConfig struct {
	Modulus uint64 `json:"modulus" yaml:"modulus" mapstructure:"modulus"`
}

type PrimalityConfig struct {
	Witnesses []uint64 `json:"witnesses" yaml:"witnesses" mapstructure:"witnesses"`
}

type DensityConfig struct {
	Ranges      []stats.Range `json:"ranges" yaml:"ranges" mapstructure:"ranges"`
	Scale       float64       `json:"scale" yaml:"scale" mapstructure:"scale"`
	FitMinCount int           `json:"fit_min_count" yaml:"fit_min_count" mapstructure:"fit_min_count"`
}

type ClusterConfig struct {
	TupleSizes []int    `json:"tuple_sizes" yaml:"tuple_sizes" mapstructure:"tuple_sizes"`
	TupleGrid  []uint64 `json:"tuple_grid" yaml:"tuple_grid" mapstructure:"tuple_grid"`
}

type VerifyConfig struct {
	Quadruplets               []uint64      `json:"quadruplets" yaml:"quadruplets" mapstructure:"quadruplets"`
	Workers                   int           `json:"workers" yaml:"workers" mapstructure:"workers"`
	ProgressInterval          time.Duration `json:"progress_interval" yaml:"progress_interval" mapstructure:"progress_interval"`
	HardyLittlewoodPrediction float64       `json:"hardy_littlewood_prediction" yaml:"hardy_littlewood_prediction" mapstructure:"hardy_littlewood_prediction"`
}

type OutputConfig struct {
	DataFile        string `json:"data_file" yaml:"data_file" mapstructure:"data_file"`
	OutputDirectory string `json:"output_directory" yaml:"output_directory" mapstructure:"output_directory"`
	FilenamePrefix  string `json:"filename_prefix" yaml:"filename_prefix" mapstructure:"filename_prefix"`
	SaveCSV         bool   `json:"save_csv" yaml:"save_csv" mapstructure:"save_csv"`
	SaveJSON        bool   `json:"save_json" yaml:"save_json" mapstructure:"save_json"`
	CompressOutput  bool   `json:"compress_output" yaml:"compress_output" mapstructure:"compress_output"`
	Verbose         bool   `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
	LogLevel        string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

type Config struct {
	Polynomial PolynomialConfig `json:"polynomial" yaml:"polynomial" mapstructure:"polynomial"`
	Residue    ResidueConfig    `json:"residue" yaml:"residue" mapstructure:"residue"`
	Primality  PrimalityConfig  `json:"primality" yaml:"primality" mapstructure:"primality"`
	Density    DensityConfig    `json:"density" yaml:"density" mapstructure:"density"`
	Cluster    ClusterConfig    `json:"cluster" yaml:"cluster" mapstructure:"cluster"`
	Verify     VerifyConfig     `json:"verify" yaml:"verify" mapstructure:"verify"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
}

// DefaultRanges returns the published density sampling intervals. The
// intervals are non-contiguous on purpose; the gaps between them carry
// no data in the generated index lists.
func DefaultRanges() []stats.Range {
	return []stats.Range{
		{Low: 13, High: 5000},
		{Low: 5000, High: 20000},
		{Low: 200000, High: 500000},
		{Low: 500000, High: 1000000},
		{Low: 2000000, High: 10000000},
		{Low: 50000000, High: 100000000},
		{Low: 100000000, High: 300000000},
	}
}

func setDefaults() {
	// Polynomial defaults
	viper.SetDefault("polynomial.exponent", 47)

	// Residue defaults
	viper.SetDefault("residue.modulus", 283)

	// Primality defaults
	viper.SetDefault("primality.witnesses", []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37})

	// Density defaults
	viper.SetDefault("density.scale", 1e6)
	viper.SetDefault("density.fit_min_count", 10)

	// Cluster defaults
	viper.SetDefault("cluster.tuple_sizes", []int{2, 3, 4})
	viper.SetDefault("cluster.tuple_grid", []uint64{
		1000000, 10000000, 50000000, 100000000, 150000000, 200000000, 250000000, 300000000,
	})

	// Verify defaults
	viper.SetDefault("verify.quadruplets", []uint64{117309848, 136584738, 218787064})
	viper.SetDefault("verify.workers", 0) // 0 = auto
	viper.SetDefault("verify.progress_interval", "2s")
	viper.SetDefault("verify.hardy_littlewood_prediction", 3.52)

	// Output defaults
	viper.SetDefault("output.data_file", "data/prime_n_values_full.txt")
	viper.SetDefault("output.output_directory", ".")
	viper.SetDefault("output.filename_prefix", "q47")
	viper.SetDefault("output.save_csv", true)
	viper.SetDefault("output.save_json", true)
	viper.SetDefault("output.compress_output", false)
	viper.SetDefault("output.verbose", false)
	viper.SetDefault("output.log_level", "info")
}

func bindEnv() {
	viper.SetEnvPrefix("Q47")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// LoadFromFile reads, validates and completes the config at path.
func LoadFromFile(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	setDefaults()
	bindEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	applyDerived(&cfg)
	return &cfg, nil
}

// Load resolves the config at path, falling back to defaults when the
// file does not exist. The defaults are written to path so the next run
// has a file to edit.
func Load(path string) (*Config, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Printf("Config file not found, using defaults: %s\n", path)
			cfg = Default()
			if err := SaveDefault(path, cfg); err != nil {
				fmt.Printf("Warning: could not save default config: %v\n", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	setDefaults()

	cfg := &Config{}
	viper.Unmarshal(cfg)

	applyDerived(cfg)
	return cfg
}

// SaveDefault writes cfg to path as commented YAML.
func SaveDefault(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	header := `# q47 prime polynomial analysis configuration
# Generated automatically on ` + time.Now().Format("2006-01-02 15:04:05") + `
# Documentation: https://github.com/Ruqing1963/prime-polynomial-Q47

`

	return os.WriteFile(path, []byte(header+string(data)), 0644)
}

func validate(cfg *Config) error {
	if cfg.Polynomial.Exponent < 3 || cfg.Polynomial.Exponent%2 == 0 {
		return fmt.Errorf("exponent must be an odd integer >= 3, got %d", cfg.Polynomial.Exponent)
	}

	if cfg.Residue.Modulus < 3 {
		return fmt.Errorf("modulus must be at least 3, got %d", cfg.Residue.Modulus)
	}
	if cfg.Residue.Modulus > 1<<32-1 {
		return fmt.Errorf("modulus must fit 32 bits, got %d", cfg.Residue.Modulus)
	}

	if len(cfg.Primality.Witnesses) == 0 {
		return fmt.Errorf("witness list must not be empty")
	}
	for i := 1; i < len(cfg.Primality.Witnesses); i++ {
		if cfg.Primality.Witnesses[i] <= cfg.Primality.Witnesses[i-1] {
			return fmt.Errorf("witness list must be strictly ascending")
		}
	}

	// The residue derivation assumes a prime modulus; check it with the
	// configured witnesses.
	tester := primality.NewTester(cfg.Primality.Witnesses)
	if !tester.IsProbablePrime(new(big.Int).SetUint64(cfg.Residue.Modulus)) {
		return fmt.Errorf("modulus %d is not prime", cfg.Residue.Modulus)
	}

	if cfg.Density.Scale <= 0 {
		return fmt.Errorf("density scale must be positive, got %v", cfg.Density.Scale)
	}
	if cfg.Density.FitMinCount < 0 {
		return fmt.Errorf("fit_min_count cannot be negative")
	}
	for _, r := range cfg.Density.Ranges {
		if r.Low >= r.High {
			return fmt.Errorf("density range low must be below high, got [%d, %d)", r.Low, r.High)
		}
	}

	for _, k := range cfg.Cluster.TupleSizes {
		if k < 2 {
			return fmt.Errorf("tuple sizes must be at least 2, got %d", k)
		}
	}
	for i := 1; i < len(cfg.Cluster.TupleGrid); i++ {
		if cfg.Cluster.TupleGrid[i] <= cfg.Cluster.TupleGrid[i-1] {
			return fmt.Errorf("tuple_grid must be strictly ascending")
		}
	}

	for _, s := range cfg.Verify.Quadruplets {
		if s == 0 {
			return fmt.Errorf("quadruplet starts must be positive")
		}
	}
	if cfg.Verify.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if cfg.Verify.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval cannot be negative")
	}
	if cfg.Verify.HardyLittlewoodPrediction < 0 {
		return fmt.Errorf("hardy_littlewood_prediction cannot be negative")
	}

	switch strings.ToLower(cfg.Output.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", cfg.Output.LogLevel)
	}

	return nil
}

func applyDerived(cfg *Config) {
	// Fill sampling ranges if none were configured
	if len(cfg.Density.Ranges) == 0 {
		cfg.Density.Ranges = DefaultRanges()
	}

	// Resolve worker count if auto
	if cfg.Verify.Workers <= 0 {
		workers := runtime.NumCPU()
		if workers > 32 {
			workers = 32
		}
		cfg.Verify.Workers = workers
	}
}
