// q47 analyzes and verifies the prime values of the polynomial family
// Q(n) = n^E - (n-1)^E for the published exponent E = 47.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/config"
)

const (
	version = "1.0.0"
	license = "MIT"
)

var rootCmd = &cobra.Command{
	Use:   "q47",
	Short: "Prime analysis of the polynomial family Q(n) = n^47 - (n-1)^47",
	Long: `q47 studies the integer indices n for which Q(n) = n^47 - (n-1)^47 is a
probable prime: density by range, consecutive-index clusters, gap statistics,
forbidden residue classes mod 283 and verification of the three published
prime quadruplet locations.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Global flags
var (
	configPath string
	dataFile   string
	outputDir  string
	workers    int
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&dataFile, "data", "", "Prime index data file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Output directory (overrides config)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Verification workers (0=auto)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")

	// Bind flags to viper
	viper.BindPFlag("output.data_file", rootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("output.output_directory", rootCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("verify.workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(residuesCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Verbose wins over the configured level.
	if verbose {
		cfg.Output.Verbose = true
		cfg.Output.LogLevel = "debug"
	}
	return cfg, nil
}

func setupLogger(cfg config.OutputConfig) *logrus.Logger {
	logger := logrus.New()

	// Set formatter
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     true,
	})

	// Set level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		if cfg.Verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}
	}

	return logger
}

func printStartupInfo(logger *logrus.Logger, cfg *config.Config) {
	fmt.Printf("q47 v%s | License: %s\n", version, license)
	fmt.Printf("Go: %s | CPUs: %d\n", runtime.Version(), runtime.NumCPU())
	fmt.Println()

	logger.Infof("Starting with configuration:")
	logger.Infof("  Polynomial: Q(n) = n^%d - (n-1)^%d", cfg.Polynomial.Exponent, cfg.Polynomial.Exponent)
	logger.Infof("  Residue modulus: %d | Witnesses: %d", cfg.Residue.Modulus, len(cfg.Primality.Witnesses))
	logger.Infof("  Workers: %d | Data file: %s", cfg.Verify.Workers, cfg.Output.DataFile)
	logger.Infof("  Output directory: %s", cfg.Output.OutputDirectory)
}

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
