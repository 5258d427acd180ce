package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/report"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/sequence"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the density, cluster, gap and residue analysis",
	Long: `Loads the prime-producing indices and computes density by range,
maximal consecutive runs, gap statistics, the residue distribution and the
forbidden-class verification. The report goes to stdout and, per
configuration, to JSON and CSV files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze()
	},
}

func runAnalyze() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cfg.Output)
	printStartupInfo(logger, cfg)

	began := time.Now()
	logger.Infof("Loading data from %s", cfg.Output.DataFile)
	seq, err := sequence.FromFile(cfg.Output.DataFile)
	if err != nil {
		return err
	}
	if seq.Len() == 0 {
		return fmt.Errorf("no usable indices in %s", cfg.Output.DataFile)
	}
	logger.Infof("Loaded %d indices in %s", seq.Len(), time.Since(began).Round(time.Millisecond))

	rep, buildErr := report.Build(cfg, seq, cfg.Output.DataFile)
	report.Display(os.Stdout, rep)

	w, err := report.NewWriter(&cfg.Output, logger)
	if err != nil {
		return err
	}
	if cfg.Output.SaveJSON {
		path, err := w.SaveJSON(rep)
		if err != nil {
			return err
		}
		logger.Infof("Report written to %s", path)
	}
	if cfg.Output.SaveCSV {
		paths, err := w.SaveCSV(rep)
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.Infof("Table written to %s", p)
		}
	}

	// A failed residue verification is an error, not a footnote. The
	// report above already shows the failing counts.
	if buildErr != nil {
		return fmt.Errorf("residue verification failed: %w", buildErr)
	}
	return nil
}
