package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/primality"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/qpoly"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/report"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [start ...]",
	Short: "Verify claimed prime quadruplet locations",
	Long: `Checks that Q(s), Q(s+1), Q(s+2), Q(s+3) are all probable primes and
that the two neighbors Q(s-1) and Q(s+4) are composite, for each claimed
start s. Without arguments the configured locations are checked. Exits
non-zero when any claim fails.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(args)
	},
}

func runVerify(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cfg.Output)
	printStartupInfo(logger, cfg)

	starts := cfg.Verify.Quadruplets
	if len(args) > 0 {
		starts = make([]uint64, 0, len(args))
		for _, a := range args {
			s, err := strconv.ParseUint(a, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", a, err)
			}
			starts = append(starts, s)
		}
	}
	if len(starts) == 0 {
		return errors.New("no quadruplet starts configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := &verify.BasicMetricsCollector{}
	v := verify.NewVerifier(
		qpoly.New(cfg.Polynomial.Exponent),
		primality.NewTester(cfg.Primality.Witnesses),
		logger,
		verify.Options{
			Workers:  cfg.Verify.Workers,
			Progress: cfg.Verify.ProgressInterval,
			Metrics:  metrics,
		},
	)

	began := time.Now()
	results, err := v.VerifyAll(ctx, starts)
	if err != nil {
		return err
	}

	snapshot := metrics.GetStats()
	logger.Infof("Verified %d claims in %s", snapshot.QuadrupletCount, time.Since(began).Round(time.Millisecond))
	logger.Infof("Candidates tested: %d (%d prime, %d composite)",
		snapshot.CandidateCount, snapshot.PrimeCount, snapshot.CompositeCount)

	cmp := verify.Compare(results, cfg.Verify.HardyLittlewoodPrediction)
	report.DisplayVerification(os.Stdout, cfg.Polynomial.Exponent, results, &cmp)

	if cfg.Output.SaveJSON {
		rep := report.New(cfg.Polynomial.Exponent)
		rep.Quadruplets = results
		rep.Comparison = &cmp

		w, err := report.NewWriter(&cfg.Output, logger)
		if err != nil {
			return err
		}
		path, err := w.SaveJSON(rep)
		if err != nil {
			return err
		}
		logger.Infof("Report written to %s", path)
	}

	for _, q := range results {
		if !q.Valid {
			return fmt.Errorf("quadruplet claim at %d failed verification", q.Start)
		}
	}
	return nil
}
