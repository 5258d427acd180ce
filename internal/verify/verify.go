// Package verify checks claimed prime quadruplets of the polynomial
// family: four consecutive indices whose Q values are all probable
// primes, fenced by composite neighbors on both sides.
//
// Each check is a pure computation over six large integers, so many
// claims can be verified concurrently without shared state.
package verify

import (
	"context"
	"math/big"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/primality"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/qpoly"
)

// Candidate is one evaluated index: n, the exact value Q(n), its size in
// decimal digits and the primality verdict. Candidates are ephemeral;
// the ~400-digit value is kept for display but excluded from exports.
type Candidate struct {
	N       uint64            `json:"n"`
	Value   *big.Int          `json:"-"`
	Digits  int               `json:"digits"`
	Verdict primality.Verdict `json:"verdict"`
}

// Quadruplet is the outcome of one claim check. Members holds the four
// consecutive candidates starting at Start, Boundaries the neighbors
// Start-1 and Start+4. Valid requires four primes inside and two
// composites outside.
type Quadruplet struct {
	Start      uint64       `json:"start"`
	Members    [4]Candidate `json:"members"`
	Boundaries [2]Candidate `json:"boundaries"`
	Valid      bool         `json:"valid"`
}

// Comparison relates the observed valid count to an analytic prediction
// of the Hardy-Littlewood type.
type Comparison struct {
	Observed  int     `json:"observed"`
	Predicted float64 `json:"predicted"`
	Ratio     float64 `json:"ratio"`
}

// CheckQuadruplet evaluates and classifies all six positions of the
// claim at start. Every position is evaluated even after a failure so
// the full picture can be reported. A start of 0 has no left boundary
// and is rejected without evaluation.
func CheckQuadruplet(pol *qpoly.Polynomial, tester *primality.Tester, start uint64) Quadruplet {
	q := Quadruplet{Start: start}
	if start == 0 {
		return q
	}

	valid := true
	for i := uint64(0); i < 4; i++ {
		c := candidateAt(pol, tester, start+i)
		q.Members[i] = c
		if c.Verdict != primality.VerdictPrime {
			valid = false
		}
	}
	for i, n := range [2]uint64{start - 1, start + 4} {
		c := candidateAt(pol, tester, n)
		q.Boundaries[i] = c
		if c.Verdict != primality.VerdictComposite {
			valid = false
		}
	}
	q.Valid = valid
	return q
}

func candidateAt(pol *qpoly.Polynomial, tester *primality.Tester, n uint64) Candidate {
	v := pol.Eval(n)
	return Candidate{
		N:       n,
		Value:   v,
		Digits:  qpoly.DigitCount(v),
		Verdict: tester.Classify(v),
	}
}

// Compare counts the valid quadruplets in results against predicted.
func Compare(results []Quadruplet, predicted float64) Comparison {
	observed := 0
	for _, q := range results {
		if q.Valid {
			observed++
		}
	}
	return CompareCount(observed, predicted)
}

// CompareCount relates an already-counted observation to predicted.
// The ratio is 0 when no prediction is configured.
func CompareCount(observed int, predicted float64) Comparison {
	ratio := 0.0
	if predicted != 0 {
		ratio = float64(observed) / predicted
	}
	return Comparison{Observed: observed, Predicted: predicted, Ratio: ratio}
}

// Options tunes a Verifier.
type Options struct {
	// Workers is the number of concurrent checkers; 0 means GOMAXPROCS.
	Workers int

	// Progress is the minimum interval between progress log lines;
	// 0 disables progress logging.
	Progress time.Duration

	// Metrics receives per-candidate and per-quadruplet events;
	// nil means no collection.
	Metrics MetricsCollector
}

// Verifier runs quadruplet checks across a worker pool.
type Verifier struct {
	pol     *qpoly.Polynomial
	tester  *primality.Tester
	opts    Options
	logger  *logrus.Logger
	limiter *rate.Limiter
}

// NewVerifier builds a Verifier for the given polynomial and tester.
func NewVerifier(pol *qpoly.Polynomial, tester *primality.Tester, logger *logrus.Logger, opts Options) *Verifier {
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsCollector{}
	}
	v := &Verifier{pol: pol, tester: tester, opts: opts, logger: logger}
	if opts.Progress > 0 {
		v.limiter = rate.NewLimiter(rate.Every(opts.Progress), 1)
	}
	return v
}

// VerifyAll checks every claimed start concurrently and returns the
// results ordered by start. Each claim is independent, so the work is
// sharded over the configured number of workers. The context cancels
// outstanding work; on cancellation the partial results are discarded
// and the context error is returned.
func (v *Verifier) VerifyAll(ctx context.Context, starts []uint64) ([]Quadruplet, error) {
	if len(starts) == 0 {
		return nil, nil
	}

	workers := v.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(starts) {
		workers = len(starts)
	}
	v.logger.Debugf("verifying %d quadruplet claims on %d workers", len(starts), workers)

	type job struct {
		idx   int
		start uint64
	}

	results := make([]Quadruplet, len(starts))
	jobs := make(chan job)
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i, s := range starts {
			select {
			case jobs <- job{idx: i, start: s}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		id := w
		g.Go(func() error {
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					v.logger.Debugf("verify worker %d stopping: %v", id, err)
					return err
				}

				began := time.Now()
				q := CheckQuadruplet(v.pol, v.tester, j.start)
				v.record(q, time.Since(began))
				results[j.idx] = q

				completed := done.Add(1)
				if v.limiter != nil && v.limiter.Allow() {
					v.logger.Infof("verified %d/%d quadruplets (start=%d valid=%v)",
						completed, len(starts), j.start, q.Valid)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Start < results[j].Start })
	return results, nil
}

func (v *Verifier) record(q Quadruplet, elapsed time.Duration) {
	// A rejected start of 0 carries no evaluated candidates.
	for _, c := range q.Members {
		if c.Verdict != "" {
			v.opts.Metrics.RecordCandidate(c.Verdict)
		}
	}
	for _, c := range q.Boundaries {
		if c.Verdict != "" {
			v.opts.Metrics.RecordCandidate(c.Verdict)
		}
	}
	v.opts.Metrics.RecordQuadruplet(q.Valid, elapsed)
}
