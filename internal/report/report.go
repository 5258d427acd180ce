// Package report assembles the results of one analysis or verification
// run into a single exportable record, persists the JSON and CSV
// artifacts and renders the fixed-width console summary.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pierrec/lz4/v4"
	"github.com/sirupsen/logrus"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/cluster"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/config"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/residue"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/sequence"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/stats"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/verify"
)

// DatasetInfo identifies the input of a run.
type DatasetInfo struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Min    uint64 `json:"min"`
	Max    uint64 `json:"max"`
}

// Report is the complete record of one run. Sections not produced by
// the run stay nil and are omitted from exports; an analysis run fills
// the density, cluster, gap and residue sections, a verification run
// fills the quadruplet section.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Hostname    string    `json:"hostname"`
	Exponent    uint64    `json:"exponent"`
	Modulus     uint64    `json:"modulus,omitempty"`

	Dataset *DatasetInfo `json:"dataset,omitempty"`

	Densities       []stats.RangeDensity              `json:"densities,omitempty"`
	Fit             *stats.Fit                        `json:"bateman_horn_fit,omitempty"`
	Runs            []cluster.Run                     `json:"runs,omitempty"`
	LengthHistogram map[int]int                       `json:"length_histogram,omitempty"`
	Cumulative      map[int][]cluster.CumulativePoint `json:"cumulative_tuples,omitempty"`
	Gaps            *stats.Summary                    `json:"gap_summary,omitempty"`
	Residues        *residue.Classification           `json:"residues,omitempty"`
	Distribution    []residue.ClassCount              `json:"residue_distribution,omitempty"`

	Quadruplets []verify.Quadruplet `json:"quadruplets,omitempty"`
	Comparison  *verify.Comparison  `json:"hardy_littlewood,omitempty"`
}

// New returns an empty report stamped with a fresh run id.
func New(exponent uint64) *Report {
	return &Report{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Hostname:    hostnameSafe(),
		Exponent:    exponent,
	}
}

// Build runs the full analysis pipeline over seq and collects every
// section. A residue verification failure still yields the complete
// report; the invariant error is returned alongside it so the caller
// can surface the failure in its exit status.
func Build(cfg *config.Config, seq *sequence.Sequence, source string) (*Report, error) {
	r := New(cfg.Polynomial.Exponent)
	r.Modulus = cfg.Residue.Modulus
	r.Dataset = &DatasetInfo{
		Source: source,
		Count:  seq.Len(),
		Min:    seq.Min(),
		Max:    seq.Max(),
	}

	r.Densities = stats.DensityByRange(seq, cfg.Density.Ranges, cfg.Density.Scale)
	if fit, err := stats.BatemanHornFit(r.Densities, cfg.Polynomial.Exponent, cfg.Density.FitMinCount); err == nil {
		r.Fit = &fit
	}

	r.Runs = cluster.Runs(seq)
	r.LengthHistogram = cluster.LengthHistogram(r.Runs)
	if len(cfg.Cluster.TupleSizes) > 0 && len(cfg.Cluster.TupleGrid) > 0 {
		r.Cumulative = make(map[int][]cluster.CumulativePoint, len(cfg.Cluster.TupleSizes))
		for _, k := range cfg.Cluster.TupleSizes {
			r.Cumulative[k] = cluster.CumulativeTuples(seq, k, cfg.Cluster.TupleGrid)
		}
	}

	if summary, err := stats.GapSummary(seq.Gaps()); err == nil {
		r.Gaps = &summary
	}

	field := residue.NewField(cfg.Residue.Modulus, cfg.Polynomial.Exponent)
	classification, err := field.Classify(seq)
	r.Residues = &classification
	r.Distribution = field.Distribution(seq)

	cmp := verify.CompareCount(r.LengthHistogram[4], cfg.Verify.HardyLittlewoodPrediction)
	r.Comparison = &cmp

	return r, err
}

// Writer persists report artifacts under the configured output
// directory.
type Writer struct {
	dir      string
	prefix   string
	compress bool
	logger   *logrus.Logger
}

// NewWriter creates the output directory if needed.
func NewWriter(cfg *config.OutputConfig, logger *logrus.Logger) (*Writer, error) {
	if err := os.MkdirAll(cfg.OutputDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{
		dir:      cfg.OutputDirectory,
		prefix:   cfg.FilenamePrefix,
		compress: cfg.CompressOutput,
		logger:   logger,
	}, nil
}

// SaveJSON writes the indented report record and returns its path. An
// existing report is renamed to .backup first, never overwritten in
// place.
func (w *Writer) SaveJSON(r *Report) (string, error) {
	path := filepath.Join(w.dir, w.prefix+"_report.json")

	if _, err := os.Stat(path); err == nil {
		backup := path + ".backup"
		if err := os.Rename(path, backup); err != nil {
			w.logger.Warnf("Failed to create backup: %v", err)
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// SaveCSV writes the runs, densities and residue distribution tables,
// skipping sections the report does not carry, and returns the paths
// written. With compression enabled each table is an lz4 stream and
// the filename gains a .lz4 suffix.
func (w *Writer) SaveCSV(r *Report) ([]string, error) {
	var paths []string

	if len(r.Runs) > 0 {
		rows := make([][]string, 0, len(r.Runs))
		for _, run := range r.Runs {
			rows = append(rows, []string{
				strconv.FormatUint(run.Start, 10),
				strconv.Itoa(run.Length),
			})
		}
		path, err := w.writeCSV(w.prefix+"_runs.csv", []string{"start", "length"}, rows)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if len(r.Densities) > 0 {
		rows := make([][]string, 0, len(r.Densities))
		for _, d := range r.Densities {
			rows = append(rows, []string{
				strconv.FormatUint(d.Low, 10),
				strconv.FormatUint(d.High, 10),
				strconv.Itoa(d.Count),
				strconv.FormatFloat(d.Density, 'f', 1, 64),
			})
		}
		path, err := w.writeCSV(w.prefix+"_density.csv",
			[]string{"low", "high", "count", "density_per_million"}, rows)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if len(r.Distribution) > 0 {
		rows := make([][]string, 0, len(r.Distribution))
		for _, c := range r.Distribution {
			rows = append(rows, []string{
				strconv.FormatUint(c.Class, 10),
				strconv.Itoa(c.Count),
				strconv.FormatBool(c.Forbidden),
			})
		}
		path, err := w.writeCSV(w.prefix+"_residues.csv",
			[]string{"class", "count", "forbidden"}, rows)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) (string, error) {
	path := filepath.Join(w.dir, name)
	if w.compress {
		path += ".lz4"
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	var out io.Writer = f
	var zw *lz4.Writer
	if w.compress {
		zw = lz4.NewWriter(f)
		out = zw
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", name, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return "", fmt.Errorf("failed to close compressed stream: %w", err)
		}
	}
	return path, nil
}

const bannerWidth = 70

func banner(w io.Writer, title string) {
	line := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, line)
}

// Display renders the analysis sections of r as the fixed-width
// console report.
func Display(w io.Writer, r *Report) {
	banner(w, fmt.Sprintf("PRIME POLYNOMIAL Q(n) = n^%d - (n-1)^%d ANALYSIS", r.Exponent, r.Exponent))

	if r.Dataset != nil {
		fmt.Fprintf(w, "\nLoaded %s prime-producing n values\n", commas(uint64(r.Dataset.Count)))
		fmt.Fprintf(w, "Range: n in [%s, %s]\n", commas(r.Dataset.Min), commas(r.Dataset.Max))
	}

	if len(r.Densities) > 0 {
		fmt.Fprintln(w)
		banner(w, "DENSITY BY RANGE")
		for _, d := range r.Densities {
			interval := fmt.Sprintf("[%s, %s)", commas(d.Low), commas(d.High))
			fmt.Fprintf(w, "  %-30s: %10s primes, %10s /million\n",
				interval, commas(uint64(d.Count)), humanize.FormatFloat("#,###.#", d.Density))
		}
		if r.Fit != nil {
			fmt.Fprintf(w, "\n  Fit: C/(%d ln n), C = %.0f\n", r.Fit.Exponent-1, r.Fit.C)
		}
	}

	if r.LengthHistogram != nil {
		fmt.Fprintln(w)
		banner(w, "CLUSTERING ANALYSIS")
		fivePlus := 0
		for length, count := range r.LengthHistogram {
			if length >= 5 {
				fivePlus += count
			}
		}
		fmt.Fprintf(w, "  2-tuples (pairs):      %10s\n", commas(uint64(r.LengthHistogram[2])))
		fmt.Fprintf(w, "  3-tuples (triples):    %10s\n", commas(uint64(r.LengthHistogram[3])))
		fmt.Fprintf(w, "  4-tuples (quadruplets):%10s\n", commas(uint64(r.LengthHistogram[4])))
		fmt.Fprintf(w, "  5+ tuples:             %10s\n", commas(uint64(fivePlus)))

		fmt.Fprintln(w, "\n  Quadruplet locations:")
		for _, run := range r.Runs {
			if run.Length == 4 {
				fmt.Fprintf(w, "    n = %s\n", commas(run.Start))
			}
		}
	}

	if r.Gaps != nil {
		fmt.Fprintln(w)
		banner(w, "GAP ANALYSIS")
		fmt.Fprintf(w, "  Median gap: %.0f\n", r.Gaps.Median)
		fmt.Fprintf(w, "  Mean gap:   %.1f\n", r.Gaps.Mean)
		fmt.Fprintf(w, "  Max gap:    %s\n", commas(r.Gaps.Max))
		fmt.Fprintf(w, "  Gap = 1:    %s occurrences\n", commas(uint64(r.Gaps.Ones)))
	}

	if r.Residues != nil {
		fmt.Fprintln(w)
		banner(w, fmt.Sprintf("RESIDUE ANALYSIS MOD %d", r.Modulus))
		fmt.Fprintf(w, "  Forbidden residue classes: %d\n", r.Residues.ForbiddenClasses)
		fmt.Fprintf(w, "  Primes in forbidden classes: %d\n", r.Residues.InForbidden)
		fmt.Fprintf(w, "  Small-prime immunity verification: %s\n", r.Residues.Verification)
	}

	if r.Comparison != nil {
		fmt.Fprintln(w)
		banner(w, "HARDY-LITTLEWOOD COMPARISON")
		fmt.Fprintf(w, "  Observed quadruplets:  %d\n", r.Comparison.Observed)
		fmt.Fprintf(w, "  Predicted quadruplets: %.2f\n", r.Comparison.Predicted)
		fmt.Fprintf(w, "  Ratio:                 %.2f\n", r.Comparison.Ratio)
		fmt.Fprintf(w, "  Status:                %s\n", agreement(r.Comparison.Ratio))
	}

	fmt.Fprintln(w)
	banner(w, "ANALYSIS COMPLETE")
}

// DisplayVerification renders per-claim verdicts with boundary checks,
// then the summary block with the Hardy-Littlewood comparison.
func DisplayVerification(w io.Writer, exponent uint64, results []verify.Quadruplet, cmp *verify.Comparison) {
	line := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "PRIME QUADRUPLET VERIFICATION")
	fmt.Fprintf(w, "Q(n) = n^%d - (n-1)^%d\n", exponent, exponent)
	fmt.Fprintln(w, line)

	allValid := len(results) > 0
	for i, q := range results {
		fmt.Fprintf(w, "\n%s\n", line)
		fmt.Fprintf(w, "QUADRUPLET S-%d\n", i+1)
		fmt.Fprintln(w, line)

		fmt.Fprintf(w, "\nVerifying quadruplet starting at n = %s\n", commas(q.Start))
		fmt.Fprintln(w, strings.Repeat("-", 60))

		if q.Start == 0 {
			fmt.Fprintln(w, "  Rejected: a quadruplet cannot start at n = 0")
			fmt.Fprintln(w, "\n  Quadruplet valid: NO")
			allValid = false
			continue
		}

		for _, c := range q.Members {
			fmt.Fprintf(w, "  Q(%s) = %d-digit number: %s\n", commas(c.N), c.Digits, c.Verdict)
		}

		fmt.Fprintln(w, "\n  Boundary check:")
		for _, c := range q.Boundaries {
			fmt.Fprintf(w, "    Q(%s): %s (should be composite)\n", commas(c.N), c.Verdict)
		}

		verdict := "YES"
		if !q.Valid {
			verdict = "NO"
			allValid = false
		}
		fmt.Fprintf(w, "\n  Quadruplet valid: %s\n", verdict)
	}

	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Total quadruplets verified: %d\n", len(results))
	if allValid {
		fmt.Fprintln(w, "All valid: YES")
	} else {
		fmt.Fprintln(w, "All valid: NO")
	}

	if cmp != nil {
		fmt.Fprintln(w, "\nHardy-Littlewood Comparison:")
		fmt.Fprintf(w, "  Observed:  %d\n", cmp.Observed)
		fmt.Fprintf(w, "  Predicted: %.2f\n", cmp.Predicted)
		fmt.Fprintf(w, "  Ratio:     %.2f\n", cmp.Ratio)
		fmt.Fprintf(w, "  Status:    %s\n", agreement(cmp.Ratio))
	}
}

// DisplayDerivation prints the roots of unity of the field and the
// residue classes they forbid. Needs no dataset.
func DisplayDerivation(w io.Writer, field *residue.Field) {
	banner(w, fmt.Sprintf("FORBIDDEN RESIDUE DERIVATION MOD %d", field.P))

	mappings := field.Derivation()
	fmt.Fprintf(w, "\n  Roots of x^%d = 1 (mod %d), excluding x = 1: %d\n", field.E, field.P, len(mappings))
	fmt.Fprintln(w, "\n  root r -> forbidden n = r/(r-1) mod p:")
	for _, m := range mappings {
		fmt.Fprintf(w, "    r = %3d -> n = %3d\n", m.Root, m.Forbidden)
	}

	fmt.Fprintf(w, "\n  Distinct forbidden classes: %d\n", len(field.Forbidden()))
}

func agreement(ratio float64) string {
	if ratio >= 0.75 && ratio <= 1.25 {
		return "EXCELLENT AGREEMENT"
	}
	return "DISAGREEMENT"
}

func commas(v uint64) string {
	return humanize.Comma(int64(v))
}

func hostnameSafe() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
