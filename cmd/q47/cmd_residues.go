package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/report"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/residue"
)

var residuesCmd = &cobra.Command{
	Use:   "residues",
	Short: "Print the forbidden residue class derivation",
	Long: `Derives the roots of x^E = 1 mod P and the residue classes they
forbid, from configuration alone. No dataset is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResidues()
	},
}

func runResidues() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	report.DisplayDerivation(os.Stdout, residue.NewField(cfg.Residue.Modulus, cfg.Polynomial.Exponent))
	return nil
}
