// Package config gathers the CLI-tunable solver parameters of spec.md §6
// into one struct, populated by cmd/msat/main.go's flag wiring and handed
// straight to internal/sat.NewSolver / internal/simp.NewSimpSolver —
// grounded on the teacher's main.go, which instead hardcodes
// sat.NewDefaultSolver(); this expansion generalizes that single call site
// into the full tunable surface spec.md §6 names.
package config

import (
	"github.com/rhartert/yass/internal/sat"
	"github.com/rhartert/yass/internal/simp"
)

// CLIConfig is everything cmd/msat/main.go needs beyond the solver
// parameters themselves: input/output paths and the run-mode flags.
type CLIConfig struct {
	InputFile  string
	OutputFile string // "" means stdout
	DIMACSFile string // --dimacs: dump path, requires Solve == false
	Gzipped    bool
	Strict     bool
	Verbosity  int
	UseCore    bool // --core: skip the simplifying preprocessor entirely
	Preprocess bool // --[no-]pre: run elimination before solving (simp mode only)
	Solve      bool // --[no-]solve

	Solver sat.Options
	Simp   simp.Settings
}

// DefaultCLIConfig mirrors the published MiniSat/SimpSolver command-line
// defaults.
var DefaultCLIConfig = CLIConfig{
	Strict:     false,
	Verbosity:  1,
	UseCore:    false,
	Preprocess: true,
	Solve:      true,
	Solver:     sat.DefaultOptions,
	Simp:       simp.DefaultSettings,
}

// NewSimpConfig builds the simp.SimpConfig a simplifying run needs from the
// CLI configuration.
func (c CLIConfig) NewSimpConfig() simp.SimpConfig {
	return simp.SimpConfig{
		Core:        c.Solver,
		Restart:     sat.DefaultRestartStrategy,
		Learning:    sat.DefaultLearningStrategy,
		Simp:        c.Simp,
		ExtendModel: true,
	}
}
