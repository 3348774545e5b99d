// Package parsers wraps github.com/rhartert/dimacs to load CNF instances
// into a solver and to write back the textual result/model format spec.md
// §6 names, grounded on the teacher's parsers/parsers.go (gzip-aware file
// opening, the Builder-over-a-solver pattern) and extended with the strict
// header-count check and textual result writer spec.md §6/§7 add.
package parsers

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/rhartert/dimacs"
	"github.com/rhartert/yass/internal/sat"
)

// SATSolver is the subset of internal/sat.Solver and internal/simp.SimpSolver
// a CNF load needs: grow the variable set and add clauses at the ground
// level. Both concrete types satisfy this without an adapter, the same
// "wrap and intercept" shape the teacher's own parsers.go relies on.
type SATSolver interface {
	AddVariable() sat.Variable
	AddClause([]sat.Literal) bool
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			file.Close()
			return nil, err
		}
	}
	return rc, nil
}

// LoadResult reports the header counts declared in the file's "p cnf"
// line, for the CLI's startup banner (spec.md §6's "c variables"/"c
// clauses" convention, also present in the teacher's main.go).
type LoadResult struct {
	Variables int
	Clauses   int
}

// LoadDIMACS parses filename (optionally gzip-wrapped) and loads its CNF
// formula into solver. In strict mode, the declared header counts must
// match what was actually observed exactly for clauses, and the declared
// variable count must be at least the highest variable index referenced
// (spec.md §6, "allow declared ≥ observed variables").
func LoadDIMACS(filename string, gzipped bool, strict bool, solver SATSolver) (LoadResult, error) {
	r, err := reader(filename, gzipped)
	if err != nil {
		return LoadResult{}, fmt.Errorf("parsers: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &builder{solver: solver, strict: strict}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return LoadResult{}, fmt.Errorf("parsers: parsing %q: %w", filename, err)
	}
	if strict {
		if b.observedClauses != b.declaredClauses {
			return LoadResult{}, fmt.Errorf("parsers: %q declared %d clauses, found %d", filename, b.declaredClauses, b.observedClauses)
		}
		if b.maxVar > b.declaredVars {
			return LoadResult{}, fmt.Errorf("parsers: %q declared %d variables, found variable %d", filename, b.declaredVars, b.maxVar)
		}
	}
	return LoadResult{Variables: b.declaredVars, Clauses: b.declaredClauses}, nil
}

// builder adapts a SATSolver to dimacs.Builder, translating DIMACS's
// 1-based signed integers into sat.Literal as it goes.
type builder struct {
	solver SATSolver
	strict bool

	declaredVars    int
	declaredClauses int
	observedClauses int
	maxVar          int
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("unsupported problem type %q", problem)
	}
	b.declaredVars = nVars
	b.declaredClauses = nClauses
	for i := 0; i < nVars; i++ {
		b.solver.AddVariable()
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]sat.Literal, len(tmpClause))
	for i, l := range tmpClause {
		v := l
		if v < 0 {
			v = -v
		}
		if v > b.maxVar {
			b.maxVar = v
		}
		if l < 0 {
			clause[i] = sat.NegativeLiteral(sat.Variable(-l - 1))
		} else {
			clause[i] = sat.PositiveLiteral(sat.Variable(l - 1))
		}
	}
	b.observedClauses++
	b.solver.AddClause(clause)
	return nil
}

func (b *builder) Comment(_ string) error {
	return nil
}

// ReadModels returns the list of models contained in a DIMACS-shaped model
// file (one "clause" line per model, signed literals, `0`-terminated),
// used by the test harness to check search results against known-good
// fixtures, grounded on the teacher's parsers.go ReadModels.
func ReadModels(filename string) ([][]bool, error) {
	r, err := reader(filename, false)
	if err != nil {
		return nil, fmt.Errorf("parsers: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return nil, fmt.Errorf("parsers: parsing %q: %w", filename, err)
	}
	return b.models, nil
}

type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return fmt.Errorf("model files should not have a problem line")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil
}

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}

// WriteResult writes the textual result summary spec.md §6 defines:
// UNSATISFIABLE, INDETERMINATE, or SATISFIABLE followed by a line of
// 1-based signed literals ending in 0.
func WriteResult(w io.Writer, result sat.Result) error {
	switch result.Status {
	case sat.StatusSatisfiable:
		if _, err := fmt.Fprintln(w, "SATISFIABLE"); err != nil {
			return err
		}
		for v, lb := range result.Model {
			sign := 1
			if lb != sat.True {
				sign = -1
			}
			if _, err := fmt.Fprintf(w, "%d ", sign*(v+1)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(w, "0")
		return err
	case sat.StatusUnsatisfiable:
		_, err := fmt.Fprintln(w, "UNSATISFIABLE")
		return err
	default:
		_, err := fmt.Fprintln(w, "INDETERMINATE")
		return err
	}
}

// WriteDIMACS re-serializes a solver's live clauses back to DIMACS text, for
// the `--dimacs <path>` dump-only mode (spec.md §6).
func WriteDIMACS(w io.Writer, nVars int, clauses [][]sat.Literal) error {
	if _, err := fmt.Fprintf(w, "p cnf %d %d\n", nVars, len(clauses)); err != nil {
		return err
	}
	for _, c := range clauses {
		for _, lit := range c {
			n := int(lit.VarID()) + 1
			if !lit.IsPositive() {
				n = -n
			}
			if _, err := fmt.Fprintf(w, "%d ", n); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "0"); err != nil {
			return err
		}
	}
	return nil
}
