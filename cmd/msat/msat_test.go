package main

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rhartert/yass/internal/parsers"
	"github.com/rhartert/yass/internal/sat"
	"github.com/rhartert/yass/internal/simp"
)

// This suite checks that both the core solver and the simplifying
// preprocessor find the exact set of models for every instance under
// testdata, grounded on the teacher's yass_test.go TestSolveAll — reworked
// for the Result-based Solve()/SolveLimited() API in place of the teacher's
// incremental s.Models field.

const testdataDir = "testdata"

type testCase struct {
	instanceName string
	instanceFile string
	modelsFile   string
}

func listTestCases(dir string) ([]testCase, error) {
	var cases []testCase
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".cnf") {
			return nil
		}
		cases = append(cases, testCase{
			instanceName: d.Name(),
			instanceFile: path,
			modelsFile:   path + ".models",
		})
		return nil
	})
	return cases, err
}

func toString(model []bool) string {
	s := make([]byte, 0, len(model))
	for _, b := range model {
		if b {
			s = append(s, 1)
		} else {
			s = append(s, 0)
		}
	}
	return string(s)
}

func toSet(models [][]bool) map[string]struct{} {
	set := map[string]struct{}{}
	for _, m := range models {
		set[toString(m)] = struct{}{}
	}
	return set
}

// banModel adds a clause forbidding the given model, the standard trick for
// enumerating every model of an instance by repeated solving.
func banModel(model []bool) []sat.Literal {
	clause := make([]sat.Literal, len(model))
	for i, b := range model {
		if b {
			clause[i] = sat.NegativeLiteral(sat.Variable(i))
		} else {
			clause[i] = sat.PositiveLiteral(sat.Variable(i))
		}
	}
	return clause
}

func solveAllCore(s *sat.Solver) [][]bool {
	var models [][]bool
	for {
		result := s.Solve()
		if result.Status != sat.StatusSatisfiable {
			return models
		}
		model := sat.ModelToBools(result.Model)
		models = append(models, model)
		if !s.AddClause(banModel(model)) {
			return models
		}
	}
}

// solveAllSimp enumerates models starting from s, then re-solves with a
// fresh simplifying solver loaded from instanceFile plus every ban so far.
// Eliminated variables take their values from model extension rather than
// from search, so a ban added to the solver that eliminated them would not
// exclude the model it was built from.
func solveAllSimp(s *simp.SimpSolver, instanceFile string) ([][]bool, error) {
	var models [][]bool
	var bans [][]sat.Literal
	for {
		result := s.Solve()
		if result.Status != sat.StatusSatisfiable {
			return models, nil
		}
		model := sat.ModelToBools(result.Model)
		models = append(models, model)
		bans = append(bans, banModel(model))

		s = simp.NewSimpSolver(simp.DefaultSimpConfig)
		if _, err := parsers.LoadDIMACS(instanceFile, false, false, s); err != nil {
			return models, err
		}
		for _, ban := range bans {
			if !s.AddClause(ban) {
				return models, nil
			}
		}
	}
}

func TestSolveAllCore(t *testing.T) {
	testCases, err := listTestCases(testdataDir)
	if err != nil {
		t.Fatalf("listing test cases: %s", err)
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.instanceName, func(t *testing.T) {
			t.Parallel()

			want, err := parsers.ReadModels(tc.modelsFile)
			if err != nil {
				t.Fatalf("reading models: %s", err)
			}

			s := sat.NewSolver(sat.DefaultOptions, sat.DefaultRestartStrategy, sat.DefaultLearningStrategy)
			if _, err := parsers.LoadDIMACS(tc.instanceFile, false, false, s); err != nil {
				t.Fatalf("loading instance: %s", err)
			}

			got := solveAllCore(s)
			if len(got) != len(want) {
				t.Errorf("found %d models, want %d", len(got), len(want))
			}
			if !cmp.Equal(toSet(got), toSet(want)) {
				t.Errorf("model set mismatch: got %v, want %v", toSet(got), toSet(want))
			}
		})
	}
}

func TestSolveAllSimp(t *testing.T) {
	testCases, err := listTestCases(testdataDir)
	if err != nil {
		t.Fatalf("listing test cases: %s", err)
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.instanceName, func(t *testing.T) {
			t.Parallel()

			want, err := parsers.ReadModels(tc.modelsFile)
			if err != nil {
				t.Fatalf("reading models: %s", err)
			}

			s := simp.NewSimpSolver(simp.DefaultSimpConfig)
			if _, err := parsers.LoadDIMACS(tc.instanceFile, false, false, s); err != nil {
				t.Fatalf("loading instance: %s", err)
			}
			if !s.Eliminate(false) {
				if len(want) != 0 {
					t.Errorf("Eliminate reported unsatisfiable, want %d models", len(want))
				}
				return
			}

			got, err := solveAllSimp(s, tc.instanceFile)
			if err != nil {
				t.Fatalf("reloading instance: %s", err)
			}
			if len(got) != len(want) {
				t.Errorf("found %d models, want %d", len(got), len(want))
			}
			if !cmp.Equal(toSet(got), toSet(want)) {
				t.Errorf("model set mismatch: got %v, want %v", toSet(got), toSet(want))
			}
		})
	}
}
