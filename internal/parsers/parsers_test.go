package parsers

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rhartert/yass/internal/sat"
)

type fakeSolver struct {
	vars    int
	clauses [][]sat.Literal
}

func (f *fakeSolver) AddVariable() sat.Variable {
	v := sat.Variable(f.vars)
	f.vars++
	return v
}

func (f *fakeSolver) AddClause(c []sat.Literal) bool {
	f.clauses = append(f.clauses, c)
	return true
}

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.cnf")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadDIMACS(t *testing.T) {
	path := writeTempFile(t, "c a trivial instance\np cnf 3 2\n1 2 0\n-2 3 0\n")

	solver := &fakeSolver{}
	result, err := LoadDIMACS(path, false, false, solver)
	if err != nil {
		t.Fatalf("LoadDIMACS: %v", err)
	}
	if result.Variables != 3 || result.Clauses != 2 {
		t.Errorf("LoadResult = %+v, want {Variables: 3, Clauses: 2}", result)
	}
	if solver.vars != 3 {
		t.Errorf("solver received %d variables, want 3", solver.vars)
	}
	if len(solver.clauses) != 2 {
		t.Fatalf("solver received %d clauses, want 2", len(solver.clauses))
	}
	want := []sat.Literal{sat.PositiveLiteral(0), sat.PositiveLiteral(1)}
	if !literalsEqual(solver.clauses[0], want) {
		t.Errorf("clause[0] = %v, want %v", solver.clauses[0], want)
	}
}

func TestLoadDIMACSStrictRejectsMismatchedClauseCount(t *testing.T) {
	path := writeTempFile(t, "p cnf 2 2\n1 2 0\n")

	_, err := LoadDIMACS(path, false, true, &fakeSolver{})
	if err == nil {
		t.Fatal("strict LoadDIMACS accepted a file declaring more clauses than it contains")
	}
}

func TestLoadDIMACSStrictAllowsDeclaredVarsAtLeastObserved(t *testing.T) {
	path := writeTempFile(t, "p cnf 5 1\n1 2 0\n")

	result, err := LoadDIMACS(path, false, true, &fakeSolver{})
	if err != nil {
		t.Fatalf("strict LoadDIMACS rejected declared-vars >= observed: %v", err)
	}
	if result.Variables != 5 {
		t.Errorf("Variables = %d, want 5", result.Variables)
	}
}

func TestLoadDIMACSStrictRejectsUndeclaredVariable(t *testing.T) {
	path := writeTempFile(t, "p cnf 1 1\n1 2 0\n")

	_, err := LoadDIMACS(path, false, true, &fakeSolver{})
	if err == nil {
		t.Fatal("strict LoadDIMACS accepted a clause referencing a variable beyond the declared count")
	}
}

func TestWriteResultSatisfiable(t *testing.T) {
	var buf bytes.Buffer
	result := sat.Result{
		Status: sat.StatusSatisfiable,
		Model:  []sat.LBool{sat.True, sat.False},
	}
	if err := WriteResult(&buf, result); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	want := "SATISFIABLE\n1 -2 0\n"
	if buf.String() != want {
		t.Errorf("WriteResult output = %q, want %q", buf.String(), want)
	}
}

func TestWriteResultUnsatisfiable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResult(&buf, sat.Result{Status: sat.StatusUnsatisfiable}); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if buf.String() != "UNSATISFIABLE\n" {
		t.Errorf("WriteResult output = %q, want %q", buf.String(), "UNSATISFIABLE\n")
	}
}

func TestWriteResultIndeterminate(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResult(&buf, sat.Result{Status: sat.StatusIndeterminate}); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if buf.String() != "INDETERMINATE\n" {
		t.Errorf("WriteResult output = %q, want %q", buf.String(), "INDETERMINATE\n")
	}
}

func TestWriteDIMACSRoundTrip(t *testing.T) {
	clauses := [][]sat.Literal{
		{sat.PositiveLiteral(0), sat.NegativeLiteral(1)},
		{sat.PositiveLiteral(1)},
	}
	var buf bytes.Buffer
	if err := WriteDIMACS(&buf, 2, clauses); err != nil {
		t.Fatalf("WriteDIMACS: %v", err)
	}

	solver := &fakeSolver{}
	path := writeTempFile(t, buf.String())
	result, err := LoadDIMACS(path, false, false, solver)
	if err != nil {
		t.Fatalf("re-parsing WriteDIMACS output: %v", err)
	}
	if result.Variables != 2 || result.Clauses != 2 {
		t.Errorf("round-tripped LoadResult = %+v, want {2, 2}", result)
	}
}

func literalsEqual(a, b []sat.Literal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
