// Command msat is a DIMACS CNF SAT solver front end, built around
// internal/sat and internal/simp, grounded on the teacher's main.go (flag
// wiring, pprof hooks, the "c ..." startup banner) and extended to the full
// tunable surface spec.md §6 names.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/rhartert/yass/internal/config"
	"github.com/rhartert/yass/internal/parsers"
	"github.com/rhartert/yass/internal/sat"
	"github.com/rhartert/yass/internal/simp"
)

var (
	flagCPUProfile = flag.Bool("cpuprof", false, "save a pprof CPU profile to cpuprof")
	flagMemProfile = flag.Bool("memprof", false, "save a pprof heap profile to memprof")

	flagVerb   = flag.Int("verb", 1, "verbosity level {0,1,2}")
	flagCore   = flag.Bool("core", false, "use the core CDCL solver, skipping preprocessing entirely")
	flagStrict = flag.Bool("strict", false, "require the DIMACS header counts to match the file exactly")

	flagPre   = flag.Bool("pre", true, "run variable elimination/subsumption before solving")
	flagNoPre = flag.Bool("no-pre", false, "disable --pre")

	flagSolve   = flag.Bool("solve", true, "run the search after preprocessing")
	flagNoSolve = flag.Bool("no-solve", false, "disable --solve (requires --dimacs)")
	flagDIMACS  = flag.String("dimacs", "", "dump the preprocessed instance as DIMACS to this path (requires --no-solve)")

	flagVarDecay = flag.Float64("var-decay", sat.DefaultOptions.VarDecay, "variable activity decay factor")
	flagClaDecay = flag.Float64("cla-decay", sat.DefaultOptions.ClaDecay, "learnt-clause activity decay factor")
	flagRndFreq  = flag.Float64("rnd-freq", sat.DefaultOptions.RandomVarFreq, "frequency of fully random decisions")
	flagRndSeed  = flag.Float64("rnd-seed", sat.DefaultOptions.RandomSeed, "random number generator seed")

	flagCCMinMode    = flag.Int("ccmin-mode", int(sat.DefaultOptions.CCMinMode), "learnt clause minimization mode {0,1,2}")
	flagPhaseSaving  = flag.Int("phase-saving", int(sat.DefaultOptions.PhaseSaving), "phase saving mode {0,1,2}")
	flagRndInit      = flag.Bool("rnd-init", false, "pick a random polarity on every decision instead of the saved phase")
	flagNoRndInit    = flag.Bool("no-rnd-init", false, "disable --rnd-init")

	flagLuby   = flag.Bool("luby", true, "use the Luby restart sequence instead of geometric")
	flagNoLuby = flag.Bool("no-luby", false, "disable --luby")
	flagRFirst = flag.Float64("rfirst", sat.DefaultRestartStrategy.RestartFirst, "conflicts before the first restart")
	flagRInc   = flag.Float64("rinc", sat.DefaultRestartStrategy.RestartInc, "restart interval growth factor")

	flagGCFrac      = flag.Float64("gc-frac", sat.DefaultOptions.GCFrac, "wasted arena fraction that triggers a garbage collection")
	flagMinLearnts  = flag.Int("min-learnts", sat.DefaultLearningStrategy.MinLearntsLim, "floor on the learnt-clause ceiling")

	flagRCheck   = flag.Bool("rcheck", false, "reject clauses already implied by unit propagation")
	flagNoRCheck = flag.Bool("no-rcheck", false, "disable --rcheck")

	flagAsymm   = flag.Bool("asymm", simp.DefaultSettings.UseAsymm, "shrink clauses by asymmetric branching (simp mode only)")
	flagNoAsymm = flag.Bool("no-asymm", false, "disable --asymm")
	flagElim    = flag.Bool("elim", simp.DefaultSettings.UseElim, "perform variable elimination (simp mode only)")
	flagNoElim  = flag.Bool("no-elim", false, "disable --elim")
	flagGrow    = flag.Int("grow", simp.DefaultSettings.Grow, "allow an elimination step to grow the clause count by this many")
	flagClLim   = flag.Int("cl-lim", simp.DefaultSettings.ClauseLim, "skip eliminating a variable if a resolvent would exceed this many literals, -1 for no limit")
	flagSubLim  = flag.Int("sub-lim", simp.DefaultSettings.SubsumptionLim, "skip subsumption checks against clauses this large or larger, -1 for no limit")
	flagSimpGC  = flag.Float64("simp-gc-frac", simp.DefaultSettings.SimpGarbageFrac, "wasted arena fraction that triggers a GC during elimination")
)

func parseConfig() (config.CLIConfig, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return config.CLIConfig{}, fmt.Errorf("missing instance file")
	}

	pre := *flagPre && !*flagNoPre
	doSolve := *flagSolve && !*flagNoSolve
	if *flagDIMACS != "" && doSolve {
		return config.CLIConfig{}, fmt.Errorf("--dimacs requires --no-solve")
	}

	cfg := config.DefaultCLIConfig
	cfg.InputFile = flag.Arg(0)
	cfg.Gzipped = strings.HasSuffix(cfg.InputFile, ".gz")
	if flag.NArg() > 1 {
		cfg.OutputFile = flag.Arg(1)
	}
	cfg.DIMACSFile = *flagDIMACS
	cfg.Strict = *flagStrict
	cfg.Verbosity = *flagVerb
	cfg.UseCore = *flagCore
	cfg.Preprocess = pre
	cfg.Solve = doSolve

	cfg.Solver.VarDecay = *flagVarDecay
	cfg.Solver.ClaDecay = *flagClaDecay
	cfg.Solver.RandomVarFreq = *flagRndFreq
	cfg.Solver.RandomSeed = *flagRndSeed
	cfg.Solver.CCMinMode = sat.CCMinMode(*flagCCMinMode)
	cfg.Solver.PhaseSaving = sat.PhaseSaving(*flagPhaseSaving)
	cfg.Solver.RandomPolarity = *flagRndInit && !*flagNoRndInit
	cfg.Solver.GCFrac = *flagGCFrac
	cfg.Solver.RCheck = *flagRCheck && !*flagNoRCheck

	cfg.Simp.UseAsymm = *flagAsymm && !*flagNoAsymm
	cfg.Simp.UseElim = *flagElim && !*flagNoElim
	cfg.Simp.Grow = *flagGrow
	cfg.Simp.ClauseLim = *flagClLim
	cfg.Simp.SubsumptionLim = *flagSubLim
	cfg.Simp.SimpGarbageFrac = *flagSimpGC

	return cfg, nil
}

func restartStrategy() sat.RestartStrategy {
	r := sat.DefaultRestartStrategy
	r.LubyRestart = *flagLuby && !*flagNoLuby
	r.RestartFirst = *flagRFirst
	r.RestartInc = *flagRInc
	return r
}

func learningStrategy() sat.LearningStrategy {
	l := sat.DefaultLearningStrategy
	l.MinLearntsLim = *flagMinLearnts
	return l
}

func run(cfg config.CLIConfig) error {
	restart := restartStrategy()
	learning := learningStrategy()

	if cfg.UseCore {
		return runCore(cfg, restart, learning)
	}
	return runSimp(cfg, restart, learning)
}

func runCore(cfg config.CLIConfig, restart sat.RestartStrategy, learning sat.LearningStrategy) error {
	s := sat.NewSolver(cfg.Solver, restart, learning)
	s.Verbosity = cfg.Verbosity

	loaded, err := parsers.LoadDIMACS(cfg.InputFile, cfg.Gzipped, cfg.Strict, s)
	if err != nil {
		return err
	}
	fmt.Printf("c variables:  %d\n", loaded.Variables)
	fmt.Printf("c clauses:    %d\n", loaded.Clauses)

	if !cfg.Solve {
		return nil
	}

	t := time.Now()
	result := s.Solve()
	elapsed := time.Since(t)

	stats := s.Stats()
	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", stats.Conflicts, float64(stats.Conflicts)/elapsed.Seconds())
	fmt.Printf("c status:     %s\n", result.Status)

	return writeResult(cfg, result)
}

func runSimp(cfg config.CLIConfig, restart sat.RestartStrategy, learning sat.LearningStrategy) error {
	simpCfg := cfg.NewSimpConfig()
	simpCfg.Restart = restart
	simpCfg.Learning = learning
	s := simp.NewSimpSolver(simpCfg)

	loaded, err := parsers.LoadDIMACS(cfg.InputFile, cfg.Gzipped, cfg.Strict, s)
	if err != nil {
		return err
	}
	fmt.Printf("c variables:  %d\n", loaded.Variables)
	fmt.Printf("c clauses:    %d\n", loaded.Clauses)

	if cfg.Preprocess {
		if !s.Eliminate(!cfg.Solve) {
			fmt.Println("c status:     UNSATISFIABLE")
			return writeResult(cfg, sat.Result{Status: sat.StatusUnsatisfiable})
		}
	}

	if cfg.DIMACSFile != "" {
		if err := dumpDIMACS(cfg.DIMACSFile, s); err != nil {
			return err
		}
	}

	if !cfg.Solve {
		return nil
	}

	t := time.Now()
	s.Core().Budget().Off()
	result := s.SolveLimited(nil, cfg.Preprocess, false)
	elapsed := time.Since(t)

	stats := s.Stats()
	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", stats.Conflicts, float64(stats.Conflicts)/elapsed.Seconds())
	fmt.Printf("c status:     %s\n", result.Status)

	return writeResult(cfg, result)
}

func dumpDIMACS(path string, s *simp.SimpSolver) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	defer f.Close()

	core := s.Core()
	clauses := make([][]sat.Literal, 0, core.NumConstraints())
	for _, ref := range core.DB().Constraints {
		clauses = append(clauses, core.Arena().Literals(ref))
	}

	w := bufio.NewWriter(f)
	if err := parsers.WriteDIMACS(w, core.NumVariables(), clauses); err != nil {
		return err
	}
	return w.Flush()
}

func writeResult(cfg config.CLIConfig, result sat.Result) error {
	w := os.Stdout
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return fmt.Errorf("creating %q: %w", cfg.OutputFile, err)
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		if err := parsers.WriteResult(bw, result); err != nil {
			return err
		}
		return bw.Flush()
	}
	return parsers.WriteResult(w, result)
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if *flagCPUProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if *flagMemProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
