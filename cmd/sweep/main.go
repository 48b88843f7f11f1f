package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"chess-sweeper/board"
	"chess-sweeper/engine"
	"chess-sweeper/oracle"
	"chess-sweeper/render"
	"chess-sweeper/suite"
)

func main() {
	fen := flag.String("fen", board.FENStartPos, "FEN string (defaults to initial position)")
	side := flag.String("side", "", "side to sweep, w or b (defaults to the FEN side to move)")
	divide := flag.Bool("divide", false, "Print sources per destination")
	check := flag.Bool("check", false, "Compare the pairs against the in-process sweep and the reference generator")
	repeat := flag.Int("repeat", 1, "Repeat the sweep N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := flag.String("memprofile", "", "Write heap profile to file after run")
	suitePath := flag.String("suite", "", "Run a YAML case suite; \"default\" runs the built-in one")
	parallel := flag.Int("parallel", 4, "Cases run at once with -suite")
	svg := flag.String("svg", "", "Write the board and its pairs as SVG to file")
	flag.Parse()

	if *suitePath != "" {
		os.Exit(runSuite(*suitePath, *parallel))
	}

	b, c, err := board.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}
	if *side != "" {
		var ok bool
		if c, ok = board.ParseColor(*side); !ok {
			fmt.Fprintf(os.Stderr, "bad -side %q\n", *side)
			os.Exit(2)
		}
	}
	if *repeat < 1 {
		fmt.Fprintln(os.Stderr, "-repeat must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()
	e := engine.New()
	e.Load(b, c)
	pairs, st, err := engine.WalkAll(ctx, e, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "walk: %v\n", err)
		os.Exit(1)
	}

	if *divide {
		div := engine.Divide(pairs)
		for _, dst := range board.AllSquares.Squares() {
			srcs, ok := div[dst]
			if !ok {
				continue
			}
			names := make([]string, len(srcs))
			for i, s := range srcs {
				names[i] = s.String()
			}
			fmt.Printf("%s: %s\n", dst, strings.Join(names, " "))
		}
		fmt.Printf("Total: %d pairs, %d destinations, %d queries\n", st.Pairs, st.Destinations, st.Queries)
	}

	if *check {
		want := oracle.FromBoard(b, c)
		got := append([]engine.Pair(nil), pairs...)
		engine.SortPairs(got)
		if fmt.Sprint(got) != fmt.Sprint(want) {
			fmt.Fprintf(os.Stderr, "mismatch:\n got  %v\n want %v\n", got, want)
			os.Exit(1)
		}
		if ref := engine.Collect(b, c); fmt.Sprint(ref) != fmt.Sprint(pairs) {
			fmt.Fprintf(os.Stderr, "walk differs from in-process sweep:\n walk  %v\n sweep %v\n", pairs, ref)
			os.Exit(1)
		}
	}

	if *svg != "" {
		f, err := os.Create(*svg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating svg: %v\n", err)
			os.Exit(2)
		}
		var targets board.SquareSet
		for _, p := range pairs {
			targets = targets.With(p.To)
		}
		render.SVG(f, b, render.Options{Targets: targets, Pairs: pairs, Coordinates: true})
		_ = f.Close()
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	// Timing loop
	var queries int
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		e.Load(b, c)
		st, err := engine.Walk(ctx, e, c, func(engine.Pair) error { return nil })
		if err != nil {
			fmt.Fprintf(os.Stderr, "walk: %v\n", err)
			os.Exit(1)
		}
		queries += st.Queries
	}
	elapsed := time.Since(start)
	qps := float64(queries) / elapsed.Seconds()

	// Single line: Pairs Queries Time QPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, st.Pairs, queries, elapsed, qps)

	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating memprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "write heap profile: %v\n", err)
			os.Exit(2)
		}
		_ = f.Close()
	}
}

func runSuite(path string, parallel int) int {
	var (
		s   *suite.Suite
		err error
	)
	if path == "default" {
		s, err = suite.Default()
	} else {
		s, err = suite.Load(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "suite: %v\n", err)
		return 2
	}
	results, err := suite.Run(context.Background(), s, parallel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "suite: %v\n", err)
		return 1
	}
	failed := 0
	for _, r := range results {
		fmt.Println(r)
		if !r.OK() {
			failed++
		}
	}
	fmt.Printf("%s: %d cases, %d failed\n", s.Name, len(results), failed)
	if failed > 0 {
		return 1
	}
	return 0
}
