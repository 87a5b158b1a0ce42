//go:build !lambda

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

const usage = `Usage: cgn-cli <command> [arguments]

Commands:
  compress   [-o level] <input.pgn> <output.cgn>   Compress a single PGN file
  decompress [-o level] <input.cgn> <output.pgn>   Decompress a single PGN file
  bench      <n|all> <corpus.pgn> [output.json]    Benchmark the four algorithms
                                                   against a Lichess PGN database
  gen-algo   [flags] <population> <n|all> <generations> <mutation-rate>
             <tournament-size> <height-min> <height-max> <dev-min> <dev-max>
             <corpus.pgn> <output.json>            Tune the dynamic coder

Optimization levels: 0=bincode 1=huffman 2=dynamic-huffman 3=opening-huffman
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "compress":
		err = runTransformCmd("compress", os.Args[2:])
	case "decompress":
		err = runTransformCmd("decompress", os.Args[2:])
	case "bench":
		err = runBenchCmd(os.Args[2:])
	case "gen-algo":
		err = runGenAlgoCmd(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runTransformCmd(name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	level := fs.Int("o", 3, "optimization level (0-3)")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("%s needs an input path and an output path", name)
	}

	algo, err := AlgorithmFromLevel(*level)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(rest[0])
	if err != nil {
		return err
	}
	codec := algo.Codec()

	if name == "compress" {
		out := codec.Compress(string(raw))
		if len(out) == 0 {
			fmt.Println("Compression failed")
			return nil
		}
		return os.WriteFile(rest[1], out, 0o644)
	}
	out := codec.Decompress(raw)
	if out == "" {
		fmt.Println("Decompression failed")
		return nil
	}
	return os.WriteFile(rest[1], []byte(out), 0o644)
}

func runBenchCmd(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "print per-algorithm progress to stderr")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) < 2 || len(rest) > 3 {
		return fmt.Errorf("bench needs <n|all> <corpus.pgn> [output.json]")
	}
	take, err := ParseToTake(rest[0])
	if err != nil {
		return err
	}
	Verbose = *verbose

	samples, stats, err := LoadSamples(rest[1], take)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "[load] %d games sampled (%d malformed skipped)\n",
		stats.Taken, stats.Malformed)

	start := time.Now()
	results, err := RunBench(context.Background(), samples, AllCodecs())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printBenchTable(results)
	if len(rest) == 3 {
		if err := writeReport(rest[2], newBenchOutput(rest[1], stats, results, elapsed)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "[done] results written to %s\n", rest[2])
	}
	return nil
}

func runGenAlgoCmd(args []string) error {
	fs := flag.NewFlagSet("gen-algo", flag.ExitOnError)
	seed := fs.Int64("seed", 0, "random seed (0 = time-derived, non-reproducible)")
	sizeWeight := fs.Float64("size-weight", 1, "fitness weight for mean compressed bytes")
	speedWeight := fs.Float64("speed-weight", 0, "fitness weight for mean compress milliseconds")
	workers := fs.Int("workers", 0, "concurrent fitness evaluations (0 = GOMAXPROCS)")
	verbose := fs.Bool("verbose", false, "print per-generation progress to stderr")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 11 {
		return fmt.Errorf("gen-algo needs 11 positional arguments, got %d", len(rest))
	}

	pop, err := parseIntArg("population size", rest[0])
	if err != nil {
		return err
	}
	take, err := ParseToTake(rest[1])
	if err != nil {
		return err
	}
	generations, err := parseIntArg("generations", rest[2])
	if err != nil {
		return err
	}
	mutationRate, err := parseFloatArg("mutation rate", rest[3])
	if err != nil {
		return err
	}
	tournament, err := parseIntArg("tournament size", rest[4])
	if err != nil {
		return err
	}
	heightMin, err := parseFloatArg("height min", rest[5])
	if err != nil {
		return err
	}
	heightMax, err := parseFloatArg("height max", rest[6])
	if err != nil {
		return err
	}
	devMin, err := parseFloatArg("dev min", rest[7])
	if err != nil {
		return err
	}
	devMax, err := parseFloatArg("dev max", rest[8])
	if err != nil {
		return err
	}

	cfg := Config{
		InitPopulation: pop,
		NumberOfGames:  take,
		Generations:    generations,
		MutationRate:   clamp(mutationRate, 0, 1),
		TournamentSize: tournament,
		HeightMin:      heightMin,
		HeightMax:      heightMax,
		DevMin:         devMin,
		DevMax:         devMax,
		InputDBPath:    rest[9],
		OutputPath:     rest[10],
		Seed:           *seed,
		SizeWeight:     *sizeWeight,
		SpeedWeight:    *speedWeight,
		Workers:        *workers,
	}
	// Malformed bounds or counts abort before anything is read.
	if err := cfg.Validate(); err != nil {
		return err
	}
	Verbose = *verbose

	samples, stats, err := LoadSamples(cfg.InputDBPath, cfg.NumberOfGames)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "[load] %d games sampled (%d malformed skipped)\n",
		stats.Taken, stats.Malformed)

	res, err := RunGenAlgo(context.Background(), samples, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "[done] best height=%.4f dev=%.4f fitness=%.4f in %v\n",
		res.Best.Genes.Height, res.Best.Genes.Dev, res.Best.Fitness, res.Elapsed.Round(time.Millisecond))

	return writeReport(cfg.OutputPath, newGenAlgoOutput(cfg, stats, res))
}

func parseIntArg(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}

func parseFloatArg(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return f, nil
}
