package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"
)

// BenchOutput is the JSON-serializable result of a full benchmark run.
type BenchOutput struct {
	Date    string            `json:"date"`
	Workers int               `json:"workers"`
	Corpus  string            `json:"corpus,omitempty"`
	Sample  SampleStats       `json:"sample"`
	Results []BenchmarkResult `json:"results"`
	TotalMs int64             `json:"totalMs"`
}

func newBenchOutput(corpus string, stats SampleStats, results []BenchmarkResult, elapsed time.Duration) BenchOutput {
	return BenchOutput{
		Date:    time.Now().UTC().Format(time.RFC3339),
		Workers: runtime.NumCPU(),
		Corpus:  corpus,
		Sample:  stats,
		Results: results,
		TotalMs: elapsed.Milliseconds(),
	}
}

// GenAlgoOutput is the JSON-serializable outcome of an optimization
// run. It keeps enough to reconstruct why the winning vector was
// selected: the config, the per-generation history, and the winner's
// full benchmark detail.
type GenAlgoOutput struct {
	Date        string           `json:"date"`
	Seed        int64            `json:"seed"`
	Games       string           `json:"games"`
	Config      Config           `json:"config"`
	Sample      SampleStats      `json:"sample"`
	Best        ParameterVector  `json:"best"`
	BestFitness float64          `json:"bestFitness"`
	BestDetail  BenchmarkResult  `json:"bestDetail"`
	History     []GenerationStat `json:"history"`
	TotalMs     int64            `json:"totalMs"`
}

func newGenAlgoOutput(cfg Config, stats SampleStats, res *GenAlgoResult) GenAlgoOutput {
	return GenAlgoOutput{
		Date:        time.Now().UTC().Format(time.RFC3339),
		Seed:        res.Seed,
		Games:       cfg.NumberOfGames.String(),
		Config:      cfg,
		Sample:      stats,
		Best:        res.Best.Genes,
		BestFitness: res.Best.Fitness,
		BestDetail:  res.BestDetail,
		History:     res.History,
		TotalMs:     res.Elapsed.Milliseconds(),
	}
}

// writeReport serializes v as indented JSON to path, or to stdout when
// path is empty.
func writeReport(path string, v any) error {
	if path == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printBenchTable(results []BenchmarkResult) {
	const divider = "----------------- -------- -------- ------------ ------------ -------- ---------- ----------"
	fmt.Printf("%-17s %8s %8s %12s %12s %8s %10s %10s\n",
		"Algorithm", "Tested", "Failed", "In (B)", "Out (B)", "Ratio", "Comp ms", "Decomp ms")
	fmt.Println(divider)
	for _, r := range results {
		fmt.Printf("%-17s %8d %8d %12d %12d %8s %10.3f %10.3f\n",
			r.Algorithm, r.RecordsTested, r.Failures,
			r.TotalInputBytes, r.TotalOutputBytes,
			formatRatio(r), r.MeanCompressMs, r.MeanDecompressMs)
	}
	fmt.Println(divider)
}

func formatRatio(r BenchmarkResult) string {
	if !r.RatioDefined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", r.CompressionRatio)
}
