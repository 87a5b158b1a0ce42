package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteReportRoundTrip(t *testing.T) {
	samples, stats := readTestSamples(t, ToTake{N: 3})
	results, err := RunBench(context.Background(), samples, AllCodecs())
	if err != nil {
		t.Fatalf("RunBench: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bench.json")
	out := newBenchOutput("corpus.pgn", stats, results, 1500*time.Millisecond)
	if err := writeReport(path, out); err != nil {
		t.Fatalf("writeReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back BenchOutput
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if back.Corpus != "corpus.pgn" || back.TotalMs != 1500 {
		t.Errorf("got corpus=%q totalMs=%d, want corpus.pgn and 1500", back.Corpus, back.TotalMs)
	}
	if len(back.Results) != 4 {
		t.Errorf("got %d results, want 4", len(back.Results))
	}
	if back.Sample != stats {
		t.Errorf("sample stats %+v, want %+v", back.Sample, stats)
	}
}

func TestGenAlgoOutputShape(t *testing.T) {
	cfg := gaTestConfig()
	samples, stats := readTestSamples(t, ToTake{N: 2})
	res, err := RunGenAlgo(context.Background(), samples, cfg)
	if err != nil {
		t.Fatalf("RunGenAlgo: %v", err)
	}

	out := newGenAlgoOutput(cfg, stats, res)
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back GenAlgoOutput
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Seed != cfg.Seed || back.Games != "all" {
		t.Errorf("got seed=%d games=%q, want %d and all", back.Seed, back.Games, cfg.Seed)
	}
	if back.Best != res.Best.Genes || len(back.History) != cfg.Generations {
		t.Errorf("report does not reflect the run: %+v", back)
	}
}

func TestFormatRatio(t *testing.T) {
	if got := formatRatio(BenchmarkResult{}); got != "n/a" {
		t.Errorf("undefined ratio formats as %q, want n/a", got)
	}
	r := BenchmarkResult{RatioDefined: true, CompressionRatio: 0.51239}
	if got := formatRatio(r); got != "0.5124" {
		t.Errorf("ratio formats as %q, want 0.5124", got)
	}
}
