package main

import (
	"context"
	"testing"
)

func TestRunBenchAllAlgorithms(t *testing.T) {
	samples, _ := readTestSamples(t, ToTake{All: true})
	results, err := RunBench(context.Background(), samples, AllCodecs())
	if err != nil {
		t.Fatalf("RunBench: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for _, r := range results {
		if r.RecordsTested != len(samples) || r.Failures != 0 {
			t.Errorf("%s: tested=%d failures=%d, want %d and 0",
				r.Algorithm, r.RecordsTested, r.Failures, len(samples))
		}
		if r.TotalInputBytes != samples.TotalBytes() {
			t.Errorf("%s: input bytes %d, want %d", r.Algorithm, r.TotalInputBytes, samples.TotalBytes())
		}
		if !r.RatioDefined {
			t.Errorf("%s: ratio undefined with %d tested records", r.Algorithm, r.RecordsTested)
			continue
		}
		want := float64(r.TotalOutputBytes) / float64(r.TotalInputBytes)
		if r.CompressionRatio != want {
			t.Errorf("%s: ratio %g, want %g", r.Algorithm, r.CompressionRatio, want)
		}
		if r.MeanCompressMs < 0 || r.MeanDecompressMs < 0 {
			t.Errorf("%s: negative mean timings", r.Algorithm)
		}
	}
}

func TestRunBenchCountsFailures(t *testing.T) {
	samples, _ := readTestSamples(t, ToTake{N: 4})
	broken := Codec{
		Name:       "broken",
		Compress:   func(string) []byte { return []byte{0xFF} },
		Decompress: func([]byte) string { return "" },
	}
	results, err := RunBench(context.Background(), samples, []Codec{broken})
	if err != nil {
		t.Fatalf("RunBench: %v", err)
	}
	r := results[0]
	if r.Failures != len(samples) || r.RecordsTested != 0 {
		t.Errorf("tested=%d failures=%d, want 0 and %d", r.RecordsTested, r.Failures, len(samples))
	}
	if r.RatioDefined {
		t.Error("ratio must stay undefined when every record fails")
	}
	if r.TotalInputBytes != 0 || r.TotalOutputBytes != 0 {
		t.Error("failed records must not contribute to byte totals")
	}
}

func TestRunBenchEmptyOutputIsFailure(t *testing.T) {
	samples, _ := readTestSamples(t, ToTake{N: 2})
	never := Codec{
		Name:       "never",
		Compress:   func(string) []byte { return nil },
		Decompress: func([]byte) string { return "" },
	}
	results, err := RunBench(context.Background(), samples, []Codec{never})
	if err != nil {
		t.Fatalf("RunBench: %v", err)
	}
	if results[0].Failures != len(samples) {
		t.Errorf("failures = %d, want %d", results[0].Failures, len(samples))
	}
}

func TestRunBenchCancelled(t *testing.T) {
	samples, _ := readTestSamples(t, ToTake{All: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunBench(ctx, samples, AllCodecs()); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}
