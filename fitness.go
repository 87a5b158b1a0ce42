package main

import (
	"context"
	"math"
)

// worstFitness is the sentinel score for a parameter vector that fails
// the round trip on every record. It keeps the optimization loop moving
// and lets selection weed the vector out naturally.
const worstFitness = -math.MaxFloat64

type evaluation struct {
	score  float64
	detail BenchmarkResult
}

// evaluateVector benches the dynamic coder instantiated with one
// candidate parameter vector against the shared sample set.
func evaluateVector(ctx context.Context, samples SampleSet, cfg Config, v ParameterVector) (evaluation, error) {
	res, err := benchCodec(ctx, samples, dynamicCodec(v.Height, v.Dev))
	if err != nil {
		return evaluation{}, err
	}
	return evaluation{score: scoreBench(res, cfg), detail: res}, nil
}

// scoreBench reduces one benchmark pass to scalar fitness. Higher is
// better; smaller compressed output is better. The size/speed trade-off
// is an explicit weighting (mean output bytes vs. mean compress
// milliseconds); the default config weighs size only.
func scoreBench(res BenchmarkResult, cfg Config) float64 {
	if res.RecordsTested == 0 {
		return worstFitness
	}
	meanBytes := float64(res.TotalOutputBytes) / float64(res.RecordsTested)
	return -(cfg.SizeWeight*meanBytes + cfg.SpeedWeight*res.MeanCompressMs)
}
