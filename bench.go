package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// RunBench round-trips every record through every codec and aggregates
// per-codec totals. Codec passes are independent and run concurrently,
// each into its own private accumulator. A record whose round trip does
// not reproduce the original byte-for-byte is counted as a failure and
// excluded from the size/time aggregates; the run never aborts on it.
//
// The evaluator performs no file I/O; the SampleSet is shared read-only.
// ctx is checked between records so a pathological record cannot wedge
// the run forever.
func RunBench(ctx context.Context, samples SampleSet, codecs []Codec) ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, len(codecs))
	errs := make([]error, len(codecs))

	var wg sync.WaitGroup
	for i, c := range codecs {
		wg.Add(1)
		go func(i int, c Codec) {
			defer wg.Done()
			results[i], errs[i] = benchCodec(ctx, samples, c)
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func benchCodec(ctx context.Context, samples SampleSet, c Codec) (BenchmarkResult, error) {
	res := BenchmarkResult{Algorithm: c.Name}
	var compressTime, decompressTime time.Duration

	for _, rec := range samples {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		text := string(rec)
		start := time.Now()
		data := c.Compress(text)
		cDur := time.Since(start)

		start = time.Now()
		back := c.Decompress(data)
		dDur := time.Since(start)

		if len(data) == 0 || back != text {
			res.Failures++
			continue
		}
		res.RecordsTested++
		res.TotalInputBytes += int64(len(text))
		res.TotalOutputBytes += int64(len(data))
		compressTime += cDur
		decompressTime += dDur
	}

	if res.RecordsTested > 0 {
		res.RatioDefined = true
		res.CompressionRatio = float64(res.TotalOutputBytes) / float64(res.TotalInputBytes)
		res.MeanCompressMs = compressTime.Seconds() * 1000 / float64(res.RecordsTested)
		res.MeanDecompressMs = decompressTime.Seconds() * 1000 / float64(res.RecordsTested)
	}
	if Verbose {
		fmt.Fprintf(os.Stderr, "[bench] %s: tested=%d failures=%d ratio=%s\n",
			c.Name, res.RecordsTested, res.Failures, formatRatio(res))
	}
	return res, nil
}
