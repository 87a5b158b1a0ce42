package main

import "fmt"

// Algorithm identifies one of the four fixed compression variants,
// ordered by CLI optimization level (0-3).
type Algorithm int

const (
	Bincode Algorithm = iota
	Huffman
	DynamicHuffman
	OpeningHuffman
)

func (a Algorithm) String() string {
	switch a {
	case Bincode:
		return "bincode"
	case Huffman:
		return "huffman"
	case DynamicHuffman:
		return "dynamic-huffman"
	case OpeningHuffman:
		return "opening-huffman"
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// AlgorithmFromLevel maps a CLI optimization level to its variant.
func AlgorithmFromLevel(level int) (Algorithm, error) {
	if level < 0 || level > 3 {
		return 0, fmt.Errorf("optimization level must be between 0 and 3, got %d", level)
	}
	return Algorithm(level), nil
}

// CompressFunc turns PGN text into a compressed payload.
// An empty result signals transform failure.
type CompressFunc func(text string) []byte

// DecompressFunc reverses a CompressFunc.
// An empty result signals transform failure.
type DecompressFunc func(data []byte) string

// Codec pairs a named compress/decompress transform. The benchmark and
// fitness paths treat codecs as opaque; only the constructors in codec.go
// know what is inside.
type Codec struct {
	Name       string
	Compress   CompressFunc
	Decompress DecompressFunc
}

// GameRecord is a single game in canonical tag-pair-plus-movetext form:
// tag lines, one blank line, movetext lines, trailing newline.
// Immutable once extracted.
type GameRecord string

// SampleSet is the ordered, read-only set of records one run operates on.
type SampleSet []GameRecord

// TotalBytes sums the raw size of all records in the set.
func (s SampleSet) TotalBytes() int64 {
	var n int64
	for _, r := range s {
		n += int64(len(r))
	}
	return n
}

// ParameterVector holds the two tunable genes of the dynamic coder.
type ParameterVector struct {
	Height float64 `json:"height"`
	Dev    float64 `json:"dev"`
}

// Individual is a parameter vector plus its (possibly stale) fitness.
type Individual struct {
	Genes   ParameterVector
	Fitness float64
}

// Population is a fixed-size generation of individuals.
type Population []Individual

// BenchmarkResult is the per-algorithm outcome of one evaluator pass.
type BenchmarkResult struct {
	Algorithm        string  `json:"algorithm"`
	RecordsTested    int     `json:"recordsTested"`
	Failures         int     `json:"failures"`
	TotalInputBytes  int64   `json:"totalInputBytes"`
	TotalOutputBytes int64   `json:"totalOutputBytes"`
	CompressionRatio float64 `json:"compressionRatio"`
	// RatioDefined is false when no record survived the round trip;
	// CompressionRatio is meaningless in that case.
	RatioDefined     bool    `json:"ratioDefined"`
	MeanCompressMs   float64 `json:"meanCompressMs"`
	MeanDecompressMs float64 `json:"meanDecompressMs"`
}
