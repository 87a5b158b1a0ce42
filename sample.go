package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoRecords means the corpus was readable but contained zero
// well-formed games.
var ErrNoRecords = errors.New("corpus contains no well-formed games")

// SampleStats summarizes one sampler pass over a corpus.
type SampleStats struct {
	WellFormed int `json:"wellFormed"`
	Malformed  int `json:"malformed"`
	Taken      int `json:"taken"`
}

// movetext result markers; a movetext block must end with one of these.
var resultTokens = []string{"1-0", "0-1", "1/2-1/2", "*"}

// LoadSamples reads a blank-line-delimited PGN corpus from disk and
// returns the first take.N well-formed games (or all of them).
// Re-running against the same corpus and selector yields an identical
// SampleSet.
func LoadSamples(path string, take ToTake) (SampleSet, SampleStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, SampleStats{}, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	samples, stats, err := ReadSamples(f, take)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return samples, stats, nil
}

// ReadSamples is LoadSamples over an arbitrary reader, so tests and the
// lambda path can feed in-memory corpora. Records are canonicalized:
// tag lines, one blank line, movetext lines, trailing newline.
// Malformed records (movetext without tags, tags without movetext,
// movetext missing a result marker) are skipped and counted; they never
// count toward the requested N.
func ReadSamples(r io.Reader, take ToTake) (SampleSet, SampleStats, error) {
	var (
		samples SampleSet
		stats   SampleStats
		pending []string // tag block awaiting its movetext
		block   []string
	)
	done := func() bool { return !take.All && len(samples) >= take.N }

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		lines := block
		block = nil
		if strings.HasPrefix(lines[0], "[") {
			// A second tag block before any movetext orphans the first.
			if pending != nil {
				stats.Malformed++
			}
			pending = lines
			return
		}
		if pending == nil || !wellFormedTags(pending) || !wellFormedMovetext(lines) {
			stats.Malformed++
			pending = nil
			return
		}
		stats.WellFormed++
		if !done() {
			samples = append(samples, canonicalRecord(pending, lines))
		}
		pending = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			flushBlock()
			if done() && pending == nil {
				break
			}
			continue
		}
		block = append(block, line)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("read corpus: %w", err)
	}
	flushBlock()
	if pending != nil {
		// Tag block at EOF with no movetext.
		stats.Malformed++
	}

	wantedNone := !take.All && take.N == 0
	if len(samples) == 0 && !wantedNone {
		return nil, stats, ErrNoRecords
	}
	stats.Taken = len(samples)
	return samples, stats, nil
}

func wellFormedTags(lines []string) bool {
	for _, l := range lines {
		if !strings.HasPrefix(l, "[") || !strings.HasSuffix(l, "]") {
			return false
		}
	}
	return len(lines) > 0
}

func wellFormedMovetext(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	last := lines[len(lines)-1]
	fields := strings.Fields(last)
	if len(fields) == 0 {
		return false
	}
	tail := fields[len(fields)-1]
	for _, tok := range resultTokens {
		if tail == tok {
			return true
		}
	}
	return false
}

func canonicalRecord(tags, moves []string) GameRecord {
	var b strings.Builder
	b.Grow(recordLen(tags) + recordLen(moves) + 2)
	for _, l := range tags {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, l := range moves {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return GameRecord(b.String())
}

func recordLen(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	return n
}
