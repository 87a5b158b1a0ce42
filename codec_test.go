package main

import (
	"strings"
	"testing"
)

func TestRoundTripAllAlgorithms(t *testing.T) {
	for _, c := range AllCodecs() {
		t.Run(c.Name, func(t *testing.T) {
			for i, g := range testGames {
				data := c.Compress(g)
				if len(data) == 0 {
					t.Fatalf("game %d: compression failed", i)
				}
				if back := c.Decompress(data); back != g {
					t.Fatalf("game %d: round trip mismatch:\ngot  %q\nwant %q", i, back, g)
				}
			}
		})
	}
}

func TestDynamicHuffmanParameterRange(t *testing.T) {
	vectors := []ParameterVector{
		{Height: 0, Dev: 1},
		{Height: 0.5, Dev: 18},
		{Height: 5, Dev: 30},
		{Height: 10, Dev: 50},
	}
	text := testGames[0]
	for _, v := range vectors {
		data := dynamicHuffmanCompress(text, v.Height, v.Dev)
		if len(data) == 0 {
			t.Errorf("height=%g dev=%g: compression failed", v.Height, v.Dev)
			continue
		}
		if back := dynamicHuffmanDecompress(data, v.Height, v.Dev); back != text {
			t.Errorf("height=%g dev=%g: round trip mismatch", v.Height, v.Dev)
		}
	}
}

func TestDynamicHuffmanMismatchedParams(t *testing.T) {
	text := testGames[0]
	data := dynamicHuffmanCompress(text, 2.5, 18)
	if back := dynamicHuffmanDecompress(data, 9, 2); back == text {
		t.Error("decoding with different parameters should not reproduce the input")
	}
}

func TestDynamicHuffmanLongInput(t *testing.T) {
	text := strings.Repeat(strings.Join(testGames, "\n"), 20)
	data := dynamicHuffmanCompress(text, DefaultHeight, DefaultDev)
	if len(data) == 0 {
		t.Fatal("compression failed")
	}
	if len(data) >= len(text) {
		t.Errorf("entropy coding did not shrink %d bytes of PGN text (got %d)", len(text), len(data))
	}
	if back := dynamicHuffmanDecompress(data, DefaultHeight, DefaultDev); back != text {
		t.Fatal("round trip mismatch on long input")
	}
}

func TestDynamicHuffmanInvalidParams(t *testing.T) {
	for _, v := range []ParameterVector{
		{Height: -1, Dev: 18},
		{Height: 2.5, Dev: 0},
		{Height: 2.5, Dev: -3},
	} {
		if data := dynamicHuffmanCompress(testGames[0], v.Height, v.Dev); data != nil {
			t.Errorf("height=%g dev=%g: expected compression failure", v.Height, v.Dev)
		}
	}
}

func TestCompressEmptyInputFails(t *testing.T) {
	for _, c := range AllCodecs() {
		if data := c.Compress(""); len(data) != 0 {
			t.Errorf("%s: empty input should fail, got %d bytes", c.Name, len(data))
		}
	}
}

func TestDecompressGarbageFails(t *testing.T) {
	garbage := []byte{0x00, 0x03, 0x00, 0x01, 0x02, 0x00}
	for _, c := range AllCodecs() {
		if out := c.Decompress(garbage); out != "" {
			t.Errorf("%s: garbage decoded to %q, want failure", c.Name, out)
		}
		if out := c.Decompress(nil); out != "" {
			t.Errorf("%s: nil input decoded to %q, want failure", c.Name, out)
		}
	}
}

func TestBincodeNonCanonicalFails(t *testing.T) {
	cases := []string{
		"missing trailing newline",
		"double\n\n\nblank\n",
		"\n",
	}
	for _, text := range cases {
		if data := bincodeCompress(text); data != nil {
			t.Errorf("bincode accepted non-canonical input %q", text)
		}
	}
}

func TestOpeningHuffmanSubstitution(t *testing.T) {
	// testGames[0] opens with the Ruy Lopez book line, so the opening
	// variant starts from a shorter pre-entropy stream than the plain
	// dynamic coder sees.
	text := testGames[0]
	op := openingHuffmanCompress(text)
	dyn := dynamicHuffmanCompress(text, DefaultHeight, DefaultDev)
	if len(op) == 0 || len(dyn) == 0 {
		t.Fatal("compression failed")
	}
	if len(op) >= len(dyn) {
		t.Errorf("opening substitution did not help: opening=%d dynamic=%d", len(op), len(dyn))
	}
	if back := openingHuffmanDecompress(op); back != text {
		t.Fatal("round trip mismatch")
	}
}

func TestOpeningHuffmanEscapeByteInInput(t *testing.T) {
	if data := openingHuffmanCompress("text with \x11 escape byte\n"); data != nil {
		t.Error("input containing the escape byte must be rejected")
	}
}

func TestAlgorithmFromLevel(t *testing.T) {
	for level, want := range []Algorithm{Bincode, Huffman, DynamicHuffman, OpeningHuffman} {
		got, err := AlgorithmFromLevel(level)
		if err != nil || got != want {
			t.Errorf("level %d: got %v, %v; want %v", level, got, err, want)
		}
	}
	for _, level := range []int{-1, 4, 99} {
		if _, err := AlgorithmFromLevel(level); err == nil {
			t.Errorf("level %d: expected an error", level)
		}
	}
}
