package main

import (
	"bytes"
	"container/heap"
	_ "embed"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/tidwall/gjson"
)

// Shipped dynamic-coder parameters, found with `gen-algo` over the
// Lichess 2016-03 standard-rated database.
const (
	DefaultHeight = 2.5
	DefaultDev    = 18.0
)

// Codec returns the transform pair for this variant. The mapping is
// exhaustive over the closed enum; an out-of-range value is a
// programming error.
func (a Algorithm) Codec() Codec {
	switch a {
	case Bincode:
		return Codec{Name: a.String(), Compress: bincodeCompress, Decompress: bincodeDecompress}
	case Huffman:
		return Codec{Name: a.String(), Compress: huffmanCompress, Decompress: huffmanDecompress}
	case DynamicHuffman:
		return dynamicCodec(DefaultHeight, DefaultDev)
	case OpeningHuffman:
		return Codec{Name: a.String(), Compress: openingHuffmanCompress, Decompress: openingHuffmanDecompress}
	}
	panic(fmt.Sprintf("unknown algorithm %d", int(a)))
}

// AllCodecs returns the four variants in optimization-level order.
func AllCodecs() []Codec {
	return []Codec{
		Bincode.Codec(),
		Huffman.Codec(),
		DynamicHuffman.Codec(),
		OpeningHuffman.Codec(),
	}
}

// dynamicCodec builds a dynamic-huffman codec for one parameter vector.
// The genetic algorithm benches candidates through this constructor.
func dynamicCodec(height, dev float64) Codec {
	return Codec{
		Name: DynamicHuffman.String(),
		Compress: func(text string) []byte {
			return dynamicHuffmanCompress(text, height, dev)
		},
		Decompress: func(data []byte) string {
			return dynamicHuffmanDecompress(data, height, dev)
		},
	}
}

// ── Bincode (level 0) ───────────────────────────────────────────────

const bincodeVersion = 1

// bincodeCompress serializes canonical PGN text as uvarint-framed line
// blocks. No entropy coding; this is the speed baseline.
func bincodeCompress(text string) []byte {
	blocks, ok := splitLineBlocks(text)
	if !ok {
		return nil
	}
	var buf bytes.Buffer
	buf.Grow(len(text)/2 + 16)
	var tmp [binary.MaxVarintLen64]byte
	put := func(u uint64) {
		n := binary.PutUvarint(tmp[:], u)
		buf.Write(tmp[:n])
	}
	buf.WriteByte(bincodeVersion)
	put(uint64(len(blocks)))
	for _, lines := range blocks {
		put(uint64(len(lines)))
		for _, l := range lines {
			put(uint64(len(l)))
			buf.WriteString(l)
		}
	}
	return buf.Bytes()
}

func bincodeDecompress(data []byte) string {
	if len(data) < 2 || data[0] != bincodeVersion {
		return ""
	}
	r := bytes.NewReader(data[1:])
	get := func() (int, bool) {
		u, err := binary.ReadUvarint(r)
		if err != nil || u > uint64(len(data)) {
			return 0, false
		}
		return int(u), true
	}
	nBlocks, ok := get()
	if !ok || nBlocks == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(data) * 2)
	line := make([]byte, 0, 256)
	for bi := 0; bi < nBlocks; bi++ {
		if bi > 0 {
			b.WriteByte('\n')
		}
		nLines, ok := get()
		if !ok || nLines == 0 {
			return ""
		}
		for li := 0; li < nLines; li++ {
			n, ok := get()
			if !ok {
				return ""
			}
			if cap(line) < n {
				line = make([]byte, n)
			}
			line = line[:n]
			if _, err := io.ReadFull(r, line); err != nil {
				return ""
			}
			b.Write(line)
			b.WriteByte('\n')
		}
	}
	if r.Len() != 0 {
		return ""
	}
	return b.String()
}

// splitLineBlocks splits canonical text (blocks of non-empty lines
// separated by single blank lines, trailing newline) into its blocks.
// Non-canonical input is a transform failure, never a silent rewrite.
func splitLineBlocks(text string) ([][]string, bool) {
	if text == "" || !strings.HasSuffix(text, "\n") {
		return nil, false
	}
	body := strings.TrimSuffix(text, "\n")
	var blocks [][]string
	var cur []string
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			if len(cur) == 0 {
				return nil, false
			}
			blocks = append(blocks, cur)
			cur = nil
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) == 0 {
		return nil, false
	}
	return append(blocks, cur), true
}

// ── Huffman (level 1) ───────────────────────────────────────────────

// huffmanCompress is plain static Huffman coding: a DEFLATE stream with
// LZ matching disabled, so only the entropy coder runs.
func huffmanCompress(text string) []byte {
	if text == "" {
		return nil
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.HuffmanOnly)
	if err != nil {
		return nil
	}
	if _, err := w.Write([]byte(text)); err != nil {
		w.Close()
		return nil
	}
	if err := w.Close(); err != nil {
		return nil
	}
	return buf.Bytes()
}

func huffmanDecompress(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	r := flate.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return ""
	}
	return string(out)
}

// ── Dynamic huffman (level 2) ───────────────────────────────────────
//
// Adaptive coder over bytes plus an explicit EOF symbol. Every coded
// symbol boosts its own weight by 1+height; every rebuildEvery symbols
// the weights decay toward the uniform floor with a gaussian-shaped
// factor exp(-1/(2·dev²)) and the canonical code table is rebuilt.
// Encoder and decoder replay identical updates, so no table is ever
// transmitted.

const (
	numSymbols   = 257
	eofSymbol    = 256
	rebuildEvery = 32
	maxCodeLen   = 56
)

type dynamicCoder struct {
	height float64
	decay  float64

	weights [numSymbols]float64
	counter int

	lens  [numSymbols]uint8
	codes [numSymbols]uint64

	maxLen     uint8
	countByLen [maxCodeLen + 1]int
	firstCode  [maxCodeLen + 1]uint64
	symsByLen  [maxCodeLen + 1][]uint16
}

func newDynamicCoder(height, dev float64) *dynamicCoder {
	if height < 0 || dev <= 0 || math.IsNaN(height) || math.IsNaN(dev) ||
		math.IsInf(height, 0) || math.IsInf(dev, 0) {
		return nil
	}
	c := &dynamicCoder{
		height: height,
		decay:  math.Exp(-1 / (2 * dev * dev)),
	}
	for i := range c.weights {
		c.weights[i] = 1
	}
	if !c.rebuild() {
		return nil
	}
	return c
}

// update adjusts weights after one coded symbol. Must be called in the
// same order on both sides of the stream.
func (c *dynamicCoder) update(sym int) bool {
	c.weights[sym] += 1 + c.height
	c.counter++
	if c.counter%rebuildEvery != 0 {
		return true
	}
	for i := range c.weights {
		c.weights[i] = 1 + (c.weights[i]-1)*c.decay
	}
	return c.rebuild()
}

type huffNode struct {
	weight      float64
	order       int // insertion order, breaks weight ties deterministically
	sym         int // leaf symbol, -1 for internal
	left, right int
}

type huffHeap struct {
	nodes *[]huffNode
	idx   []int
}

func (h huffHeap) Len() int { return len(h.idx) }
func (h huffHeap) Less(i, j int) bool {
	a, b := (*h.nodes)[h.idx[i]], (*h.nodes)[h.idx[j]]
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	return a.order < b.order
}
func (h huffHeap) Swap(i, j int)       { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }
func (h *huffHeap) Push(x any)         { h.idx = append(h.idx, x.(int)) }
func (h *huffHeap) Pop() any           { n := len(h.idx) - 1; v := h.idx[n]; h.idx = h.idx[:n]; return v }

// rebuild derives canonical codes from the current weights.
func (c *dynamicCoder) rebuild() bool {
	nodes := make([]huffNode, 0, 2*numSymbols)
	h := &huffHeap{nodes: &nodes, idx: make([]int, 0, numSymbols)}
	for s := 0; s < numSymbols; s++ {
		nodes = append(nodes, huffNode{weight: c.weights[s], order: s, sym: s, left: -1, right: -1})
		h.idx = append(h.idx, s)
	}
	heap.Init(h)
	order := numSymbols
	for h.Len() > 1 {
		a := heap.Pop(h).(int)
		b := heap.Pop(h).(int)
		nodes = append(nodes, huffNode{
			weight: nodes[a].weight + nodes[b].weight,
			order:  order,
			sym:    -1,
			left:   a,
			right:  b,
		})
		heap.Push(h, len(nodes)-1)
		order++
	}
	root := h.idx[0]

	// Depth-assign code lengths.
	type frame struct {
		node  int
		depth uint8
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := nodes[f.node]
		if n.sym >= 0 {
			if f.depth > maxCodeLen {
				return false
			}
			if f.depth == 0 {
				f.depth = 1 // degenerate single-symbol tree
			}
			c.lens[n.sym] = f.depth
			continue
		}
		stack = append(stack, frame{n.left, f.depth + 1}, frame{n.right, f.depth + 1})
	}

	// Canonical assignment plus decode tables, ordered (length, symbol).
	syms := make([]uint16, numSymbols)
	for s := range syms {
		syms[s] = uint16(s)
	}
	sort.Slice(syms, func(i, j int) bool {
		a, b := syms[i], syms[j]
		if c.lens[a] != c.lens[b] {
			return c.lens[a] < c.lens[b]
		}
		return a < b
	})
	for l := range c.countByLen {
		c.countByLen[l] = 0
		c.symsByLen[l] = nil
	}
	code := uint64(0)
	prev := uint8(0)
	for _, s := range syms {
		l := c.lens[s]
		code <<= l - prev
		if c.countByLen[l] == 0 {
			c.firstCode[l] = code
		}
		c.codes[s] = code
		c.countByLen[l]++
		c.symsByLen[l] = append(c.symsByLen[l], s)
		code++
		prev = l
	}
	c.maxLen = prev
	return true
}

func (c *dynamicCoder) decodeSymbol(br *bitReader) (int, bool) {
	code := uint64(0)
	for l := uint8(1); l <= c.maxLen; l++ {
		bit, ok := br.readBit()
		if !ok {
			return 0, false
		}
		code = code<<1 | uint64(bit)
		if cnt := c.countByLen[l]; cnt > 0 && code >= c.firstCode[l] {
			if idx := code - c.firstCode[l]; idx < uint64(cnt) {
				return int(c.symsByLen[l][idx]), true
			}
		}
	}
	return 0, false
}

func dynamicHuffmanCompress(text string, height, dev float64) []byte {
	if text == "" {
		return nil
	}
	c := newDynamicCoder(height, dev)
	if c == nil {
		return nil
	}
	var bw bitWriter
	bw.buf = make([]byte, 0, len(text)/2+8)
	for i := 0; i < len(text); i++ {
		s := int(text[i])
		bw.writeBits(c.codes[s], c.lens[s])
		if !c.update(s) {
			return nil
		}
	}
	bw.writeBits(c.codes[eofSymbol], c.lens[eofSymbol])
	return bw.finish()
}

func dynamicHuffmanDecompress(data []byte, height, dev float64) string {
	if len(data) == 0 {
		return ""
	}
	c := newDynamicCoder(height, dev)
	if c == nil {
		return ""
	}
	br := bitReader{data: data}
	var sb strings.Builder
	sb.Grow(len(data) * 2)
	for {
		sym, ok := c.decodeSymbol(&br)
		if !ok {
			return ""
		}
		if sym == eofSymbol {
			break
		}
		sb.WriteByte(byte(sym))
		if !c.update(sym) {
			return ""
		}
	}
	return sb.String()
}

// ── Bit I/O ─────────────────────────────────────────────────────────

type bitWriter struct {
	buf []byte
	acc uint64
	n   uint
}

func (w *bitWriter) writeBits(code uint64, width uint8) {
	for i := int(width) - 1; i >= 0; i-- {
		w.acc = w.acc<<1 | (code>>uint(i))&1
		w.n++
		if w.n == 8 {
			w.buf = append(w.buf, byte(w.acc))
			w.acc, w.n = 0, 0
		}
	}
}

func (w *bitWriter) finish() []byte {
	if w.n > 0 {
		w.buf = append(w.buf, byte(w.acc<<(8-w.n)))
	}
	return w.buf
}

type bitReader struct {
	data []byte
	pos  int
	bit  uint
}

func (r *bitReader) readBit() (uint64, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	b := (r.data[r.pos] >> (7 - r.bit)) & 1
	r.bit++
	if r.bit == 8 {
		r.bit = 0
		r.pos++
	}
	return uint64(b), true
}

// ── Opening huffman (level 3) ───────────────────────────────────────
//
// Dynamic huffman with an extra pass: common opening lines from the
// embedded book are swapped for a one-byte escape plus book index
// before entropy coding. 0x11 never occurs in PGN text, so the escape
// is unambiguous.

const openingEscape = 0x11

//go:embed openings.json
var openingsJSON string

var openingBookOnce = sync.OnceValue(loadOpeningBook)

type openingBook struct {
	moves []string // indexed by book id
	order []int    // ids longest-first for greedy substitution
}

func loadOpeningBook() *openingBook {
	book := &openingBook{}
	gjson.Get(openingsJSON, "openings").ForEach(func(_, v gjson.Result) bool {
		book.moves = append(book.moves, v.Get("moves").String())
		return true
	})
	book.order = make([]int, len(book.moves))
	for i := range book.order {
		book.order[i] = i
	}
	sort.SliceStable(book.order, func(i, j int) bool {
		return len(book.moves[book.order[i]]) > len(book.moves[book.order[j]])
	})
	return book
}

func openingHuffmanCompress(text string) []byte {
	if text == "" || strings.IndexByte(text, openingEscape) >= 0 {
		return nil
	}
	book := openingBookOnce()
	b := []byte(text)
	var tok [1 + binary.MaxVarintLen64]byte
	tok[0] = openingEscape
	for _, id := range book.order {
		seq := book.moves[id]
		if seq == "" {
			continue
		}
		n := binary.PutUvarint(tok[1:], uint64(id))
		b = bytes.ReplaceAll(b, []byte(seq), tok[:1+n])
	}
	return dynamicHuffmanCompress(string(b), DefaultHeight, DefaultDev)
}

func openingHuffmanDecompress(data []byte) string {
	text := dynamicHuffmanDecompress(data, DefaultHeight, DefaultDev)
	if text == "" {
		return ""
	}
	book := openingBookOnce()
	var sb strings.Builder
	sb.Grow(len(text) * 2)
	for i := 0; i < len(text); {
		if text[i] != openingEscape {
			sb.WriteByte(text[i])
			i++
			continue
		}
		id, n := binary.Uvarint([]byte(text[i+1:]))
		if n <= 0 || id >= uint64(len(book.moves)) {
			return ""
		}
		sb.WriteString(book.moves[id])
		i += 1 + n
	}
	return sb.String()
}
