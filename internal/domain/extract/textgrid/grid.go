// Package textgrid stores text fragments keyed by a quantized page position
// and answers the two questions field extraction needs: "what text sits near
// this spot" and "where does this label first appear". Layout coordinates in
// recovered documents are noisy, so correctness comes from anchor search plus
// a tolerant window rather than exact positional equality.
package textgrid

import (
	"math"
	"sort"
	"strings"
)

// Key encodes page, quantized row and quantized column in one integer:
// page*20000 + row*100 + col, with row in [0,200) and col in [0,100).
type Key int

// MakeKey builds a Key from page index, row bucket and column bucket.
func MakeKey(page, row, col int) Key {
	return Key(page*20000 + row*100 + col)
}

// Row returns the global row (page*200 + row bucket).
func (k Key) Row() int { return int(k) / 100 }

// Col returns the column bucket.
func (k Key) Col() int { return int(k) % 100 }

// Page returns the page index.
func (k Key) Page() int { return int(k) / 20000 }

// Grid is the fragment collection for one document. It is filled once by the
// extractor and read-only during search. Exact key collisions overwrite; they
// are rare by construction and the design is best-effort.
type Grid struct {
	frags  map[Key]string
	keys   []Key
	sorted bool
}

func New() *Grid {
	return &Grid{frags: make(map[Key]string)}
}

// Put stores a fragment at the given key.
func (g *Grid) Put(k Key, text string) {
	if _, dup := g.frags[k]; !dup {
		g.keys = append(g.keys, k)
		g.sorted = false
	}
	g.frags[k] = text
}

// Len returns the number of stored fragments.
func (g *Grid) Len() int { return len(g.frags) }

// Keys returns all keys in ascending order. The returned slice is shared;
// callers must not modify it.
func (g *Grid) Keys() []Key {
	if !g.sorted {
		sort.Slice(g.keys, func(i, j int) bool { return g.keys[i] < g.keys[j] })
		g.sorted = true
	}
	return g.keys
}

// Text returns the fragment stored at k, or "".
func (g *Grid) Text(k Key) string { return g.frags[k] }

// Near returns fragment texts inside the window
// [row-2, row+rowSpan) x [col-2, col+colSpan), ordered by ascending
// integer-rounded Euclidean distance from (row, col). The -2 tolerance
// absorbs quantization error at window edges. Equal distances keep ascending
// key order. Results are not deduplicated.
func (g *Grid) Near(row, col, rowSpan, colSpan int) []string {
	type hit struct {
		dist int
		text string
	}
	var hits []hit
	for _, k := range g.Keys() {
		sy := k.Row()
		sx := k.Col()
		if sy < row-2 || sy >= row+rowSpan || sx < col-2 || sx >= col+colSpan {
			continue
		}
		d := int(math.Round(math.Sqrt(float64((col-sx)*(col-sx) + (row-sy)*(row-sy)))))
		hits = append(hits, hit{dist: d, text: g.frags[k]})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.text
	}
	return out
}

// FindFirst scans fragments in ascending key order and returns the first key
// whose text contains needle case-insensitively and whose column lies in
// [colStart, colEnd]. rowEnd 0 means the scan is unbounded below. The result
// is the earliest key, not the closest; callers that need precision follow
// up with Near anchored at the returned key.
func (g *Grid) FindFirst(needle string, rowStart, rowEnd, colStart, colEnd int) (Key, bool) {
	lowered := strings.ToLower(needle)
	for _, k := range g.Keys() {
		if rowEnd != 0 && int(k) >= rowEnd*100 {
			return 0, false
		}
		if int(k) < rowStart*100 {
			continue
		}
		if k.Col() >= colStart && k.Col() <= colEnd &&
			strings.Contains(strings.ToLower(g.frags[k]), lowered) {
			return k, true
		}
	}
	return 0, false
}

// FindAll returns every key matching the FindFirst predicate, ascending.
func (g *Grid) FindAll(needle string, rowStart, rowEnd, colStart, colEnd int) []Key {
	lowered := strings.ToLower(needle)
	var out []Key
	for _, k := range g.Keys() {
		if rowEnd != 0 && int(k) >= rowEnd*100 {
			break
		}
		if int(k) < rowStart*100 {
			continue
		}
		if k.Col() >= colStart && k.Col() <= colEnd &&
			strings.Contains(strings.ToLower(g.frags[k]), lowered) {
			out = append(out, k)
		}
	}
	return out
}

// Anywhere is FindFirst over the whole document.
func (g *Grid) Anywhere(needle string) (Key, bool) {
	return g.FindFirst(needle, 0, 0, 0, 99)
}

// Joined returns all fragments joined with single spaces in key order.
func (g *Grid) Joined() string {
	keys := g.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = g.frags[k]
	}
	return strings.Join(parts, " ")
}

// First returns the fragment at the lowest key.
func (g *Grid) First() (string, bool) {
	keys := g.Keys()
	if len(keys) == 0 {
		return "", false
	}
	return g.frags[keys[0]], true
}
