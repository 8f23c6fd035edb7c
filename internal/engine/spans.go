package engine

import (
	"sort"
	"strings"
)

// Range is a half-open [Start, End) character range inside a text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Match is one maximal common block between two rune sequences:
// a[A:A+Size] == b[B:B+Size].
type Match struct {
	A    int
	B    int
	Size int
}

// MatchingBlocks finds the maximal common contiguous blocks between
// two texts. Blocks are non-overlapping on both sides and ordered by
// position in the first text. Positions and sizes count runes.
func MatchingBlocks(textA, textB string) []Match {
	a := []rune(textA)
	b := []rune(textB)

	// Index of each rune's positions in b, rebuilt per call; the
	// recursion filters by range instead of rebuilding.
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type region struct{ alo, ahi, blo, bhi int }
	queue := []region{{0, len(a), 0, len(b)}}
	var blocks []Match

	for len(queue) > 0 {
		reg := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, b2j, reg.alo, reg.ahi, reg.blo, reg.bhi)
		if m.Size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if reg.alo < m.A && reg.blo < m.B {
			queue = append(queue, region{reg.alo, m.A, reg.blo, m.B})
		}
		if m.A+m.Size < reg.ahi && m.B+m.Size < reg.bhi {
			queue = append(queue, region{m.A + m.Size, reg.ahi, m.B + m.Size, reg.bhi})
		}
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].A < blocks[j].A })

	// Merge adjacent blocks so each returned block is maximal.
	merged := blocks[:0]
	for _, blk := range blocks {
		if n := len(merged); n > 0 &&
			merged[n-1].A+merged[n-1].Size == blk.A &&
			merged[n-1].B+merged[n-1].Size == blk.B {
			merged[n-1].Size += blk.Size
			continue
		}
		merged = append(merged, blk)
	}
	return merged
}

// longestMatch finds the longest block with a[i:i+k] == b[j:j+k],
// alo <= i < i+k <= ahi and blo <= j < j+k <= bhi. Earliest in a,
// then earliest in b, wins ties.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) Match {
	best := Match{A: alo, B: blo}
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > best.Size {
				best = Match{A: i - k + 1, B: j - k + 1, Size: k}
			}
		}
		j2len = newJ2len
	}
	return best
}

// MatchingSpans returns the common substrings of length >= minLength,
// in the order they appear in textA.
func MatchingSpans(textA, textB string, minLength int) []string {
	a := []rune(textA)
	var spans []string
	for _, blk := range MatchingBlocks(textA, textB) {
		if blk.Size >= minLength {
			spans = append(spans, string(a[blk.A:blk.A+blk.Size]))
		}
	}
	return spans
}

// SimilarityRatio measures overall sequence similarity of two texts in
// [0, 1]: twice the number of matched runes over the total length.
// Two empty texts are identical, ratio 1.
func SimilarityRatio(textA, textB string) float64 {
	total := len([]rune(textA)) + len([]rune(textB))
	if total == 0 {
		return 1.0
	}
	matched := 0
	for _, blk := range MatchingBlocks(textA, textB) {
		matched += blk.Size
	}
	return 2.0 * float64(matched) / float64(total)
}

// LocateSpans finds each span's first occurrence in text, scanning
// left to right so repeated snippets map to successive, non-overlapping
// ranges. Spans not found past the previous range are skipped. Ranges
// are rune offsets, sorted by start.
func LocateSpans(text string, spans []string) []Range {
	runes := []rune(text)
	var ranges []Range
	from := 0
	for _, span := range spans {
		spanRunes := []rune(span)
		if len(spanRunes) == 0 || from > len(runes) {
			continue
		}
		idx := indexRunes(runes[from:], spanRunes)
		if idx < 0 {
			continue
		}
		start := from + idx
		ranges = append(ranges, Range{Start: start, End: start + len(spanRunes)})
		from = start + len(spanRunes)
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges
}

func indexRunes(haystack, needle []rune) int {
	idx := strings.Index(string(haystack), string(needle))
	if idx < 0 {
		return -1
	}
	// Convert the byte offset back to a rune offset.
	return len([]rune(string(haystack)[:idx]))
}
