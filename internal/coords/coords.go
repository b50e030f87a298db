// Package coords implements the coordinate mapper (C7): translating
// absolute suffix positions into (sub-sequence name, offset) pairs and
// extracting bounded context windows around a match.
package coords

import "sort"

// SequenceFor returns the index i of the sub-sequence containing the
// absolute text position suffix: the largest i with starts[i] <= suffix.
// starts must be non-empty and ascending (sequence_starts[0] == 0).
func SequenceFor(starts []int, suffix int) int {
	// sort.Search finds the first index where the predicate holds; we want
	// the last index where starts[i] <= suffix, i.e. one less than the
	// first index where starts[i] > suffix.
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > suffix })
	return i - 1
}

// SequenceEnd returns the exclusive end offset of sub-sequence i:
// starts[i+1] if i is not the last sub-sequence, else textLen.
func SequenceEnd(starts []int, i, textLen int) int {
	if i+1 < len(starts) {
		return starts[i+1]
	}
	return textLen
}

// Hit is the sub-sequence-relative location of one matched suffix.
type Hit struct {
	Rank             int
	Suffix           int
	SequenceIndex    int
	SequenceName     string
	SequencePosition int
}

// Locate maps one (rank, suffix) pair to its sub-sequence coordinates.
func Locate(starts []int, headers []string, rank, suffix int) Hit {
	i := SequenceFor(starts, suffix)
	return Hit{
		Rank:             rank,
		Suffix:           suffix,
		SequenceIndex:    i,
		SequenceName:     headers[i],
		SequencePosition: suffix - starts[i],
	}
}

// Window is an extracted context window around one matched suffix: the
// half-open byte range [start, end) within the containing sub-sequence,
// and the offset of the match itself within that range.
type Window struct {
	Hit
	Start        int // inclusive, relative to the sub-sequence start
	End          int // exclusive, relative to the sub-sequence start
	SuffixOffset int // position of the match within [Start, End)
}

// ExtractWindow computes the context window around one matched suffix:
// prefix bytes before the match and suffixLen bytes of absolute window
// length starting at the match (not "trailing context after the match" —
// spec.md §6 fixes this interpretation explicitly over the alternative).
// suffixLen < 0 means "through the end of the sub-sequence".
func ExtractWindow(starts []int, headers []string, textLen int, rank, suffix, prefix, suffixLen int) Window {
	hit := Locate(starts, headers, rank, suffix)
	seqEnd := SequenceEnd(starts, hit.SequenceIndex, textLen)
	seqLen := seqEnd - starts[hit.SequenceIndex]

	start := hit.SequencePosition - prefix
	if start < 0 {
		start = 0
	}

	end := seqLen
	if suffixLen >= 0 {
		end = hit.SequencePosition + suffixLen
		if end > seqLen {
			end = seqLen
		}
	}

	return Window{
		Hit:          hit,
		Start:        start,
		End:          end,
		SuffixOffset: hit.SequencePosition - start,
	}
}
