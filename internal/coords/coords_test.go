package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// "ACGTacgtNacgtACGT$", sequence_starts=[0,9], headers=["ABC","DEF"],
// suffix 11 -> (sequence_name="DEF", sequence_position=2). spec.md §8.
var starts = []int{0, 9}
var headers = []string{"ABC", "DEF"}
var textLen = 18

func TestSequenceForExample(t *testing.T) {
	assert.Equal(t, 1, SequenceFor(starts, 11))
	assert.Equal(t, 0, SequenceFor(starts, 0))
	assert.Equal(t, 0, SequenceFor(starts, 8))
	assert.Equal(t, 1, SequenceFor(starts, 9))
	assert.Equal(t, 1, SequenceFor(starts, 17))
}

func TestSequenceEnd(t *testing.T) {
	assert.Equal(t, 9, SequenceEnd(starts, 0, textLen))
	assert.Equal(t, textLen, SequenceEnd(starts, 1, textLen))
}

func TestLocateExample(t *testing.T) {
	hit := Locate(starts, headers, 4, 11)
	assert.Equal(t, "DEF", hit.SequenceName)
	assert.Equal(t, 2, hit.SequencePosition)
	assert.Equal(t, 1, hit.SequenceIndex)
}

func TestExtractWindowClampsAtSequenceStart(t *testing.T) {
	// suffix 9 is the very first base of DEF; a prefix of 5 must clamp to 0.
	w := ExtractWindow(starts, headers, textLen, 0, 9, 5, 4)
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 4, w.End)
	assert.Equal(t, 0, w.SuffixOffset)
}

func TestExtractWindowClampsAtSequenceEnd(t *testing.T) {
	// suffix 17 is the final position of DEF, the '$' sentinel (sub-sequence
	// length 9, position 8);
	// a generous suffixLen must clamp to the sub-sequence end.
	w := ExtractWindow(starts, headers, textLen, 0, 17, 2, 100)
	assert.Equal(t, 6, w.Start) // position 8 - prefix 2
	assert.Equal(t, 9, w.End)   // clamped to sequence length (9)
}

func TestExtractWindowNegativeSuffixLenMeansToEnd(t *testing.T) {
	w := ExtractWindow(starts, headers, textLen, 0, 11, 0, -1)
	assert.Equal(t, 2, w.Start)
	assert.Equal(t, 9, w.End)
}
