package sufrfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abbaFixture builds the "AABABABABBABAB#" index from spec.md §8, one
// sub-sequence named "1", W = uint32. Suffix order (rank -> suffix):
// 0:14 1:0 2:12 3:10 4:1 5:3 6:5 7:7 8:13 9:11 10:9 11:2 12:4 13:6 14:8
func abbaFixture(t *testing.T) string {
	t.Helper()
	text := []byte("AABABABABBABAB#")
	sa := []uint32{14, 0, 12, 10, 1, 3, 5, 7, 13, 11, 9, 2, 4, 6, 8}
	lcp := make([]uint32, len(sa))
	for i := 1; i < len(sa); i++ {
		a, b := int(sa[i-1]), int(sa[i])
		n := 0
		for a+n < len(text) && b+n < len(text) && text[a+n] == text[b+n] {
			n++
		}
		lcp[i] = uint32(n)
	}

	path := filepath.Join(t.TempDir(), "abba.sufr")
	err := WriteForTest(path, WriteOptions[uint32]{
		SequenceStarts: []uint32{0},
		Text:           text,
		SA:             sa,
		LCP:            lcp,
		Headers:        []string{"1"},
	})
	require.NoError(t, err)
	return path
}

func TestOpenHeader(t *testing.T) {
	path := abbaFixture(t)
	f, err := Open[uint32](path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, Version, f.Version)
	assert.EqualValues(t, 15, f.TextLen)
	assert.EqualValues(t, 15, f.NumSuffixes)
	assert.Equal(t, []uint32{0}, f.SequenceStarts)
	assert.Equal(t, []string{"1"}, f.Headers)
	assert.Equal(t, "AABABABABBABAB#", string(f.Text))
}

func TestOpenRejectsUnknownVersion(t *testing.T) {
	path := abbaFixture(t)
	// Corrupt the version byte.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] = 99
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Open[uint32](path)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestStringAt(t *testing.T) {
	path := abbaFixture(t)
	f, err := Open[uint32](path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "AABAB", f.StringAt(0, intPtr(5)))
	assert.Equal(t, "BABAB#", f.StringAt(9, nil))
	assert.Equal(t, "", f.StringAt(999, nil))
}

func TestCheckCleanIndex(t *testing.T) {
	path := abbaFixture(t)
	f, err := Open[uint32](path)
	require.NoError(t, err)
	defer f.Close()

	errs, err := f.Check()
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestCheckDetectsBadLCP(t *testing.T) {
	text := []byte("AABABABABBABAB#")
	sa := []uint32{14, 0, 12, 10, 1, 3, 5, 7, 13, 11, 9, 2, 4, 6, 8}
	lcp := []uint32{0, 0, 1, 2, 4, 6, 4, 2, 0, 1, 3, 5, 5, 3, 1}
	// Deliberately corrupt one LCP value.
	lcp[3] = 99

	path := filepath.Join(t.TempDir(), "bad.sufr")
	require.NoError(t, WriteForTest(path, WriteOptions[uint32]{
		SequenceStarts: []uint32{0},
		Text:           text,
		SA:             sa,
		LCP:            lcp,
		Headers:        []string{"1"},
	}))

	f, err := Open[uint32](path)
	require.NoError(t, err)
	defer f.Close()

	errs, err := f.Check()
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func intPtr(n int) *int { return &n }
