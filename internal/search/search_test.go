package search

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenwei356/sufrindex/internal/diskarray"
	"github.com/shenwei356/sufrindex/internal/intwidth"
)

// text "AABABABABBABAB#", rank -> suffix:
// 0:14 1:0 2:12 3:10 4:1 5:3 6:5 7:7 8:13 9:11 10:9 11:2 12:4 13:6 14:8
var abbaText = []byte("AABABABABBABAB#")
var abbaSA = []uint32{14, 0, 12, 10, 1, 3, 5, 7, 13, 11, 9, 2, 4, 6, 8}

func writeSAFile(t *testing.T, sa []uint32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sa.bin")
	buf := intwidth.EncodeSlice(sa)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func lowMemKernel(t *testing.T) *Kernel[uint32] {
	t.Helper()
	path := writeSAFile(t, abbaSA)
	da, err := diskarray.Open[uint32](path, 0, len(abbaSA))
	require.NoError(t, err)
	t.Cleanup(func() { da.Close() })
	return &Kernel[uint32]{
		Text:        abbaText,
		LowMemory:   true,
		SAFile:      da,
		NumSuffixes: len(abbaSA),
	}
}

func residentKernel(t *testing.T) *Kernel[uint32] {
	t.Helper()
	path := writeSAFile(t, abbaSA)
	da, err := diskarray.Open[uint32](path, 0, len(abbaSA))
	require.NoError(t, err)
	t.Cleanup(func() { da.Close() })
	return &Kernel[uint32]{
		Text:        abbaText,
		LowMemory:   false,
		SAFile:      da,
		Resident:    abbaSA,
		NumSuffixes: len(abbaSA),
	}
}

func TestFindRangeLowMemory(t *testing.T) {
	k := lowMemKernel(t)

	left, right, err := k.FindRange([]byte("AB"))
	require.NoError(t, err)
	ranks, suffixes, err := k.Suffixes(left, right)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{12, 10, 1, 3, 5, 7}, suffixes)
	assert.Equal(t, right-left, len(ranks))
}

func TestFindRangeResidentMatchesLowMemory(t *testing.T) {
	kl := lowMemKernel(t)
	kr := residentKernel(t)

	for _, q := range []string{"A", "AB", "B", "BAB", "#", "ABAB", "ZZZ"} {
		ll, lr, err := kl.FindRange([]byte(q))
		require.NoError(t, err)
		rl, rr, err := kr.FindRange([]byte(q))
		require.NoError(t, err)
		assert.Equal(t, ll, rl, "query %q left boundary", q)
		assert.Equal(t, lr, rr, "query %q right boundary", q)
	}
}

func TestFindRangeNoMatch(t *testing.T) {
	k := lowMemKernel(t)
	left, right, err := k.FindRange([]byte("ZZZ"))
	require.NoError(t, err)
	assert.Equal(t, left, right)
}

func TestFindRangeEmptyQueryMatchesAll(t *testing.T) {
	k := lowMemKernel(t)
	left, right, err := k.FindRange(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, left)
	assert.Equal(t, len(abbaSA), right)
}

func TestFindRangeLongerPrefix(t *testing.T) {
	k := lowMemKernel(t)
	left, right, err := k.FindRange([]byte("BABAB"))
	require.NoError(t, err)
	_, suffixes, err := k.Suffixes(left, right)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{9, 2, 4}, suffixes)
}

// dnaText is built entirely of uppercase ACGT so the IsDNA fast path in
// compare() is exercised on every probe; sorted by plain unsigned byte order.
var dnaText = []byte("ACGTACGTTTT$")
var dnaSA = func() []uint32 {
	n := len(dnaText)
	sa := make([]uint32, n)
	for i := range sa {
		sa[i] = uint32(i)
	}
	sort.Slice(sa, func(i, j int) bool {
		return string(dnaText[sa[i]:]) < string(dnaText[sa[j]:])
	})
	return sa
}()

func dnaKernel(t *testing.T) *Kernel[uint32] {
	t.Helper()
	path := writeSAFile(t, dnaSA)
	da, err := diskarray.Open[uint32](path, 0, len(dnaSA))
	require.NoError(t, err)
	t.Cleanup(func() { da.Close() })
	return &Kernel[uint32]{
		Text:        dnaText,
		IsDNA:       true,
		LowMemory:   true,
		SAFile:      da,
		NumSuffixes: len(dnaSA),
	}
}

// TestFindRangeDNAFastPathIsCaseSensitive guards against the DNA fast path
// folding case: the SA is sorted by raw unsigned byte order, where 'a'
// (0x61) and 'A' (0x41) are different bytes and never equal, so a lowercase
// query against this all-uppercase text must match nothing.
func TestFindRangeDNAFastPathIsCaseSensitive(t *testing.T) {
	k := dnaKernel(t)

	left, right, err := k.FindRange([]byte("ACGT"))
	require.NoError(t, err)
	assert.NotEqual(t, left, right, "uppercase query must match the uppercase text")

	left, right, err = k.FindRange([]byte("acgt"))
	require.NoError(t, err)
	assert.Equal(t, left, right, "lowercase query must not match an all-uppercase DNA text")
}

func TestSuffixesWithCompressedRanks(t *testing.T) {
	// Simulate a compressed resident array holding representatives at
	// ranks {0, 4, 8, 11} of the full abba SA, grouping the domain into
	// four equivalence classes.
	repIdx := []int{0, 4, 8, 11}
	resident := make([]uint32, len(repIdx))
	for i, r := range repIdx {
		resident[i] = abbaSA[r]
	}

	path := writeSAFile(t, abbaSA)
	da, err := diskarray.Open[uint32](path, 0, len(abbaSA))
	require.NoError(t, err)
	defer da.Close()

	k := &Kernel[uint32]{
		Text:        abbaText,
		LowMemory:   false,
		SAFile:      da,
		Resident:    resident,
		Ranks:       repIdx,
		NumSuffixes: len(abbaSA),
	}

	ranks, suffixes, err := k.Suffixes(1, 3)
	require.NoError(t, err)
	// domain indices [1,3) expand to original ranks [Ranks[1], Ranks[3)) = [4, 11)
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9, 10}, ranks)
	assert.Equal(t, []int{int(abbaSA[4]), int(abbaSA[5]), int(abbaSA[6]), int(abbaSA[7]), int(abbaSA[8]), int(abbaSA[9]), int(abbaSA[10])}, suffixes)

	ranks, suffixes, err = k.Suffixes(3, 4)
	require.NoError(t, err)
	// last domain index expands through NumSuffixes.
	assert.Equal(t, []int{11, 12, 13, 14}, ranks)
	assert.Equal(t, []int{int(abbaSA[11]), int(abbaSA[12]), int(abbaSA[13]), int(abbaSA[14])}, suffixes)
}
