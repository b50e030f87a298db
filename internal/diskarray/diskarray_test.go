package diskarray

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shenwei356/sufrindex/internal/intwidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// suf_by_rank mirrors original_source/libsufr/src/sufr_file.rs's
// test_file_access fixture for the "AABABABABBABAB#" text.
var sufByRank = []uint32{14, 0, 12, 10, 1, 3, 5, 7, 13, 11, 9, 2, 4, 6, 8}

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "abba.sa")
	buf := intwidth.EncodeSlice(sufByRank)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestGet(t *testing.T) {
	path := writeFixture(t)
	d, err := Open[uint32](path, 0, len(sufByRank))
	require.NoError(t, err)
	defer d.Close()

	for rank, want := range sufByRank {
		got, ok := d.Get(rank)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := d.Get(len(sufByRank))
	assert.False(t, ok)
}

func TestGetRangeInvalid(t *testing.T) {
	path := writeFixture(t)
	d, err := Open[uint32](path, 0, 15)
	require.NoError(t, err)
	defer d.Close()

	_, err = d.GetRange(1, 100)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestGetRange(t *testing.T) {
	path := writeFixture(t)
	d, err := Open[uint32](path, 0, 15)
	require.NoError(t, err)
	defer d.Close()

	got, err := d.GetRange(8, 9)
	require.NoError(t, err)
	assert.Equal(t, []uint32{13}, got)

	got, err = d.GetRange(8, 13)
	require.NoError(t, err)
	assert.Equal(t, []uint32{13, 11, 9, 2, 4}, got)

	got, err = d.GetRange(1, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 12, 10, 1, 3, 5, 7}, got)
}

func TestIter(t *testing.T) {
	path := writeFixture(t)
	d, err := Open[uint32](path, 0, len(sufByRank))
	require.NoError(t, err)
	defer d.Close()

	var all []uint32
	for {
		v, ok := d.Iter()
		if !ok {
			break
		}
		all = append(all, v)
	}
	assert.Equal(t, sufByRank, all)

	d.Reset()
	v, ok := d.Iter()
	require.True(t, ok)
	assert.Equal(t, sufByRank[0], v)
}

func TestBaseOffset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combined.bin")
	header := []byte("HDR-PREFIX")
	body := intwidth.EncodeSlice(sufByRank)
	require.NoError(t, os.WriteFile(path, append(append([]byte{}, header...), body...), 0o644))

	d, err := Open[uint32](path, int64(len(header)), len(sufByRank))
	require.NoError(t, err)
	defer d.Close()

	got, ok := d.Get(2)
	require.True(t, ok)
	assert.Equal(t, sufByRank[2], got)
	assert.Equal(t, int64(len(sufByRank)*4), d.Size())
}
