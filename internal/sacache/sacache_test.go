package sacache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Same abba fixture as internal/sufrfile and internal/search.
var abbaSA = []uint32{14, 0, 12, 10, 1, 3, 5, 7, 13, 11, 9, 2, 4, 6, 8}
var abbaLCP = []uint32{0, 0, 1, 2, 4, 6, 4, 2, 0, 1, 3, 5, 5, 3, 1}

func TestSubsampleNoCompressionAtZero(t *testing.T) {
	sub := Subsample(abbaSA, abbaLCP, 0)
	assert.Equal(t, abbaSA, sub.Resident)
	assert.Empty(t, sub.Ranks)
}

func TestSubsampleMergesLongRuns(t *testing.T) {
	sub := Subsample(abbaSA, abbaLCP, 1)
	// Every i > 0 with lcp[i] >= 1 is merged into the previous representative.
	for i, r := range sub.Ranks {
		if i > 0 {
			assert.Greater(t, r, sub.Ranks[i-1])
		}
	}
	assert.Less(t, len(sub.Resident), len(abbaSA))
	// The last representative is the SA entry at its recorded rank.
	assert.Equal(t, abbaSA[sub.Ranks[len(sub.Ranks)-1]], sub.Resident[len(sub.Resident)-1])
}

func TestEnsureLoadedBuildsAndReusesCache(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	indexPath := filepath.Join(t.TempDir(), "index.sufr")
	require.NoError(t, os.WriteFile(indexPath, []byte("fixture"), 0o644))

	builds := 0
	build := func() (Subsampled[uint32], error) {
		builds++
		return Subsample(abbaSA, abbaLCP, 1), nil
	}

	sub1, err := EnsureLoaded[uint32](indexPath, 1, build)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)

	sub2, err := EnsureLoaded[uint32](indexPath, 1, build)
	require.NoError(t, err)
	assert.Equal(t, 1, builds, "second call should hit the cache, not rebuild")
	assert.Equal(t, sub1.Resident, sub2.Resident)
	assert.Equal(t, sub1.Ranks, sub2.Ranks)
}

func TestEnsureLoadedRebuildsWhenIndexIsNewer(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	indexPath := filepath.Join(t.TempDir(), "index.sufr")
	require.NoError(t, os.WriteFile(indexPath, []byte("fixture"), 0o644))

	builds := 0
	build := func() (Subsampled[uint32], error) {
		builds++
		return Subsample(abbaSA, abbaLCP, 1), nil
	}

	_, err := EnsureLoaded[uint32](indexPath, 1, build)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(indexPath, future, future))

	_, err = EnsureLoaded[uint32](indexPath, 1, build)
	require.NoError(t, err)
	assert.Equal(t, 2, builds, "a newer index file must invalidate the cache")
}

func TestCachePathFormat(t *testing.T) {
	p := cachePath("/home/u/.sufr", "/data/foo.sufr", 7)
	assert.Equal(t, "/home/u/.sufr/locate-7-foo.sufr", p)
}
