// Package sacache implements the SA compressor and on-disk cache (C4):
// subsampling the suffix array by an LCP threshold so that batches of
// short queries can run from a resident array instead of hitting disk per
// probe, plus a per-user cache keyed by that threshold and the index file.
package sacache

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"

	"github.com/shenwei356/sufrindex/internal/intwidth"
)

// Subsampled is a compressed-or-full resident SA: Resident holds one
// representative suffix per equivalence class (or the full SA, if no
// compression was possible), and Ranks holds the original-SA rank of each
// representative — empty when Resident is the uncompressed full SA.
type Subsampled[W intwidth.Uint] struct {
	Resident []W
	Ranks    []int
}

// Subsample walks the LCP array and keeps one representative suffix per
// run of consecutive entries whose LCP is at least threshold Q: any two
// suffixes in such a run share a common prefix of length >= Q, so they are
// indistinguishable to a query no longer than Q and can be merged into one
// equivalence class. lcp[i] is the LCP between sa[i-1] and sa[i]
// (lcp[0] is unused, matching the on-disk convention).
//
// Q == 0 disables compression: every suffix is its own class, and Ranks is
// left empty to signal "resident is the full SA" to search.Kernel.
func Subsample[W intwidth.Uint](sa, lcp []W, q int) Subsampled[W] {
	if q <= 0 {
		return Subsampled[W]{Resident: sa}
	}

	resident := make([]W, 0, len(sa))
	ranks := make([]int, 0, len(sa))
	for i := range sa {
		if i > 0 && int(intwidth.ToUint64(lcp[i])) >= q {
			continue // still inside the current equivalence run
		}
		resident = append(resident, sa[i])
		ranks = append(ranks, i)
	}

	if len(ranks) == len(sa) {
		// No run was long enough to merge; compression bought nothing,
		// so report the uncompressed shape.
		return Subsampled[W]{Resident: resident}
	}
	return Subsampled[W]{Resident: resident, Ranks: ranks}
}

// cacheDirName is the fixed directory under $HOME holding subsample
// caches, matching the reference implementation's convention.
const cacheDirName = ".sufr"

// CacheDir returns $HOME/.sufr, creating it if it does not yet exist.
func CacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locating home directory")
	}
	dir := filepath.Join(home, cacheDirName)

	ok, err := pathutil.Exists(dir)
	if err != nil {
		return "", errors.Wrapf(err, "checking cache directory %s", dir)
	}
	if !ok {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrapf(err, "creating cache directory %s", dir)
		}
	}
	return dir, nil
}

// cachePath returns the cache file path for a given query threshold Q and
// index file, named locate-{Q}-{basename} per the reference implementation.
func cachePath(cacheDir, indexPath string, q int) string {
	base := filepath.Base(indexPath)
	return filepath.Join(cacheDir, "locate-"+strconv.Itoa(q)+"-"+base)
}

// EnsureLoaded returns the resident subsample for (indexPath, q), reusing a
// cache file at $HOME/.sufr/locate-{q}-{basename(indexPath)} when it exists
// and is not older than indexPath; otherwise it calls build to recompute
// the subsample from the full SA/LCP arrays and writes a fresh cache file.
//
// build is expected to read the full SA/LCP (e.g. via diskarray.ForEach)
// and call Subsample; it is supplied by the caller so this package does
// not need to know how SA/LCP are stored.
func EnsureLoaded[W intwidth.Uint](indexPath string, q int, build func() (Subsampled[W], error)) (Subsampled[W], error) {
	dir, err := CacheDir()
	if err != nil {
		return Subsampled[W]{}, err
	}
	path := cachePath(dir, indexPath, q)

	if fresh, err := isFresh(path, indexPath); err == nil && fresh {
		cached, err := readCache[W](path)
		if err == nil {
			return cached, nil
		}
		// Fall through to rebuild on any read/decode failure.
	}

	sub, err := build()
	if err != nil {
		return Subsampled[W]{}, err
	}
	if err := writeCache(path, sub); err != nil {
		return Subsampled[W]{}, errors.Wrapf(err, "writing cache %s", path)
	}
	return sub, nil
}

// isFresh reports whether the cache file at cachePath exists and is not
// older than indexPath — a stale or missing cache silently triggers a
// rebuild rather than an error.
func isFresh(cachePath, indexPath string) (bool, error) {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	indexInfo, err := os.Stat(indexPath)
	if err != nil {
		return false, err
	}
	return !cacheInfo.ModTime().Before(indexInfo.ModTime()), nil
}

// Cache file layout: u64 resident count, resident[]W, u64 ranks count
// (0 means "uncompressed, Ranks empty"), ranks[]u64.
func writeCache[W intwidth.Uint](path string, sub Subsampled[W]) error {
	var buf []byte
	u64 := make([]byte, 8)

	putU64 := func(v uint64) {
		intwidth.PutUint64(u64, v)
		buf = append(buf, u64...)
	}

	putU64(uint64(len(sub.Resident)))
	buf = append(buf, intwidth.EncodeSlice(sub.Resident)...)

	putU64(uint64(len(sub.Ranks)))
	for _, r := range sub.Ranks {
		putU64(uint64(r))
	}

	return os.WriteFile(path, buf, 0o644)
}

func readCache[W intwidth.Uint](path string) (Subsampled[W], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Subsampled[W]{}, err
	}
	if len(data) < 8 {
		return Subsampled[W]{}, errors.New("truncated cache file")
	}
	residentCount := intwidth.ReadUint64(data)
	data = data[8:]

	width := intwidth.Size[W]()
	residentBytes := int(residentCount) * width
	if len(data) < residentBytes+8 {
		return Subsampled[W]{}, errors.New("truncated cache file")
	}
	resident := intwidth.DecodeSlice[W](data[:residentBytes], int(residentCount))
	data = data[residentBytes:]

	ranksCount := intwidth.ReadUint64(data)
	data = data[8:]
	if uint64(len(data)) < ranksCount*8 {
		return Subsampled[W]{}, errors.New("truncated cache file")
	}
	ranks := make([]int, ranksCount)
	for i := range ranks {
		ranks[i] = int(intwidth.ReadUint64(data))
		data = data[8:]
	}

	return Subsampled[W]{Resident: resident, Ranks: ranks}, nil
}
