// Package search implements the search kernel (C5): LCP-skip binary search
// for the half-open SA range matching a query, plus suffix-range
// enumeration that respects the compressed-SA expansion contract.
package search

import (
	"github.com/pkg/errors"
	"github.com/shenwei356/sufrindex/internal/diskarray"
	"github.com/shenwei356/sufrindex/internal/dnacode"
	"github.com/shenwei356/sufrindex/internal/intwidth"
)

// Kernel holds everything one worker needs to answer queries against a
// single index: a read-only view of the text, a per-worker SA file handle,
// and (in non-low-memory mode) a borrow of the resident SA — which may be
// the full SA or a compressed subsample — and its paired ranks vector.
//
// A Kernel is not safe for concurrent use; callers in a parallel batch must
// construct one per worker, each with its own SAFile.
type Kernel[W intwidth.Uint] struct {
	Text        []byte
	IsDNA       bool
	MaxQueryLen int // 0 means no cap

	LowMemory bool
	SAFile    *diskarray.DiskArray[W] // always present; used directly in low-memory mode, and for expansion lookups otherwise
	Resident  []W                     // nil in low-memory mode
	Ranks     []int                   // empty when Resident is the uncompressed full SA

	NumSuffixes int
}

// domainLen is the number of ranks the binary search runs over: the full
// SA size in low-memory mode, otherwise the (possibly compressed) resident
// array's length.
func (k *Kernel[W]) domainLen() int {
	if k.LowMemory {
		return k.NumSuffixes
	}
	return len(k.Resident)
}

// saAt returns the absolute suffix start position for rank (a rank in the
// search domain: original-SA rank in low-memory mode, resident-array index
// otherwise).
func (k *Kernel[W]) saAt(rank int) (int, error) {
	if k.LowMemory {
		v, ok := k.SAFile.Get(rank)
		if !ok {
			return 0, errors.Errorf("rank %d out of range", rank)
		}
		return int(intwidth.ToUint64(v)), nil
	}
	return int(intwidth.ToUint64(k.Resident[rank])), nil
}

// cmpOrder mirrors Rust's Ordering from the suffix's point of view:
// suffix.compare(query). -1 = suffix < query, 0 = suffix has query as a
// prefix (a match), 1 = suffix > query.
type cmpOrder int

const (
	less    cmpOrder = -1
	equal   cmpOrder = 0
	greater cmpOrder = 1
)

// compare compares text[suffixStart+skip:] against query[skip:], stopping
// at depth min(len(query), k.MaxQueryLen), or len(query) when
// k.MaxQueryLen is 0. It returns
// the ordering of the suffix relative to the query and the number of
// additional equal bytes observed beyond skip — so the total matched depth
// is skip+lcp. End-of-text is treated as less than any byte.
func (k *Kernel[W]) compare(query []byte, suffixStart, skip int) (cmpOrder, int) {
	limit := len(query)
	if k.MaxQueryLen > 0 && k.MaxQueryLen < limit {
		limit = k.MaxQueryLen
	}
	i := skip
	for i < limit {
		if k.IsDNA {
			remain := limit - i
			n := remain
			if n > dnacode.MaxBases {
				n = dnacode.MaxBases
			}
			textEnd := suffixStart + i + n
			if textEnd <= len(k.Text) {
				qCode, qOK := dnacode.Encode(query[i : i+n])
				tCode, tOK := dnacode.Encode(k.Text[suffixStart+i : textEnd])
				if qOK && tOK {
					matched := int(dnacode.LongestCommonPrefix(qCode, tCode, uint8(n), uint8(n)))
					if matched == n {
						i += n
						continue
					}
					pos := i + matched
					if k.Text[suffixStart+pos] < query[pos] {
						return less, pos - skip
					}
					return greater, pos - skip
				}
			}
		}

		pos := suffixStart + i
		if pos >= len(k.Text) {
			return less, i - skip
		}
		tb := k.Text[pos]
		qb := query[i]
		if tb != qb {
			if tb < qb {
				return less, i - skip
			}
			return greater, i - skip
		}
		i++
	}
	return equal, i - skip
}

// FindRange performs the two LCP-skip binary searches of spec.md §4.5 and
// returns the half-open SA range [left, right) of suffixes starting with
// query. An empty query matches the entire domain (every suffix has the
// empty string as a prefix), per this implementation's resolution of the
// spec's "empty query" open question.
func (k *Kernel[W]) FindRange(query []byte) (left, right int, err error) {
	n := k.domainLen()
	if len(query) == 0 {
		return 0, n, nil
	}

	left, err = k.findBoundary(query, n, false)
	if err != nil {
		return 0, 0, err
	}
	right, err = k.findBoundary(query, n, true)
	if err != nil {
		return 0, 0, err
	}
	return left, right, nil
}

// findBoundary runs one side of the two binary searches. findRight=false
// finds the first rank whose suffix is >= query (left boundary);
// findRight=true finds the first rank whose suffix is > query (right
// boundary). Both maintain lcpLo/lcpHi, the known match depth of the
// current lo/hi boundary suffixes, so each probe only compares from
// skip = min(lcpLo, lcpHi) onward (the Manber-Myers trick).
func (k *Kernel[W]) findBoundary(query []byte, n int, findRight bool) (int, error) {
	lo, hi := 0, n
	lcpLo, lcpHi := 0, 0

	for lo < hi {
		mid := (lo + hi) / 2
		skip := lcpLo
		if lcpHi < skip {
			skip = lcpHi
		}
		suffixStart, err := k.saAt(mid)
		if err != nil {
			return 0, err
		}
		ord, lcp := k.compare(query, suffixStart, skip)
		depth := skip + lcp

		switch ord {
		case equal:
			if findRight {
				lo = mid + 1
				lcpLo = depth
			} else {
				hi = mid
			}
		case less:
			lo = mid + 1
			lcpLo = depth
		case greater:
			hi = mid
			lcpHi = depth
		}
	}
	return lo, nil
}

// Suffixes returns the original-SA ranks and their absolute suffix
// positions for the half-open domain range [left, right) returned by
// FindRange. In low-memory mode this is a single GetRange call on the SA
// file. In resident mode with an active compression (non-empty Ranks),
// each domain index k expands to the original rank range
// [Ranks[k], Ranks[k+1)) (or [Ranks[k], NumSuffixes) for the last entry) —
// and the suffix values for those expanded ranks are read from the SA
// file, since only the representatives are held in memory.
func (k *Kernel[W]) Suffixes(left, right int) (ranks []int, suffixes []int, err error) {
	if left >= right {
		return nil, nil, nil
	}

	if k.LowMemory {
		vals, err := k.SAFile.GetRange(left, right)
		if err != nil {
			return nil, nil, err
		}
		ranks = make([]int, len(vals))
		suffixes = make([]int, len(vals))
		for i, v := range vals {
			ranks[i] = left + i
			suffixes[i] = int(intwidth.ToUint64(v))
		}
		return ranks, suffixes, nil
	}

	if len(k.Ranks) == 0 {
		// Resident array is the uncompressed full SA: domain rank == original rank.
		ranks = make([]int, right-left)
		suffixes = make([]int, right-left)
		for i := left; i < right; i++ {
			ranks[i-left] = i
			suffixes[i-left] = int(intwidth.ToUint64(k.Resident[i]))
		}
		return ranks, suffixes, nil
	}

	origLo := k.Ranks[left]
	var origHi int
	if right < len(k.Ranks) {
		origHi = k.Ranks[right]
	} else {
		origHi = k.NumSuffixes
	}

	vals, err := k.SAFile.GetRange(origLo, origHi)
	if err != nil {
		return nil, nil, err
	}
	ranks = make([]int, len(vals))
	suffixes = make([]int, len(vals))
	for i, v := range vals {
		ranks[i] = origLo + i
		suffixes[i] = int(intwidth.ToUint64(v))
	}
	return ranks, suffixes, nil
}
