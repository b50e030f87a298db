// Package sufrindex is the query-time engine over a previously built
// suffix-array/LCP index file: count, locate, and extract operations
// driven by the LCP-skip search kernel in internal/search, dispatched in
// parallel by internal/batch, and mapped back to sub-sequence coordinates
// by internal/coords.
//
// Index construction (SA/LCP computation), FASTA/FASTQ parsing, and result
// serialization are not this package's concern — see cmd/ for the thin CLI
// that drives it.
package sufrindex

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/shenwei356/sufrindex/internal/coords"
	"github.com/shenwei356/sufrindex/internal/diskarray"
	"github.com/shenwei356/sufrindex/internal/intwidth"
	"github.com/shenwei356/sufrindex/internal/sacache"
	"github.com/shenwei356/sufrindex/internal/search"
	"github.com/shenwei356/sufrindex/internal/sufrfile"
)

// Index is an opened index file plus whatever compressed-SA state has been
// installed by a prior search. It is safe for concurrent Count/Locate/
// Extract calls: text, sequence_starts, and headers are read-only after
// Open, and resident-SA installation is guarded by mu.
type Index[W intwidth.Uint] struct {
	file *sufrfile.File[W]

	mu        sync.Mutex
	residentQ int // -1 means "nothing resident yet"
	resident  sacache.Subsampled[W]
}

// Open reads the header of the index file at path and returns a ready-to-
// query Index. It does not load a compressed SA; that happens lazily on
// the first non-low-memory search, per spec.md §4.4/§4.6.
func Open[W intwidth.Uint](path string) (*Index[W], error) {
	f, err := sufrfile.Open[W](path)
	if err != nil {
		return nil, err
	}
	return &Index[W]{file: f, residentQ: -1}, nil
}

// Close releases the index's SA/LCP file handles.
func (idx *Index[W]) Close() error {
	return idx.file.Close()
}

// Check verifies invariants 2 and 3 of spec.md §3 (suffix ordering and LCP
// exactness) in a single forward pass and returns every discrepancy found;
// it never aborts early and never mutates the index.
func (idx *Index[W]) Check() ([]string, error) {
	return idx.file.Check()
}

// StringAt returns text[pos:min(pos+length, text_len)]. A nil length runs
// to the end of the text.
func (idx *Index[W]) StringAt(pos int, length *int) string {
	return idx.file.StringAt(pos, length)
}

// NumSuffixes is the size of the full suffix array.
func (idx *Index[W]) NumSuffixes() int {
	return int(idx.file.NumSuffixes)
}

// SearchOptions configures a Count/Locate/Extract batch, matching spec.md
// §6's "Options recognized".
type SearchOptions struct {
	Queries [][]byte

	// MaxQueryLen is the query length the resident SA is subsampled for in
	// this batch; a non-zero build-time cap wins when it is smaller. 0 means
	// "use the index's build-time cap if any, else no cap". It never
	// truncates comparisons.
	MaxQueryLen int

	// LowMemory serves the SA entirely from disk, skipping ensure_loaded.
	LowMemory bool

	// Workers bounds batch concurrency; 0 means runtime.NumCPU().
	Workers int

	// PrefixLen/SuffixLen apply to Extract only. SuffixLen < 0 means
	// "through the end of the sub-sequence" (spec.md §6's default).
	PrefixLen int
	SuffixLen int
}

func (o SearchOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// CountResult is one query's match count (find_suffixes = false semantics).
type CountResult struct {
	QueryNum int
	Query    []byte
	Count    int
}

// LocateResult is one query's matches mapped to sub-sequence coordinates.
type LocateResult struct {
	QueryNum int
	Query    []byte
	Hits     []coords.Hit
}

// ExtractResult is one query's matches with extracted context windows.
type ExtractResult struct {
	QueryNum int
	Query    []byte
	Windows  []coords.Window
}

// effectiveMaxQueryLen applies spec.md §4.6's capping rule: the index's
// build-time cap (if non-zero) always wins when it is smaller than what
// the caller asked for.
func (idx *Index[W]) effectiveMaxQueryLen(requested int) int {
	buildCap := int(intwidth.ToUint64(idx.file.MaxQueryLen))
	if buildCap == 0 {
		return requested
	}
	if requested <= 0 || requested > buildCap {
		return buildCap
	}
	return requested
}

// ensureLoaded implements spec.md §4.4's loading policy: load the full SA
// resident when Q equals the build-time cap (compression buys nothing),
// otherwise reuse an already-resident subsample built for the same Q, or
// consult/refresh the $HOME/.sufr cache.
func (idx *Index[W]) ensureLoaded(q int) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	buildCap := int(intwidth.ToUint64(idx.file.MaxQueryLen))
	if q == buildCap {
		if idx.residentQ == buildCap {
			return nil
		}
		vals, err := idx.file.SA.GetRange(0, int(idx.file.NumSuffixes))
		if err != nil {
			return err
		}
		idx.resident = sacache.Subsampled[W]{Resident: vals}
		idx.residentQ = buildCap
		return nil
	}

	if idx.residentQ == q {
		return nil
	}

	build := func() (sacache.Subsampled[W], error) {
		n := int(idx.file.NumSuffixes)
		sa, err := idx.file.SA.GetRange(0, n)
		if err != nil {
			return sacache.Subsampled[W]{}, err
		}
		lcp, err := idx.file.LCP.GetRange(0, n)
		if err != nil {
			return sacache.Subsampled[W]{}, err
		}
		return sacache.Subsample(sa, lcp, q), nil
	}

	sub, err := sacache.EnsureLoaded[W](idx.file.Path, q, build)
	if err != nil {
		return err
	}
	idx.resident = sub
	idx.residentQ = q
	return nil
}

// newKernel builds a search.Kernel for one query's worker. Low-memory mode
// and the resident-SA snapshot each get a fresh SA file handle, since
// diskarray.DiskArray is not safe for concurrent use (spec.md §4.2/§5).
//
// The kernel's comparator is capped only by the index's build-time
// max_query_len (0 meaning uncapped) — never by a caller-supplied
// SearchOptions.MaxQueryLen, which is a compression hint for
// ensureLoaded/Subsample only (spec.md §4.5/inv. 5 reserve compare
// truncation for the build-time cap; a shorter requested cap must not make
// compare() stop early and over-report matches).
func (idx *Index[W]) newKernel(lowMemory bool) (*search.Kernel[W], func(), error) {
	sa, err := diskarray.Open[W](idx.file.Path, int64(idx.file.SAPos), int(idx.file.NumSuffixes))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { sa.Close() }

	k := &search.Kernel[W]{
		Text:        idx.file.Text,
		IsDNA:       idx.file.IsDNA,
		MaxQueryLen: int(intwidth.ToUint64(idx.file.MaxQueryLen)),
		LowMemory:   lowMemory,
		SAFile:      sa,
		NumSuffixes: int(idx.file.NumSuffixes),
	}
	if !lowMemory {
		idx.mu.Lock()
		k.Resident = idx.resident.Resident
		k.Ranks = idx.resident.Ranks
		idx.mu.Unlock()
	}
	return k, closeFn, nil
}

// prepare resolves opts' effective compression hint Q and, unless running
// low-memory, ensures a resident SA built for that Q is loaded. Q is purely
// a compression hint here — it never reaches search.Kernel.MaxQueryLen.
func (idx *Index[W]) prepare(opts SearchOptions) error {
	if opts.LowMemory {
		return nil
	}
	q := idx.effectiveMaxQueryLen(opts.MaxQueryLen)
	if err := idx.ensureLoaded(q); err != nil {
		return errors.Wrap(err, "loading resident SA")
	}
	return nil
}

// Count returns, for each query, the number of suffixes with that query as
// a prefix — find_suffixes = false: the rank range only, not the matching
// suffix positions.
func (idx *Index[W]) Count(ctx context.Context, opts SearchOptions) ([]CountResult, error) {
	if err := idx.prepare(opts); err != nil {
		return nil, err
	}

	return runBatch(ctx, idx, opts, func(k *search.Kernel[W], i int, query []byte, left, right int) (CountResult, error) {
		count := right - left
		if !k.LowMemory && len(k.Ranks) > 0 && left < right {
			// [left, right) indexes representatives of a compressed SA;
			// count the original ranks their classes cover.
			hi := k.NumSuffixes
			if right < len(k.Ranks) {
				hi = k.Ranks[right]
			}
			count = hi - k.Ranks[left]
		}
		return CountResult{QueryNum: i, Query: query, Count: count}, nil
	})
}

// Locate returns, for each query, every matching suffix mapped to its
// sub-sequence name and offset.
func (idx *Index[W]) Locate(ctx context.Context, opts SearchOptions) ([]LocateResult, error) {
	if err := idx.prepare(opts); err != nil {
		return nil, err
	}

	starts := idx.intStarts()
	return runBatch(ctx, idx, opts, func(k *search.Kernel[W], i int, query []byte, left, right int) (LocateResult, error) {
		ranks, suffixes, err := k.Suffixes(left, right)
		if err != nil {
			return LocateResult{}, err
		}
		hits := make([]coords.Hit, len(ranks))
		for j := range ranks {
			hits[j] = coords.Locate(starts, idx.file.Headers, ranks[j], suffixes[j])
		}
		return LocateResult{QueryNum: i, Query: query, Hits: hits}, nil
	})
}

// Extract returns, for each query, every match's surrounding context
// window: opts.PrefixLen bytes before the match and an absolute window of
// opts.SuffixLen bytes starting at the match (opts.SuffixLen < 0 runs to
// the end of the sub-sequence), per spec.md §6's fixed interpretation.
func (idx *Index[W]) Extract(ctx context.Context, opts SearchOptions) ([]ExtractResult, error) {
	if err := idx.prepare(opts); err != nil {
		return nil, err
	}

	starts := idx.intStarts()
	textLen := int(idx.file.TextLen)
	return runBatch(ctx, idx, opts, func(k *search.Kernel[W], i int, query []byte, left, right int) (ExtractResult, error) {
		ranks, suffixes, err := k.Suffixes(left, right)
		if err != nil {
			return ExtractResult{}, err
		}
		windows := make([]coords.Window, len(ranks))
		for j := range ranks {
			windows[j] = coords.ExtractWindow(starts, idx.file.Headers, textLen, ranks[j], suffixes[j], opts.PrefixLen, opts.SuffixLen)
		}
		return ExtractResult{QueryNum: i, Query: query, Windows: windows}, nil
	})
}

// WindowText returns the bytes covered by an extracted window, resolving
// its sub-sequence-relative Start/End back to an absolute text position.
func (idx *Index[W]) WindowText(w coords.Window) string {
	starts := idx.intStarts()
	abs := starts[w.SequenceIndex] + w.Start
	length := w.End - w.Start
	return idx.file.StringAt(abs, &length)
}

func (idx *Index[W]) intStarts() []int {
	starts := make([]int, len(idx.file.SequenceStarts))
	for i, s := range idx.file.SequenceStarts {
		starts[i] = int(intwidth.ToUint64(s))
	}
	return starts
}
