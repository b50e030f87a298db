// Package sufrfile implements the index loader (C3): parsing the header of
// a sufr index file, mapping the positions of text/SA/LCP, eagerly loading
// text/sequence_starts/headers, and exposing SA/LCP through diskarray
// handles. It also implements Check, the invariant-verification pass.
package sufrfile

import (
	"os"

	"github.com/pkg/errors"
	"github.com/shenwei356/sufrindex/internal/diskarray"
	"github.com/shenwei356/sufrindex/internal/intwidth"
)

// Version is the only on-disk format version this package understands.
// Any other value in the header's first byte is rejected as MalformedHeader.
const Version uint8 = 1

// metaLen is the size in bytes of the leading {version, is_dna,
// allow_ambiguity, ignore_softmask} block.
const metaLen = 4

// ErrMalformedHeader is returned for an unrecognized version or a header
// that is truncated/inconsistent.
var ErrMalformedHeader = errors.New("malformed index header")

// File is the in-memory descriptor produced by Open: the parsed header,
// eagerly loaded text/sequence_starts/headers, and diskarray handles onto
// the SA and LCP arrays.
type File[W intwidth.Uint] struct {
	Path string

	Version         uint8
	IsDNA           bool
	AllowAmbiguity  bool
	IgnoreSoftmask  bool
	TextLen         uint64
	TextPos         uint64
	SAPos           uint64
	LCPPos          uint64
	NumSuffixes     uint64
	MaxQueryLen     W
	NumSequences    W
	SequenceStarts  []W
	Headers         []string
	Text            []byte

	SA  *diskarray.DiskArray[W]
	LCP *diskarray.DiskArray[W]
}

// Open reads the header block of path, constructs diskarray handles for SA
// and LCP, and eagerly loads sequence_starts, text, and headers.
func Open[W intwidth.Uint](path string) (*File[W], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: opening index file", path)
	}
	defer f.Close()

	meta := make([]byte, metaLen)
	if _, err := f.ReadAt(meta, 0); err != nil {
		return nil, errors.Wrapf(ErrMalformedHeader, "%s: reading meta: %v", path, err)
	}
	version := meta[0]
	if version != Version {
		return nil, errors.Wrapf(ErrMalformedHeader, "%s: unrecognized version %d", path, version)
	}

	u64At := func(off int64) (uint64, error) {
		buf := make([]byte, 8)
		if _, err := f.ReadAt(buf, off); err != nil {
			return 0, errors.Wrapf(ErrMalformedHeader, "%s: truncated header at %d: %v", path, off, err)
		}
		return intwidth.ReadUint64(buf), nil
	}

	off := int64(metaLen)
	textLen, err := u64At(off)
	if err != nil {
		return nil, err
	}
	off += 8
	textPos, err := u64At(off)
	if err != nil {
		return nil, err
	}
	off += 8
	saPos, err := u64At(off)
	if err != nil {
		return nil, err
	}
	off += 8
	lcpPos, err := u64At(off)
	if err != nil {
		return nil, err
	}
	off += 8
	numSuffixes, err := u64At(off)
	if err != nil {
		return nil, err
	}
	off += 8

	width := intwidth.Size[W]()
	wAt := func(o int64) (W, error) {
		buf := make([]byte, width)
		if _, err := f.ReadAt(buf, o); err != nil {
			return 0, errors.Wrapf(ErrMalformedHeader, "%s: truncated header at %d: %v", path, o, err)
		}
		return intwidth.Get[W](buf, 0), nil
	}

	maxQueryLen, err := wAt(off)
	if err != nil {
		return nil, err
	}
	off += int64(width)
	numSequences, err := wAt(off)
	if err != nil {
		return nil, err
	}
	off += int64(width)

	numSeq := int(intwidth.ToUint64(numSequences))
	startsBuf := make([]byte, numSeq*width)
	if numSeq > 0 {
		if _, err := f.ReadAt(startsBuf, off); err != nil {
			return nil, errors.Wrapf(ErrMalformedHeader, "%s: truncated sequence_starts: %v", path, err)
		}
	}
	sequenceStarts := intwidth.DecodeSlice[W](startsBuf, numSeq)
	off += int64(len(startsBuf))

	text := make([]byte, textLen)
	if textLen > 0 {
		if _, err := f.ReadAt(text, int64(textPos)); err != nil {
			return nil, errors.Wrapf(ErrMalformedHeader, "%s: truncated text: %v", path, err)
		}
	}

	sa, err := diskarray.Open[W](path, int64(saPos), int(numSuffixes))
	if err != nil {
		return nil, err
	}
	lcp, err := diskarray.Open[W](path, int64(lcpPos), int(numSuffixes))
	if err != nil {
		sa.Close()
		return nil, err
	}

	headersOff := int64(lcpPos) + int64(numSuffixes)*int64(width)
	headers, err := readHeaders(f, headersOff)
	if err != nil {
		sa.Close()
		lcp.Close()
		return nil, errors.Wrap(err, "reading headers blob")
	}

	return &File[W]{
		Path:           path,
		Version:        version,
		IsDNA:          meta[1] == 1,
		AllowAmbiguity: meta[2] == 1,
		IgnoreSoftmask: meta[3] == 1,
		TextLen:        textLen,
		TextPos:        textPos,
		SAPos:          saPos,
		LCPPos:         lcpPos,
		NumSuffixes:    numSuffixes,
		MaxQueryLen:    maxQueryLen,
		NumSequences:   numSequences,
		SequenceStarts: sequenceStarts,
		Headers:        headers,
		Text:           text,
		SA:             sa,
		LCP:            lcp,
	}, nil
}

// Close releases the SA and LCP file handles.
func (f *File[W]) Close() error {
	err1 := f.SA.Close()
	err2 := f.LCP.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// StringAt returns text[pos:min(pos+len, text_len)] as a string. If len is
// nil, the string runs to the end of the text.
func (f *File[W]) StringAt(pos int, length *int) string {
	end := len(f.Text)
	if length != nil {
		if e := pos + *length; e < end {
			end = e
		}
	}
	if pos > end {
		return ""
	}
	return string(f.Text[pos:end])
}

// Check verifies invariants 2 and 3 of spec.md §3 with a single forward
// pass: at rank i it recomputes the LCP of sa[i-1] and sa[i] by byte
// compare, capped at TextLen, and confirms the suffix ordering. It returns
// every discrepancy found; it never mutates the index or aborts early.
func (f *File[W]) Check() ([]string, error) {
	var errs []string
	var havePrev bool
	var prevSA int

	textLen := int(f.TextLen)
	f.SA.Reset()
	f.LCP.Reset()

	for i := 0; i < int(f.NumSuffixes); i++ {
		curSA64, ok := f.SA.Get(i)
		if !ok {
			return nil, errors.Errorf("%s: missing SA entry at rank %d", f.Path, i)
		}
		curLCP64, ok := f.LCP.Get(i)
		if !ok {
			return nil, errors.Errorf("%s: missing LCP entry at rank %d", f.Path, i)
		}
		curSA := int(intwidth.ToUint64(curSA64))
		curLCP := int(intwidth.ToUint64(curLCP64))

		if havePrev {
			checkLCP := f.findLCP(curSA, prevSA, textLen)
			if checkLCP != curLCP {
				errs = append(errs, errors.Errorf(
					"%d (r. %d): LCP %d should be %d", curSA, i, curLCP, checkLCP).Error())
			}

			prevByte, prevOK := f.byteAt(prevSA + checkLCP)
			curByte, curOK := f.byteAt(curSA + checkLCP)
			isLess := compareByteOrEnd(prevByte, prevOK, curByte, curOK)
			if !isLess {
				errs = append(errs, errors.Errorf(
					"%d (r. %d): greater than previous", curSA, i).Error())
			}
		}
		prevSA = curSA
		havePrev = true
	}
	return errs, nil
}

func (f *File[W]) byteAt(pos int) (byte, bool) {
	if pos < 0 || pos >= len(f.Text) {
		return 0, false
	}
	return f.Text[pos], true
}

// compareByteOrEnd reports whether a < b under the rule that end-of-text
// (ok=false) is less than any byte.
func compareByteOrEnd(a byte, aok bool, b byte, bok bool) bool {
	switch {
	case !aok && bok:
		return true
	case aok && bok:
		return a < b
	default:
		return false
	}
}

// findLCP computes the length of the common prefix of text[start1:] and
// text[start2:], capped so neither index runs past textLen.
func (f *File[W]) findLCP(start1, start2, textLen int) int {
	end1 := start1 + textLen
	if end1 > len(f.Text) {
		end1 = len(f.Text)
	}
	end2 := start2 + textLen
	if end2 > len(f.Text) {
		end2 = len(f.Text)
	}
	n := 0
	for start1+n < end1 && start2+n < end2 && f.Text[start1+n] == f.Text[start2+n] {
		n++
	}
	return n
}
