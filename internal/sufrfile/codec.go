package sufrfile

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/shenwei356/sufrindex/internal/intwidth"
)

// readHeaders deserializes the trailing headers blob: a uint64 count
// followed by, for each header, a uint64 byte length and the UTF-8 bytes.
func readHeaders(f *os.File, offset int64) ([]string, error) {
	rest, err := io.ReadAll(io.NewSectionReader(f, offset, 1<<62))
	if err != nil {
		return nil, errors.Wrap(err, "reading headers blob")
	}
	if len(rest) == 0 {
		return nil, nil
	}
	if len(rest) < 8 {
		return nil, errors.New("truncated headers blob")
	}
	count := intwidth.ReadUint64(rest)
	rest = rest[8:]
	headers := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		if len(rest) < 8 {
			return nil, errors.New("truncated headers blob")
		}
		n := intwidth.ReadUint64(rest)
		rest = rest[8:]
		if uint64(len(rest)) < n {
			return nil, errors.New("truncated headers blob")
		}
		headers = append(headers, string(rest[:n]))
		rest = rest[n:]
	}
	return headers, nil
}

// EncodeHeaders is the write-side counterpart of readHeaders, used by test
// fixtures (and any future index-writing tool) to produce the trailing
// headers blob in the exact format Open expects.
func EncodeHeaders(headers []string) []byte {
	buf := make([]byte, 8)
	intwidth.PutUint64(buf, uint64(len(headers)))
	for _, h := range headers {
		lenBuf := make([]byte, 8)
		intwidth.PutUint64(lenBuf, uint64(len(h)))
		buf = append(buf, lenBuf...)
		buf = append(buf, h...)
	}
	return buf
}

// WriteOptions describes the logical contents of an index file, used by
// WriteForTest to build fixtures in the exact on-disk layout Open parses.
type WriteOptions[W intwidth.Uint] struct {
	IsDNA          bool
	AllowAmbiguity bool
	IgnoreSoftmask bool
	MaxQueryLen    W
	SequenceStarts []W
	Text           []byte
	SA             []W
	LCP            []W
	Headers        []string
}

// WriteForTest serializes opts into the on-disk index format at path. It
// exists to build test fixtures against the exact byte layout Open
// consumes; this package does not implement SA/LCP construction (out of
// scope per spec.md §1), only the serialization shape.
func WriteForTest[W intwidth.Uint](path string, opts WriteOptions[W]) error {
	width := intwidth.Size[W]()
	numSequences := W(intwidth.FromUint64[W](uint64(len(opts.SequenceStarts))))

	meta := []byte{Version, 0, 0, 0}
	if opts.IsDNA {
		meta[1] = 1
	}
	if opts.AllowAmbiguity {
		meta[2] = 1
	}
	if opts.IgnoreSoftmask {
		meta[3] = 1
	}

	var buf []byte
	buf = append(buf, meta...)

	u64 := make([]byte, 8)
	putU64 := func(v uint64) {
		intwidth.PutUint64(u64, v)
		buf = append(buf, u64...)
	}
	putU64(uint64(len(opts.Text)))

	// text_pos, sa_pos, lcp_pos are filled in after we know the header size.
	headerFixedLen := len(buf) + 8*3 + 8 + width*2 + width*len(opts.SequenceStarts)
	textPos := headerFixedLen
	saPos := textPos + len(opts.Text)
	lcpPos := saPos + width*len(opts.SA)

	putU64(uint64(textPos))
	putU64(uint64(saPos))
	putU64(uint64(lcpPos))
	putU64(uint64(len(opts.SA)))

	wBuf := make([]byte, width)
	putW := func(v W) {
		intwidth.Put(wBuf, 0, v)
		buf = append(buf, wBuf...)
	}
	putW(opts.MaxQueryLen)
	putW(numSequences)
	for _, s := range opts.SequenceStarts {
		putW(s)
	}

	buf = append(buf, opts.Text...)
	buf = append(buf, intwidth.EncodeSlice(opts.SA)...)
	buf = append(buf, intwidth.EncodeSlice(opts.LCP)...)
	buf = append(buf, EncodeHeaders(opts.Headers)...)

	return os.WriteFile(path, buf, 0o644)
}
