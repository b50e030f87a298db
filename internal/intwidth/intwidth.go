// Package intwidth provides a single code path for the two on-disk offset
// widths a sufr index may be built with: 32-bit and 64-bit unsigned
// integers. All arithmetic on offsets happens after conversion to int/uint,
// and results are reduced back to W only when they must be stored.
package intwidth

import "encoding/binary"

// Uint is the set of on-disk offset widths a sufr index supports.
type Uint interface {
	~uint32 | ~uint64
}

// FromUint64 narrows a uint64 to W. Callers are responsible for ensuring
// the value fits; this mirrors the reference implementation's trust that
// a 32-bit index was never handed a text longer than 4GiB.
func FromUint64[W Uint](v uint64) W {
	return W(v)
}

// ToUint64 widens W to uint64 for arithmetic.
func ToUint64[W Uint](v W) uint64 {
	return uint64(v)
}

// Size returns sizeof(W) in bytes: 4 or 8.
func Size[W Uint]() int {
	var zero W
	switch any(zero).(type) {
	case uint32:
		return 4
	case uint64:
		return 8
	default:
		panic("intwidth: unsupported width")
	}
}

// Get reads the i-th W-wide native-endian integer out of buf.
func Get[W Uint](buf []byte, i int) W {
	width := Size[W]()
	off := i * width
	switch width {
	case 4:
		return W(binary.NativeEndian.Uint32(buf[off : off+4]))
	default:
		return W(binary.NativeEndian.Uint64(buf[off : off+8]))
	}
}

// Put writes v as a native-endian W-wide integer into buf at element index i.
func Put[W Uint](buf []byte, i int, v W) {
	width := Size[W]()
	off := i * width
	switch width {
	case 4:
		binary.NativeEndian.PutUint32(buf[off:off+4], uint32(v))
	default:
		binary.NativeEndian.PutUint64(buf[off:off+8], uint64(v))
	}
}

// ReadUint64 reads a native-endian 8-byte unsigned integer from buf, the
// width used for every header field in the index file regardless of W
// (text_len, text_pos, sa_pos, lcp_pos, num_suffixes are always u64).
func ReadUint64(buf []byte) uint64 {
	return binary.NativeEndian.Uint64(buf)
}

// PutUint64 is the write-side counterpart of ReadUint64.
func PutUint64(buf []byte, v uint64) {
	binary.NativeEndian.PutUint64(buf, v)
}

// DecodeSlice reads count native-endian W values out of buf starting at
// offset 0, i.e. the on-disk layout of sequence_starts/sa/lcp arrays.
func DecodeSlice[W Uint](buf []byte, count int) []W {
	out := make([]W, count)
	for i := 0; i < count; i++ {
		out[i] = Get[W](buf, i)
	}
	return out
}

// EncodeSlice is the write-side counterpart of DecodeSlice.
func EncodeSlice[W Uint](values []W) []byte {
	width := Size[W]()
	buf := make([]byte, len(values)*width)
	for i, v := range values {
		Put(buf, i, v)
	}
	return buf
}
