package intwidth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Round-trip vectors mirror original_source/libsufr/src/util.rs's
// usize_to_bytes/slice_u8_to_vec test cases (ported from usize to uint64).
func TestPutUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 10, 100, 1000, 10000, 100000}
	for _, v := range cases {
		buf := make([]byte, 8)
		PutUint64(buf, v)
		assert.Equal(t, v, ReadUint64(buf))
	}
}

func TestSize(t *testing.T) {
	assert.Equal(t, 4, Size[uint32]())
	assert.Equal(t, 8, Size[uint64]())
}

func TestEncodeDecodeSliceU32(t *testing.T) {
	values := []uint32{0, 1, 4294967295, 42}
	buf := EncodeSlice(values)
	assert.Len(t, buf, 4*len(values))
	assert.Equal(t, values, DecodeSlice[uint32](buf, len(values)))
}

func TestEncodeDecodeSliceU64(t *testing.T) {
	values := []uint64{0, 1, 18446744073709551615, 42}
	buf := EncodeSlice(values)
	assert.Len(t, buf, 8*len(values))
	assert.Equal(t, values, DecodeSlice[uint64](buf, len(values)))
}

func TestFromToUint64(t *testing.T) {
	assert.Equal(t, uint32(42), FromUint64[uint32](42))
	assert.Equal(t, uint64(42), ToUint64[uint32](42))
}
