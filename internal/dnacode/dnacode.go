// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package dnacode 2-bit-packs short runs of ACGT into a uint64 so their
// longest common prefix can be found with one bits.LeadingZeros64 call
// instead of a byte-by-byte loop. It is a narrowed, search-side adaptation
// of the LexicHash mask arithmetic in the teacher's cmd/util/kmers.go
// (KmerLongestPrefix): here it accelerates search.Kernel.Compare's
// byte-comparison hot loop for pure-ACGT windows instead of comparing
// k-mer masks.
package dnacode

import "math/bits"

// MaxBases is the longest run that fits in a uint64 at 2 bits per base.
const MaxBases = 32

var baseCode = [256]int8{}

func init() {
	for i := range baseCode {
		baseCode[i] = -1
	}
	baseCode['A'] = 0
	baseCode['C'] = 1
	baseCode['G'] = 2
	baseCode['T'] = 3
}

// Encode packs up to MaxBases bytes of pure uppercase ACGT into a 2-bit
// code. ok is false if b is empty, longer than MaxBases, or contains any
// byte outside {A,C,G,T} — ambiguity codes, separators, and lowercase
// (soft-masked) bases all fall back to byte comparison. Folding case here
// would make the 2-bit code agree for 'a' and 'A', which compare unequal
// under the SA's plain unsigned byte order (spec's raw-byte ordering
// invariant) — so case is deliberately not normalized.
func Encode(b []byte) (code uint64, ok bool) {
	n := len(b)
	if n == 0 || n > MaxBases {
		return 0, false
	}
	for _, c := range b {
		v := baseCode[c]
		if v < 0 {
			return 0, false
		}
		code = code<<2 | uint64(v)
	}
	return code, true
}

// LongestCommonPrefix returns the number of leading bases shared by two
// codes of lengths k1 and k2 (each <= MaxBases), using the teacher's
// leading-zero trick: once both codes are shifted/aligned to the same
// base width, the number of matching leading bases is the number of
// leading zero *base pairs* in the XOR of the two codes.
func LongestCommonPrefix(code1, code2 uint64, k1, k2 uint8) uint8 {
	var d uint8
	if k1 >= k2 {
		code1 >>= (k1 - k2) << 1
		d = 32 - k2
	} else {
		code2 >>= (k2 - k1) << 1
		d = 32 - k1
	}
	lcp := uint8(bits.LeadingZeros64(code1^code2)>>1) - d
	minK := k1
	if k2 < minK {
		minK = k2
	}
	if lcp > minK {
		return minK
	}
	return lcp
}
