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

// Package cmd is the thin CLI consuming the sufrindex library: every
// subcommand opens an index, builds a sufrindex.SearchOptions, calls one
// of Count/Locate/Extract/Check, and formats the result. The offset width
// an index was built with isn't recoverable from the file alone -- that
// choice is made by the (out-of-scope) index builder -- so every
// subcommand takes a --width flag telling it which of sufrindex.Index's
// two generic instantiations to open the file with.
package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/spf13/cobra"

	"github.com/shenwei356/sufrindex"
	"github.com/shenwei356/sufrindex/internal/intwidth"
)

// widthFlag registers the --width flag shared by every subcommand that
// opens an index file.
func widthFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("width", "w", 64, formatFlagUsage("Offset width the index was built with: 32 or 64."))
}

// withIndex opens the index file at path with the width read from the
// --width flag and runs fn against it, closing the index afterward
// regardless of fn's outcome.
func withIndex(cmd *cobra.Command, path string, fn func(w32 *sufrindex.Index[uint32], w64 *sufrindex.Index[uint64]) error) error {
	width := getFlagInt(cmd, "width")
	switch width {
	case 32:
		idx, err := sufrindex.Open[uint32](path)
		if err != nil {
			return errors.Wrapf(err, "opening index %s", path)
		}
		defer idx.Close()
		return fn(idx, nil)
	case 64:
		idx, err := sufrindex.Open[uint64](path)
		if err != nil {
			return errors.Wrapf(err, "opening index %s", path)
		}
		defer idx.Close()
		return fn(nil, idx)
	default:
		return fmt.Errorf("--width must be 32 or 64, got %d", width)
	}
}

// queryBytes turns the CLI's positional query arguments into [][]byte for
// sufrindex.SearchOptions.Queries.
func queryBytes(args []string) [][]byte {
	out := make([][]byte, len(args))
	for i, a := range args {
		out[i] = []byte(a)
	}
	return out
}

// validateQueryFlag registers --validate-seq, off by default since checking
// every query against an IUPAC alphabet costs real time on large batches --
// the same tradeoff the teacher exposes as the package-level seq.ValidateSeq
// switch.
func validateQueryFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("validate-seq", false, formatFlagUsage("Reject queries containing characters outside the IUPAC nucleotide alphabet."))
}

// validateQueries rejects any query byte slice with a character outside the
// (redundant, ambiguity-code-permitting) IUPAC nucleotide alphabet.
func validateQueries(queries [][]byte) error {
	for _, q := range queries {
		if _, err := seq.NewSeq(seq.DNAredundant, q); err != nil {
			return errors.Wrapf(err, "invalid query %q", q)
		}
	}
	return nil
}

// doCount, doLocate, and doExtract let count.go/locate.go/extract.go call
// through sufrindex's generic Index[W] methods without duplicating the
// Run body for the 32- and 64-bit cases withIndex dispatches between.

func doCount[W intwidth.Uint](idx *sufrindex.Index[W], opts sufrindex.SearchOptions) ([]sufrindex.CountResult, error) {
	return idx.Count(context.Background(), opts)
}

func doLocate[W intwidth.Uint](idx *sufrindex.Index[W], opts sufrindex.SearchOptions) ([]sufrindex.LocateResult, error) {
	return idx.Locate(context.Background(), opts)
}

func doExtract[W intwidth.Uint](idx *sufrindex.Index[W], opts sufrindex.SearchOptions) ([]sufrindex.ExtractResult, error) {
	return idx.Extract(context.Background(), opts)
}

func doCheck[W intwidth.Uint](idx *sufrindex.Index[W]) ([]string, error) {
	return idx.Check()
}
