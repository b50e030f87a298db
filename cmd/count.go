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

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shenwei356/sufrindex"
	"github.com/shenwei356/xopen"
)

var countCmd = &cobra.Command{
	Use:   "count [flags] -i <index> <query>...",
	Short: "count suffixes matching each query",
	Long: `count suffixes matching each query

Prints one TSV line per query: query<TAB>count.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		if len(args) == 0 {
			checkError(fmt.Errorf("at least one query is required"))
		}

		indexPath := getFlagString(cmd, "index")
		if indexPath == "" {
			checkError(fmt.Errorf("flag -i/--index is required"))
		}
		outFile := getFlagString(cmd, "out-file")
		lowMemory := getFlagBool(cmd, "low-memory")
		maxQueryLen := getFlagNonNegativeInt(cmd, "max-query-len")

		queries := queryBytes(args)
		if getFlagBool(cmd, "validate-seq") {
			checkError(validateQueries(queries))
		}

		if opt.Log2File {
			fhLog := addLog(opt.LogFile, opt.Verbose)
			defer fhLog.Close()
		}
		timeStart := time.Now()
		if opt.Verbose || opt.Log2File {
			defer func() {
				log.Infof("elapsed time: %s", time.Since(timeStart))
			}()
		}

		outw, err := xopen.Wopen(outFile)
		checkError(err)
		defer outw.Close()

		searchOpts := sufrindex.SearchOptions{
			Queries:     queries,
			LowMemory:   lowMemory,
			MaxQueryLen: maxQueryLen,
			Workers:     opt.NumCPUs,
		}

		err = withIndex(cmd, indexPath, func(w32 *sufrindex.Index[uint32], w64 *sufrindex.Index[uint64]) error {
			var results []sufrindex.CountResult
			var err error
			if w32 != nil {
				results, err = doCount(w32, searchOpts)
			} else {
				results, err = doCount(w64, searchOpts)
			}
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(outw, "%s\t%d\n", r.Query, r.Count)
			}
			return nil
		})
		checkError(err)
	},
}

func init() {
	RootCmd.AddCommand(countCmd)

	countCmd.Flags().StringP("index", "i", "", formatFlagUsage("Path to the index file."))
	countCmd.Flags().StringP("out-file", "o", "-", formatFlagUsage("Output file ('-' for stdout); gzip-compressed if it ends in .gz."))
	countCmd.Flags().Bool("low-memory", false, formatFlagUsage("Serve the suffix array entirely from disk, skipping the resident cache."))
	countCmd.Flags().Int("max-query-len", 0, formatFlagUsage("Query length the resident suffix array is subsampled for (never truncates comparisons); 0 uses the index's build-time cap if any."))
	widthFlag(countCmd)
	validateQueryFlag(countCmd)
}
