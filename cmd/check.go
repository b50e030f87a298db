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
	"os"

	"github.com/spf13/cobra"

	"github.com/shenwei356/sufrindex"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] -i <index>",
	Short: "verify suffix ordering and LCP exactness",
	Long: `check verifies suffix ordering and LCP exactness

Runs a single forward pass over the index, reporting every discrepancy found
rather than aborting on the first one. Exits non-zero if any are found.
`,
	Run: func(cmd *cobra.Command, args []string) {
		indexPath := getFlagString(cmd, "index")
		if indexPath == "" {
			checkError(fmt.Errorf("flag -i/--index is required"))
		}

		var problems []string
		err := withIndex(cmd, indexPath, func(w32 *sufrindex.Index[uint32], w64 *sufrindex.Index[uint64]) error {
			var err error
			if w32 != nil {
				problems, err = doCheck(w32)
			} else {
				problems, err = doCheck(w64)
			}
			return err
		})
		checkError(err)

		if len(problems) == 0 {
			fmt.Println("OK")
			return
		}
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		log.Errorf("found %d discrepancies", len(problems))
		os.Exit(1)
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("index", "i", "", formatFlagUsage("Path to the index file."))
	widthFlag(checkCmd)
}
