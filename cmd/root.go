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
)

// VERSION is the CLI's own release version, independent of the index
// file's on-disk format version (sufrfile.Version).
var VERSION = "0.1.0"

// RootCmd is the entry point every subcommand registers itself against in
// its own init().
var RootCmd = &cobra.Command{
	Use:   "sufrindex",
	Short: "query-time engine for suffix-array/LCP biological sequence indices",
	Long: `sufrindex - count/locate/extract over a pre-built suffix-array index

Index construction is out of scope: point every subcommand at an index file
produced by a separate builder. See "sufrindex count/locate/extract -h".
`,
}

func init() {
	RootCmd.CompletionOptions.DisableDefaultCmd = true
	RootCmd.SetUsageTemplate(usageTemplate(""))
	RootCmd.PersistentFlags().IntP("threads", "j", 0, formatFlagUsage("Number of CPUs to use; 0 means runtime.NumCPU()."))
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, formatFlagUsage("Print verbose information."))
	RootCmd.PersistentFlags().Bool("log", false, formatFlagUsage("Write log messages to a file alongside stderr."))
	RootCmd.PersistentFlags().String("log-file", "", formatFlagUsage("Log file path, used with --log."))
}

// Execute runs the CLI, exiting the process on error (cobra's own
// convention, mirrored from the teacher's main.go).
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
