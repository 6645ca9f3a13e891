package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var opts options

// rootCmd searches files for a pattern using the KMP searcher.
var rootCmd = &cobra.Command{
	Use:   "kmpgrep [flags] PATTERN FILE...",
	Short: "Search files for a literal pattern",
	Long: `kmpgrep prints every line holding PATTERN as file:line:offset:text.

The pattern is matched literally, byte by byte. With --phrase it is
analyzed into terms and matched against the terms of each file instead,
so punctuation and case are ignored by the standard analyzer.

Overlapping occurrences are reported with --all: "aa" is found three
times in "aaaa".

Exit status is 0 when something matched, 1 when nothing did and 2 on
error.`,
	Args:          cobra.MinimumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := newGrepper(args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		matched, err := g.run(args[1:])
		if err != nil {
			return err
		}
		if !matched {
			return errNoMatch
		}
		return nil
	},
}

func main() {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errNoMatch) {
		fmt.Fprintf(os.Stderr, "kmpgrep: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func init() {
	rootCmd.Flags().BoolVar(&opts.All, "all", false, "Report every occurrence, overlapping ones included")
	rootCmd.Flags().BoolVarP(&opts.Count, "count", "c", false, "Print only the number of occurrences per file")
	rootCmd.Flags().BoolVar(&opts.Phrase, "phrase", false, "Match analyzed terms instead of raw bytes")
	rootCmd.Flags().StringVar(&opts.Analyzer, "analyzer", "", "Analyzer used with --phrase (standard, whitespace, keyword)")
	rootCmd.Flags().StringVar(&opts.Color, "color", "auto", "Highlight matches: auto, always or never")
	rootCmd.Flags().IntVarP(&opts.Max, "max", "m", 0, "Report at most this many occurrences per file; implies --all (0 = no limit)")
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNoMatch):
		return 1
	default:
		return 2
	}
}
