package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hopperhq/hopper/internal/advisor"
	"github.com/hopperhq/hopper/internal/mapping"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a column mapping for an export file",
	Long: `Inspect an export's columns and propose a mapping file.

By default columns are matched against common tracker header names
(Summary, Issue Type, Epic Link, ...). With --ai the headers and a few
sample rows are sent to the Anthropic API for a smarter match; this
needs ANTHROPIC_API_KEY.

Write the result with -o, review it, then import with --mapping.`,
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		useAI, _ := cmd.Flags().GetBool("ai")

		if input == "" && term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintf(os.Stderr, "Error: No input specified.\n\n")
			fmt.Fprintf(os.Stderr, "Usage:\n")
			fmt.Fprintf(os.Stderr, "  hop suggest -i export.csv                 # Propose a mapping\n")
			fmt.Fprintf(os.Stderr, "  hop suggest -i export.csv -o mapping.yaml # Write it to a file\n")
			fmt.Fprintf(os.Stderr, "  hop suggest -i export.csv --ai            # Ask the model\n")
			os.Exit(1)
		}

		rows, err := readRows(input, format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			os.Exit(1)
		}
		if len(rows) == 0 {
			fmt.Fprintln(os.Stderr, "Error: input contains no rows")
			os.Exit(1)
		}

		var adv advisor.Advisor
		if useAI {
			claude, err := advisor.NewClaude("")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			adv = claude
		} else {
			adv = advisor.NewHeuristic()
		}

		suggestion, err := adv.SuggestMapping(rootCtx, rows[0].Columns, rows)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput && output == "" {
			outputJSON(suggestion)
			return
		}

		data, err := suggestion.Mapping.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if output != "" {
			if err := os.WriteFile(output, data, 0600); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing mapping file: %v\n", err)
				os.Exit(1)
			}
			if !quietFlag {
				fmt.Printf("Wrote mapping for %d column(s) to %s\n", len(suggestion.Mapping), output)
			}
		} else {
			os.Stdout.Write(data)
		}

		printSuggestionNotes(suggestion)
	},
}

func printSuggestionNotes(s *advisor.Suggestion) {
	if !quietFlag && verboseFlag && len(s.Confidence) > 0 {
		cols := make([]string, 0, len(s.Confidence))
		for c := range s.Confidence {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		fmt.Fprintln(os.Stderr, "Confidence:")
		for _, c := range cols {
			target := mapping.FieldNone
			for _, e := range s.Mapping {
				if e.Source == c {
					target = e.Target
					break
				}
			}
			label := string(target)
			if label == "" {
				label = "(ignored)"
			}
			fmt.Fprintf(os.Stderr, "  %-30s -> %-16s %.2f\n", c, label, s.Confidence[c])
		}
	}
	for _, n := range s.Notes {
		fmt.Fprintf(os.Stderr, "Note: %s\n", n)
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}

func init() {
	suggestCmd.Flags().StringP("input", "i", "", "Input file (default: stdin)")
	suggestCmd.Flags().String("format", "", "Input format: csv, json, or jsonl (default: by file extension, csv for stdin)")
	suggestCmd.Flags().StringP("output", "o", "", "Write the mapping YAML to this file")
	suggestCmd.Flags().Bool("ai", false, "Use the Anthropic API for column matching (requires ANTHROPIC_API_KEY)")
	rootCmd.AddCommand(suggestCmd)
}
