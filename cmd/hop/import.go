package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hopperhq/hopper/internal/advisor"
	"github.com/hopperhq/hopper/internal/mapping"
	"github.com/hopperhq/hopper/internal/reconcile"
	"github.com/hopperhq/hopper/internal/storage"
	"github.com/hopperhq/hopper/internal/storage/memory"
	"github.com/hopperhq/hopper/internal/storage/sqlite"
	"github.com/hopperhq/hopper/internal/tabular"
	"github.com/hopperhq/hopper/internal/types"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import work items from a CSV, JSON, or JSONL export",
	Long: `Import work items from a tracker export.

Reads from stdin by default, or use -i for file input. The column
mapping comes from a YAML file (--mapping); without one, columns are
matched against common tracker header names.

Behavior:
  - Rows without a name are skipped with a warning
  - Duplicate names within the batch are skipped (first occurrence wins)
  - Parent names that resolve to nothing become auto-created Epics
    (disable with --create-missing-parents=false)
  - Unresolved dependency names are warnings, not failures
  - Use --dry-run to run the full batch against an in-memory store`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			fmt.Fprintf(os.Stderr, "Error: Unexpected argument(s): %v\n\n", args)
			fmt.Fprintf(os.Stderr, "Did you mean: hop import -i %s\n", args[0])
			os.Exit(1)
		}

		input, _ := cmd.Flags().GetString("input")
		format, _ := cmd.Flags().GetString("format")
		mappingPath, _ := cmd.Flags().GetString("mapping")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		// Refuse to sit on an interactive stdin waiting for data.
		if input == "" && term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintf(os.Stderr, "Error: No input specified.\n\n")
			fmt.Fprintf(os.Stderr, "Usage:\n")
			fmt.Fprintf(os.Stderr, "  hop import -i export.csv                  # Import from file\n")
			fmt.Fprintf(os.Stderr, "  hop import -i export.csv --dry-run        # Preview without writing\n")
			fmt.Fprintf(os.Stderr, "  cat export.jsonl | hop import --format jsonl\n\n")
			fmt.Fprintf(os.Stderr, "For more information, run: hop import --help\n")
			os.Exit(1)
		}

		rows, err := readRows(input, format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			os.Exit(1)
		}
		if len(rows) == 0 {
			fmt.Fprintln(os.Stderr, "Nothing to import: input contains no rows")
			return
		}

		m, err := resolveMapping(mappingPath, rows)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if verboseFlag {
			fmt.Fprintf(os.Stderr, "Mapping: %s\n", reconcile.DescribeMapping(m))
		}

		opts := importOptions(cmd)

		var store storage.Store
		if dryRun {
			store = memory.New()
		} else {
			path, err := resolveDBPath()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			store, err = sqlite.New(rootCtx, path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
				os.Exit(1)
			}
		}
		defer func() { _ = store.Close() }()

		report, err := reconcile.Reconcile(rootCtx, store, rows, m, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: import failed: %v\n", err)
			os.Exit(1)
		}

		printReport(report, dryRun)
		if len(report.Errors) > 0 {
			os.Exit(1)
		}
	},
}

func readRows(input, format string) ([]types.RawRow, error) {
	if input != "" && format == "" {
		return tabular.ReadFile(input)
	}

	f := tabular.Format(format)
	if format == "" {
		f = tabular.FormatCSV
	}
	switch f {
	case tabular.FormatCSV, tabular.FormatJSON, tabular.FormatJSONL:
	default:
		return nil, fmt.Errorf("unknown format %q (expected csv, json, or jsonl)", format)
	}

	in := os.Stdin
	if input != "" {
		fh, err := os.Open(input) // #nosec G304 - user-provided file path is intentional
		if err != nil {
			return nil, err
		}
		defer func() { _ = fh.Close() }()
		in = fh
	}
	return tabular.Read(in, f)
}

// resolveMapping loads the user's mapping file, or falls back to header
// matching when none is given.
func resolveMapping(mappingPath string, rows []types.RawRow) (mapping.Mapping, error) {
	if mappingPath != "" {
		return mapping.Load(mappingPath)
	}

	h := advisor.NewHeuristic()
	suggestion, err := h.SuggestMapping(rootCtx, rows[0].Columns, rows)
	if err != nil {
		return nil, fmt.Errorf("matching columns: %w", err)
	}
	if err := suggestion.Mapping.Validate(); err != nil {
		return nil, fmt.Errorf("%w\nHint: no column looks like a name; supply a mapping file with --mapping (see 'hop suggest')", err)
	}
	for _, w := range suggestion.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	return suggestion.Mapping, nil
}

// importOptions merges flags over project metadata over defaults.
func importOptions(cmd *cobra.Command) reconcile.Options {
	opts := reconcile.DefaultOptions()

	if projectCfg != nil {
		opts.CreateMissingParents = projectCfg.GetCreateMissingParents()
		if projectCfg.IDPrefix != "" {
			opts.IDPrefix = projectCfg.IDPrefix
		}
		opts.Sprint = projectCfg.Sprint
	}

	if cmd.Flags().Changed("create-missing-parents") {
		opts.CreateMissingParents, _ = cmd.Flags().GetBool("create-missing-parents")
	} else if cfg.IsSet("import.create-missing-parents") && projectCfg == nil {
		opts.CreateMissingParents = cfg.GetBool("import.create-missing-parents")
	}
	if cmd.Flags().Changed("sprint") {
		opts.Sprint, _ = cmd.Flags().GetString("sprint")
	}
	if cmd.Flags().Changed("prefix") {
		opts.IDPrefix, _ = cmd.Flags().GetString("prefix")
	}
	if cmd.Flags().Changed("concurrency") {
		opts.StoreConcurrency, _ = cmd.Flags().GetInt("concurrency")
	} else if cfg.IsSet("import.concurrency") {
		opts.StoreConcurrency = cfg.GetInt("import.concurrency")
	}

	return opts
}

func printReport(report *reconcile.Report, dryRun bool) {
	if jsonOutput {
		outputJSON(report)
		return
	}

	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "Error: %s\n", e)
	}

	if quietFlag {
		return
	}
	prefix := "Import"
	if dryRun {
		prefix = "Dry run"
	}
	fmt.Printf("%s complete: %s\n", prefix, report.Summary())
}

func init() {
	importCmd.Flags().StringP("input", "i", "", "Input file (default: stdin)")
	importCmd.Flags().String("format", "", "Input format: csv, json, or jsonl (default: by file extension, csv for stdin)")
	importCmd.Flags().StringP("mapping", "m", "", "Column mapping file (YAML)")
	importCmd.Flags().Bool("create-missing-parents", true, "Auto-create Epic placeholders for unresolved parent names")
	importCmd.Flags().String("sprint", "", "Assign every imported item to this sprint")
	importCmd.Flags().String("prefix", "", "ID prefix for created items (default: project config or 'hop')")
	importCmd.Flags().Int("concurrency", 4, "Max concurrent dependency writes")
	importCmd.Flags().Bool("dry-run", false, "Run the batch against an in-memory store and report without writing")
	rootCmd.AddCommand(importCmd)
}
