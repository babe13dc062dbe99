package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/spf13/cobra"
)

type importFailure struct {
	Line   int               `json:"line" yaml:"line"`
	Reason string            `json:"reason" yaml:"reason"`
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type importSummary struct {
	Entity     string          `json:"entity" yaml:"entity"`
	File       string          `json:"file" yaml:"file"`
	DryRun     bool            `json:"dry_run" yaml:"dry_run"`
	TotalRows  int             `json:"total_rows" yaml:"total_rows"`
	Inserted   int             `json:"inserted" yaml:"inserted"`
	Skipped    int             `json:"skipped" yaml:"skipped"`
	Ignored    []string        `json:"ignored_columns,omitempty" yaml:"ignored_columns,omitempty"`
	FailedRows []importFailure `json:"failed_rows,omitempty" yaml:"failed_rows,omitempty"`
}

func newImportCmd(opts *options) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <entity> <file.csv>",
		Short: "Load records from a spreadsheet CSV export",
		Long: `Load records from a CSV file, one record per row. The first row names
the columns by their labels ("Placa", "Data do serviço") or keys. Comma,
semicolon and tab separated files are accepted, in UTF-8 or Windows-1252.

Rows that fail validation are reported and skipped; the rest are saved.
Use "-" to read from standard input. The command exits with status 1 when
any row was skipped.`,
		Example: `  frotactl import vehicles frota.csv --company 6f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f
  frotactl import fuel_records abastecimentos.csv --dry-run -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0], args[1], dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check every row without saving anything")
	return cmd
}

func runImport(cmd *cobra.Command, opts *options, key, path string, dryRun bool) error {
	if _, ok := core.Get(key); !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownEntity, key)
	}

	ctx, err := scopedContext(cmd.Context(), opts.company)
	if err != nil {
		return err
	}

	var src io.Reader = cmd.InOrStdin()
	name := "stdin"
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src, name = f, filepath.Base(path)
	}

	var result *core.ImportResult
	err = opts.withStore(ctx, func(store Store) error {
		result, err = store.Import(ctx, key, src, core.ImportOptions{FileName: name, DryRun: dryRun})
		return err
	})
	if err != nil {
		return err
	}

	if err := printImport(cmd.OutOrStdout(), result, opts.output); err != nil {
		return err
	}
	if result.Skipped > 0 {
		return fmt.Errorf("%w: %d rows skipped", ErrInvalid, result.Skipped)
	}
	return nil
}

// printImport writes the outcome. Table output leads with a summary line
// and lists the skipped rows; the other formats carry the whole summary.
func printImport(w io.Writer, res *core.ImportResult, format string) error {
	summary := importSummary{
		Entity:    res.Entity,
		File:      res.FileName,
		DryRun:    res.DryRun,
		TotalRows: res.TotalRows,
		Inserted:  res.Inserted,
		Skipped:   res.Skipped,
		Ignored:   res.Ignored,
	}
	data := outputData{Headers: []string{"Line", "Reason"}}
	for _, f := range res.FailedRows {
		summary.FailedRows = append(summary.FailedRows, importFailure(f))
		data.Rows = append(data.Rows, []string{strconv.Itoa(f.Line), f.Reason})
	}
	data.Raw = summary

	if f := strings.ToLower(strings.TrimSpace(format)); f != FormatTable && f != "" {
		return data.print(w, format)
	}

	verb := "imported"
	if res.DryRun {
		verb = "would import"
	}
	fmt.Fprintf(w, "%s: %s %d of %d rows (%d skipped) in %s\n",
		res.FileName, verb, res.Inserted, res.TotalRows, res.Skipped, res.Duration.Round(time.Millisecond))
	if len(res.Ignored) > 0 {
		fmt.Fprintf(w, "ignored columns: %s\n", strings.Join(res.Ignored, ", "))
	}
	if len(data.Rows) == 0 {
		return nil
	}
	return data.print(w, format)
}
