package cli

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/table"
	"github.com/JonMunkholm/frota/internal/tenant"
	"github.com/spf13/cobra"
)

type listFlags struct {
	sort   string
	dir    string
	search string
	limit  int
}

func newListCmd(opts *options) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Print the records of an entity",
		Long: `Print the records of an entity, rendered the way the web table shows
them: masks applied, dates as dd/mm/yyyy, amounts in reais. Without --sort
the records keep their insertion order.`,
		Example: `  frotactl list vehicles --company 6f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f --sort plate
  frotactl list companies -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.sort, "sort", "", "Column key to sort by")
	cmd.Flags().StringVar(&f.dir, "dir", "asc", "Sort direction (asc, desc)")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Case-insensitive text search")
	cmd.Flags().IntVar(&f.limit, "limit", core.DefaultListLimit, "Maximum number of records")
	return cmd
}

func runList(cmd *cobra.Command, opts *options, f listFlags, key string) error {
	def, ok := core.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownEntity, key)
	}

	ctx, err := scopedContext(cmd.Context(), opts.company)
	if err != nil {
		return err
	}

	var records []core.Record
	err = opts.withStore(ctx, func(store Store) error {
		records, err = store.List(ctx, key, core.ListOptions{Search: f.search, Limit: f.limit})
		return err
	})
	if err != nil {
		return err
	}

	state := table.Unsorted()
	if f.sort != "" {
		state = table.ParseSortState(f.sort, f.dir)
		if !state.IsSorted() {
			return fmt.Errorf("invalid --dir %q (use asc or desc)", f.dir)
		}
	}
	tbl, err := table.New(core.Columns(def), core.Rows(records), table.WithState(state))
	if err != nil {
		return err
	}
	if f.sort != "" && tbl.State().Column() != f.sort {
		return fmt.Errorf("column %q of %s cannot be sorted", f.sort, key)
	}

	return tableOutput(tbl).print(cmd.OutOrStdout(), opts.output)
}

// scopedContext adds the company to ctx when one is given.
func scopedContext(ctx context.Context, company string) (context.Context, error) {
	if company == "" {
		return ctx, nil
	}
	id, err := tenant.ParseCompanyID(company)
	if err != nil {
		return nil, fmt.Errorf("invalid company %q: %w", company, err)
	}
	return tenant.WithCompanyID(ctx, id), nil
}

// tableOutput turns a table into printable data. JSON and YAML get one
// object per row keyed by column, with the display text as values.
func tableOutput(tbl *table.Table) outputData {
	cols := tbl.Columns()
	cells := tbl.Cells()
	rows := tbl.Rows()

	raw := make([]map[string]string, len(cells))
	for i, line := range cells {
		m := make(map[string]string, len(cols)+1)
		if id, ok := rows[i]["id"]; ok && id != nil {
			m["id"] = fmt.Sprint(id)
		}
		for j, c := range cols {
			m[c.Key] = line[j]
		}
		raw[i] = m
	}
	return outputData{Headers: tbl.Headers(), Rows: cells, Raw: raw}
}
