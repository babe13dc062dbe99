package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
)

// outputData is printable as a table, CSV, JSON or YAML.
type outputData struct {
	Headers []string
	Rows    [][]string
	Raw     any // Used for JSON/YAML
}

func (d outputData) print(w io.Writer, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return d.printJSON(w)
	case FormatYAML:
		return d.printYAML(w)
	case FormatCSV:
		return d.printCSV(w)
	case FormatTable, "":
		return d.printTable(w)
	default:
		return fmt.Errorf("unknown output format %q (use table, json, yaml or csv)", format)
	}
}

func (d outputData) printJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Raw)
}

func (d outputData) printYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d.Raw); err != nil {
		return err
	}
	return enc.Close()
}

func (d outputData) printCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(d.Rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (d outputData) printTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header(d.Headers)
	if err := table.Bulk(d.Rows); err != nil {
		return err
	}
	return table.Render()
}
