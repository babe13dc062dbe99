package cli

import (
	"strconv"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/spf13/cobra"
)

type entitySummary struct {
	Key    string `json:"key" yaml:"key"`
	Group  string `json:"group" yaml:"group"`
	Label  string `json:"label" yaml:"label"`
	Scoped bool   `json:"scoped" yaml:"scoped"`
	Fields int    `json:"fields" yaml:"fields"`
}

func newEntitiesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the registered entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := core.All()
			data := outputData{
				Headers: []string{"Key", "Group", "Label", "Scoped", "Fields"},
			}
			summaries := make([]entitySummary, len(defs))
			for i, def := range defs {
				s := entitySummary{
					Key:    def.Info.Key,
					Group:  def.Info.Group,
					Label:  def.Info.Label,
					Scoped: !def.Info.Unscoped,
					Fields: len(def.FieldSpecs),
				}
				summaries[i] = s
				scoped := "no"
				if s.Scoped {
					scoped = "yes"
				}
				data.Rows = append(data.Rows, []string{s.Key, s.Group, s.Label, scoped, strconv.Itoa(s.Fields)})
			}
			data.Raw = summaries
			return data.print(cmd.OutOrStdout(), opts.output)
		},
	}
}
