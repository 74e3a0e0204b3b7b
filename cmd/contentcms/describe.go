package main

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"contentcms/internal/engine"
	"contentcms/internal/form"
	"contentcms/internal/schema"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the editing forms of the schema as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchema(cfg, engine.New())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(describe(s))
	},
}

type groupDescription struct {
	Module  string           `json:"module"`
	Group   string           `json:"group"`
	Label   string           `json:"label"`
	PageURL string           `json:"page_url,omitempty"`
	Preview bool             `json:"preview"`
	Fields  []form.FieldSpec `json:"fields"`
}

func describe(s *schema.Schema) []groupDescription {
	var binder form.Binder
	var out []groupDescription
	for _, m := range s.Modules {
		for _, g := range m.Groups {
			out = append(out, groupDescription{
				Module:  m.Name,
				Group:   g.Name,
				Label:   g.Label,
				PageURL: g.PageURL,
				Preview: g.HasPreview(),
				Fields:  binder.Describe(g),
			})
		}
	}
	return out
}
