package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/carbon-credit-engine/internal/calcerr"
	"github.com/rshade/carbon-credit-engine/internal/gridef"
	"github.com/rshade/carbon-credit-engine/internal/methodology"
)

func newMethodologiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "methodologies",
		Aliases: []string{"methodology"},
		Short:   "List and describe crediting methodologies",
	}

	var projectType, registry string
	list := &cobra.Command{
		Use:   "list",
		Short: "List registered methodologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case projectType != "" && registry != "":
				return a.writeJSON(filterByRegistry(a.registry.ListForProjectType(projectType), registry))
			case projectType != "":
				return a.writeJSON(a.registry.ListForProjectType(projectType))
			case registry != "":
				return a.writeJSON(a.registry.ListForRegistry(registry))
			default:
				return a.writeJSON(a.registry.ListAll())
			}
		},
	}
	list.Flags().StringVar(&projectType, "project-type", "", "only methodologies applicable to this project type")
	list.Flags().StringVar(&registry, "registry", "", "only methodologies of this standard (CDM, VERRA, GCC, GOLD_STANDARD)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a methodology and its input schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.registry.Get(args[0])
			if err != nil {
				return err
			}
			return a.writeJSON(struct {
				methodology.Descriptor
				InputsSchema methodology.Schema `json:"inputs_schema"`
			}{m.Descriptor(), m.RequiredInputsSchema()})
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func filterByRegistry(ds []methodology.Descriptor, registry string) []methodology.Descriptor {
	out := make([]methodology.Descriptor, 0, len(ds))
	for _, d := range ds {
		if strings.EqualFold(d.Registry, registry) {
			out = append(out, d)
		}
	}
	return out
}

func newGridEFCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid-ef",
		Short: "Browse the grid emission factor dataset",
	}

	var country string
	list := &cobra.Command{
		Use:   "list",
		Short: "List grid emission factor records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if country == "" {
				return a.writeJSON(a.table.All())
			}
			var records []gridef.Record
			if rec, ok := a.table.Get(country, ""); ok {
				records = append(records, rec)
			}
			records = append(records, a.table.Regions(country)...)
			if len(records) == 0 {
				return calcerr.NotFound("grid emission factor",
					fmt.Sprintf("No emission factor data for country: %s", strings.ToUpper(country)), nil)
			}
			return a.writeJSON(records)
		},
	}
	list.Flags().StringVar(&country, "country", "", "only records of this country")

	countries := &cobra.Command{
		Use:   "countries",
		Short: "List countries with grid emission factor data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.writeJSON(a.table.Countries())
		},
	}

	cmd.AddCommand(list, countries)
	return cmd
}
