package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/carbon-credit-engine/internal/ingest"
)

const defaultPreviewRows = 10

func newInspectCmd(a *app) *cobra.Command {
	var preview int
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Describe the columns of a CSV generation file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening generation file: %w", err)
			}
			defer f.Close()

			insp, err := ingest.Inspect(f, preview)
			if err != nil {
				return err
			}
			a.logger.Debug().
				Str("file", args[0]).
				Str("encoding", insp.Encoding).
				Int("rows", insp.TotalRows).
				Msg("file inspected")
			return a.writeJSON(insp)
		},
	}
	cmd.Flags().IntVar(&preview, "preview", defaultPreviewRows, "number of preview rows")
	return cmd
}

func newValidateMappingCmd(a *app) *cobra.Command {
	var mappingPath, file string
	cmd := &cobra.Command{
		Use:   "validate-mapping",
		Short: "Check a column mapping, optionally against a generation file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := loadMapping(mappingPath)
			if err != nil {
				return err
			}

			var insp *ingest.Inspection
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("opening generation file: %w", err)
				}
				defer f.Close()
				if insp, err = ingest.Inspect(f, defaultPreviewRows); err != nil {
					return err
				}
			}

			v := ingest.ValidateMapping(m, insp)
			if !v.Valid {
				a.logger.Warn().Strs("errors", v.Errors).Msg("mapping is invalid")
			}
			return a.writeJSON(v)
		},
	}
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "YAML or JSON column mapping")
	cmd.Flags().StringVar(&file, "file", "", "CSV generation file to check the mapping against")
	_ = cmd.MarkFlagRequired("mapping")
	return cmd
}
