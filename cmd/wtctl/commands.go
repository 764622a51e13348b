package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"webtemplate-backend/internal/apperr"
	"webtemplate-backend/internal/metadata"
)

func newRenderCmd(opts *globalOptions) *cobra.Command {
	var values, valuesFile string

	cmd := &cobra.Command{
		Use:   "render NAME",
		Short: "Render a web template to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if valuesFile != "" {
				b, err := os.ReadFile(valuesFile)
				if err != nil {
					return fmt.Errorf("read values: %w", err)
				}
				values = string(b)
			}

			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			html, err := a.Documents.Render(cmd.Context(), args[0], values)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		},
	}

	cmd.Flags().StringVar(&values, "values", "", "JSON object of template values")
	cmd.Flags().StringVar(&valuesFile, "values-file", "", "read template values from a JSON file")
	cmd.MarkFlagsMutuallyExclusive("values", "values-file")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME",
		Short: "Write a standard web template to the module tree",
		Long: `Rewrites the JSON definition of a standard web template and creates its
HTML file when missing. Requires developer mode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := a.Documents.Export(cmd.Context(), execContext(a.Config), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s (module %s)\n", doc.Name, doc.Module)
			return nil
		},
	}
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Create or update web templates from exported JSON files",
		Long: `Reads exported web template definitions and upserts them. Imports run as
patches, so standard templates are accepted outside developer mode.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ec := execContext(a.Config)
			ec.InPatch = true

			for _, path := range args {
				doc, err := readDefinition(path)
				if err != nil {
					return err
				}
				saved, err := a.Documents.Upsert(cmd.Context(), ec, doc)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", saved.Name)
			}
			return nil
		},
	}
}

// readDefinition decodes an exported definition file. A doctype key, when
// present, must name Web Template.
func readDefinition(path string) (*metadata.WebTemplate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}

	var header struct {
		DocType string `json:"doctype"`
	}
	if err := json.Unmarshal(b, &header); err != nil {
		return nil, apperr.ParseError(fmt.Sprintf("%s: invalid JSON: %v", path, err))
	}
	if header.DocType != "" && header.DocType != metadata.DocType {
		return nil, apperr.ParseError(fmt.Sprintf("%s: doctype is %q, want %q", path, header.DocType, metadata.DocType))
	}

	var doc metadata.WebTemplate
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, apperr.ParseError(fmt.Sprintf("%s: %v", path, err))
	}
	doc.CreatedAt, doc.Modified = nil, nil
	return &doc, nil
}
