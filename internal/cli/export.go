package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mousecolony/internal/exporter"
)

// ExportCmd returns the export command.
func ExportCmd() *cobra.Command {
	var (
		format string
		dir    string
		merged bool
		whole  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the owner's document to json, csv, or xlsx",
		Long: `Load the owner's document and render it to files with fixed names in
the output directory. Identifier fields are replaced with display names
where the colony knows one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			if err := loadOrFail(ctx, svc); err != nil {
				return err
			}
			exp := exporter.New(svc.Store().Snapshot())

			var paths []string
			switch strings.ToLower(format) {
			case "json":
				path, err := exp.WriteJSON(dir, whole)
				if err != nil {
					return err
				}
				paths = []string{path}
			case "csv":
				paths, err = exp.WriteCSV(dir, merged)
				if err != nil {
					return err
				}
			case "xlsx":
				path, err := exp.WriteXLSX(dir)
				if err != nil {
					return err
				}
				paths = []string{path}
			default:
				return fmt.Errorf("unknown format %q (json, csv, xlsx)", format)
			}
			for _, path := range paths {
				fmt.Printf("%s wrote %s\n", color.New(color.FgGreen).Sprint("OK"), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json, csv, or xlsx")
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	cmd.Flags().BoolVar(&merged, "merged", false, "csv only: single legacy file with a type column")
	cmd.Flags().BoolVar(&whole, "whole", false, "json only: whole document instead of tagged rows")
	return cmd
}
