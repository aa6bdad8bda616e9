package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mousecolony/internal/core"
	"mousecolony/internal/importer"
)

// ImportCmd returns the import command.
func ImportCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a colony document or row file, replacing current records",
		Long: `Parse a .json, .csv, .xlsx, or .xls file into colony records and
replace the owner's document with the normalized result. The import pipeline
prunes broken relationships and merges duplicate mice before saving.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			doc, err := importer.ImportFile(args[0])
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			if dryRun {
				fmt.Printf("parsed %s: %d cages, %d mice, %d dead\n",
					args[0], len(doc.Cages), len(doc.Mice), len(doc.DeadMice))
				return nil
			}
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			mice, cages := svc.Store().ReplaceWithImport(doc)
			if !svc.SaveToCloud(ctx, core.SaveOptions{Silent: true}) {
				return fmt.Errorf("imported records could not be saved")
			}
			fmt.Printf("%s imported %d mice across %d cages\n",
				color.New(color.FgGreen).Sprint("OK"), mice, cages)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report counts without saving")
	return cmd
}
