package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mousecolony/internal/core"
)

// SaveCmd returns the save command. Loading then saving re-normalizes a
// document written by an older revision of the schema.
func SaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Load, normalize, and re-save the owner's document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			if err := loadOrFail(ctx, svc); err != nil {
				return err
			}
			if !svc.SaveToCloud(ctx, core.SaveOptions{}) {
				return fmt.Errorf("save failed for owner %q", svc.Owner())
			}
			fmt.Printf("%s saved document for %s\n", color.New(color.FgGreen).Sprint("OK"), svc.Owner())
			return nil
		},
	}
}

// LoadCmd returns the load command.
func LoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load the owner's document and report its shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			if err := loadOrFail(ctx, svc); err != nil {
				return err
			}
			doc := svc.Store().Snapshot()
			fmt.Printf("%s loaded %d cages, %d mice, %d dead, %d records\n",
				color.New(color.FgGreen).Sprint("OK"),
				len(doc.Cages), len(doc.Mice), len(doc.DeadMice), len(doc.Records))
			return nil
		},
	}
}

// StatusCmd returns the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured backend and document summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("driver: %s\n", svc.Driver())
			fmt.Printf("owner:  %s\n", orNone(svc.Owner()))
			if err := loadOrFail(ctx, svc); err != nil {
				fmt.Printf("state:  %s\n", color.New(color.FgYellow).Sprint("no document"))
				return nil
			}
			doc := svc.Store().Snapshot()
			rows := map[string]bool{}
			for _, c := range doc.Cages {
				rows[c.Row] = true
			}
			starred := 0
			for _, m := range doc.Mice {
				if m.Starred {
					starred++
				}
			}
			fmt.Printf("cages:  %d (%d rows)\n", len(doc.Cages), len(rows))
			fmt.Printf("mice:   %d (%d starred)\n", len(doc.Mice), starred)
			fmt.Printf("dead:   %d\n", len(doc.DeadMice))
			fmt.Printf("log:    %d entries\n", len(doc.Records))
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return color.New(color.FgRed).Sprint("(none)")
	}
	return s
}
