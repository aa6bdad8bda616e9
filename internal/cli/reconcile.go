package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mousecolony/internal/core"
)

// DedupeCmd returns the dedupe command.
func DedupeCmd() *cobra.Command {
	var byFields bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Merge duplicate mouse records and save",
		Long: `Merge live mice sharing an id (or, with --by-fields, the same name,
birth date, and sex) into single records, keeping the union of their
relationships, then save the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			if err := loadOrFail(ctx, svc); err != nil {
				return err
			}
			merged := svc.Store().DedupeMice(core.DedupeOptions{PreferID: !byFields})
			if !svc.SaveToCloud(ctx, core.SaveOptions{Silent: true}) {
				return fmt.Errorf("deduplicated records could not be saved")
			}
			fmt.Printf("%s merged %d duplicate mice\n", color.New(color.FgGreen).Sprint("OK"), merged)
			return nil
		},
	}

	cmd.Flags().BoolVar(&byFields, "by-fields", false, "match on name+birth date+sex instead of id")
	return cmd
}

// PruneCmd returns the prune command.
func PruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop relationship references to mice that no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			if err := loadOrFail(ctx, svc); err != nil {
				return err
			}
			svc.Store().PruneBrokenRelations()
			if !svc.SaveToCloud(ctx, core.SaveOptions{Silent: true}) {
				return fmt.Errorf("pruned records could not be saved")
			}
			fmt.Printf("%s pruned broken relationships\n", color.New(color.FgGreen).Sprint("OK"))
			return nil
		},
	}
}

// ExtractCmd returns the extract command.
func ExtractCmd() *cobra.Command {
	var (
		hops        int
		catchAll    string
		skipStarred bool
		skipCaged   bool
		skipNoted   bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Narrow the document to the actively used subset",
		Long: `Seed a subset from starred, caged, and annotated mice, expand it along
pedigree and spousal edges for a bounded number of hops, and replace the
document with the result. An empty seed aborts without changing anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			if err := loadOrFail(ctx, svc); err != nil {
				return err
			}
			count, err := svc.ExtractAndReplace(ctx, core.ExtractOptions{
				IncludeStarred: !skipStarred,
				IncludeCaged:   !skipCaged,
				IncludeNoted:   !skipNoted,
				Hops:           hops,
				CatchAllCage:   catchAll,
			})
			if errors.Is(err, core.ErrEmptySubset) {
				fmt.Printf("%s nothing matched the seed predicates; document unchanged\n",
					color.New(color.FgYellow).Sprint("SKIP"))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("%s kept %d mice\n", color.New(color.FgGreen).Sprint("OK"), count)
			return nil
		},
	}

	cmd.Flags().IntVar(&hops, "hops", 1, "relationship hops to expand from the seed set")
	cmd.Flags().StringVar(&catchAll, "catch-all", core.DefaultCatchAllCage, "cage name for kept mice left homeless")
	cmd.Flags().BoolVar(&skipStarred, "skip-starred", false, "exclude starred mice from the seed")
	cmd.Flags().BoolVar(&skipCaged, "skip-caged", false, "exclude caged mice from the seed")
	cmd.Flags().BoolVar(&skipNoted, "skip-noted", false, "exclude annotated mice from the seed")
	return cmd
}
