package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mousecolony/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "colonyctl",
		Short: "colonyctl - mouse colony ledger tool",
		Long: `colonyctl operates on a mouse colony document: import and export
records, reconcile relationships, and synchronize the document with the
configured backend (memory, sqlite, postgres, or s3).

Configuration is environment driven: MOUSECOLONY_OWNER selects the
document owner, MOUSECOLONY_CLOUD_DRIVER selects the backend.`,
	}

	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.SaveCmd())
	rootCmd.AddCommand(cli.LoadCmd())
	rootCmd.AddCommand(cli.DedupeCmd())
	rootCmd.AddCommand(cli.PruneCmd())
	rootCmd.AddCommand(cli.ExtractCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
