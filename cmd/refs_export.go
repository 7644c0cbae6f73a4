package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkadlec/facematch/internal/config"
	"github.com/mkadlec/facematch/internal/reference"
)

var refsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the catalog to a YAML file",
	Long: `Export the reference catalog to a YAML file, e.g. to move it
between a database-backed deployment and a file-based one.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefsExport,
}

func init() {
	refsCmd.AddCommand(refsExportCmd)
}

func runRefsExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	refs, err := loadCatalog(ctx, cfg, mustGetString(cmd, "refs"))
	if err != nil {
		return err
	}

	if err := reference.SaveFile(args[0], refs); err != nil {
		return err
	}

	fmt.Printf("Exported %d references to %s\n", refs.Len(), args[0])
	return nil
}
