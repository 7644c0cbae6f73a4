package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkadlec/facematch/internal/config"
	"github.com/mkadlec/facematch/internal/constants"
	"github.com/mkadlec/facematch/internal/reference"
)

var refsSimilarCmd = &cobra.Command{
	Use:   "similar <name>",
	Short: "Find catalog entries similar to a person",
	Long: `Find the catalog entries whose embeddings are closest to a given
person's. Small distances between different names usually mean
look-alikes or mislabeled imports.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefsSimilar,
}

func init() {
	refsCmd.AddCommand(refsSimilarCmd)

	refsSimilarCmd.Flags().Int("limit", constants.DefaultSimilarLimit, "Maximum number of neighbors to show")
}

func runRefsSimilar(cmd *cobra.Command, args []string) error {
	name := args[0]
	limit := mustGetInt(cmd, "limit")

	cfg := config.Load()
	ctx := context.Background()

	refs, err := loadCatalog(ctx, cfg, mustGetString(cmd, "refs"))
	if err != nil {
		return err
	}

	matches := refs.FindByName(name)
	if len(matches) == 0 {
		return fmt.Errorf("no reference named %q in the catalog", name)
	}
	query := matches[0]

	index := reference.NewIndex()
	if err := index.BuildFromSet(refs); err != nil {
		return err
	}

	// The query entry is its own nearest neighbor; ask for one extra.
	entries, distances, err := index.Search(query.Embedding, limit+1)
	if err != nil {
		return err
	}

	fmt.Printf("References similar to %s:\n\n", query.Name)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tUID\tDISTANCE")
	fmt.Fprintln(w, "----\t---\t--------")

	shown := 0
	for i, e := range entries {
		if e.UID == query.UID {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\n", e.Name, e.UID, distances[i])
		shown++
		if shown == limit {
			break
		}
	}
	w.Flush()

	if shown == 0 {
		fmt.Println("(no other references in the catalog)")
	}
	return nil
}
