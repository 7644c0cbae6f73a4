package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkadlec/facematch/internal/config"
	"github.com/mkadlec/facematch/internal/reference"
)

var refsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove all catalog entries for a person",
	Long: `Remove every catalog entry whose name matches the given one.
Matching ignores case and diacritics, so "Jan Novák" also removes
entries stored as "jan-novak".`,
	Args: cobra.ExactArgs(1),
	RunE: runRefsRemove,
}

func init() {
	refsCmd.AddCommand(refsRemoveCmd)
}

func runRefsRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	refsFlag := mustGetString(cmd, "refs")

	cfg := config.Load()
	ctx := context.Background()

	if refsFlag == "" && cfg.Database.URL != "" {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.DeleteByName(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d references for %s\n", removed, name)
		return nil
	}

	path, err := refsFilePath(cfg, refsFlag)
	if err != nil {
		return err
	}
	set, err := reference.LoadFile(path)
	if err != nil {
		return err
	}

	want := reference.NormalizeName(name)
	kept := reference.NewSet(set.Dim())
	removed := 0
	for _, e := range set.Entries() {
		if reference.NormalizeName(e.Name) == want {
			removed++
			continue
		}
		if err := kept.AddEntry(e); err != nil {
			return err
		}
	}

	if removed == 0 {
		fmt.Printf("No references found for %s\n", name)
		return nil
	}

	if err := reference.SaveFile(path, kept); err != nil {
		return err
	}
	fmt.Printf("Removed %d references for %s from %s\n", removed, name, path)
	return nil
}
