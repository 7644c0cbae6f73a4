package cmd

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mkadlec/facematch/internal/config"
	"github.com/mkadlec/facematch/internal/constants"
	"github.com/mkadlec/facematch/internal/detector"
	"github.com/mkadlec/facematch/internal/encoder"
	"github.com/mkadlec/facematch/internal/imaging"
	"github.com/mkadlec/facematch/internal/matcher"
	"github.com/mkadlec/facematch/internal/reference"
)

var refsImportCmd = &cobra.Command{
	Use:   "import <name> <image>...",
	Short: "Import reference images for a person",
	Long: `Import one or more photos of a person into the reference catalog.

Each image should show the person clearly; the largest detected face in
each image becomes one catalog entry. Multiple entries per person are
fine and usually improve matching.

Examples:
  # Add two reference photos for Alice
  facematch refs import alice alice1.jpg alice2.jpg

  # Import into a local YAML catalog
  facematch refs import alice alice.jpg --refs references.yaml`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRefsImport,
}

func init() {
	refsCmd.AddCommand(refsImportCmd)

	refsImportCmd.Flags().String("model", "", "Embedding model name stored with the entries")
}

// largestFace picks the face with the biggest bounding box area.
func largestFace(faces []matcher.DetectedFace) matcher.DetectedFace {
	best := faces[0]
	bestArea := best.Box.Width() * best.Box.Height()
	for _, f := range faces[1:] {
		if area := f.Box.Width() * f.Box.Height(); area > bestArea {
			best = f
			bestArea = area
		}
	}
	return best
}

// detectReferenceFaces finds one face crop per reference image.
func detectReferenceFaces(ctx context.Context, det *detector.Client, imagePaths []string) ([]image.Image, error) {
	bar := progressbar.NewOptions(len(imagePaths),
		progressbar.OptionSetDescription("Detecting faces"),
		progressbar.OptionShowCount(),
	)

	crops := make([]image.Image, 0, len(imagePaths))
	for _, path := range imagePaths {
		data, err := os.ReadFile(path) //nolint:gosec // user-provided CLI argument
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		img, err := imaging.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		faces, err := det.Detect(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("detection failed for %s: %w", path, err)
		}
		if len(faces) == 0 {
			return nil, fmt.Errorf("no face found in %s", path)
		}
		if len(faces) > 1 {
			fmt.Fprintf(os.Stderr, "\nWarning: %d faces in %s, using the largest\n", len(faces), path)
		}

		crops = append(crops, largestFace(faces).Image)
		bar.Add(1)
	}
	fmt.Println()

	return crops, nil
}

// warnNearDuplicates flags new embeddings that sit very close to an
// existing catalog entry, which usually means the photo was imported
// before or two people are hard to tell apart.
func warnNearDuplicates(existing *reference.Set, embeddings [][]float32, imagePaths []string) {
	if existing.Len() == 0 {
		return
	}

	index := reference.NewIndex()
	if err := index.BuildFromSet(existing); err != nil {
		return // advisory only
	}

	for i, emb := range embeddings {
		if entry, distance, ok := index.NearDuplicate(emb, constants.DuplicateDistance); ok {
			fmt.Fprintf(os.Stderr, "Warning: %s is very close to existing reference %q (distance %.3f)\n",
				imagePaths[i], entry.Name, distance)
		}
	}
}

func runRefsImport(cmd *cobra.Command, args []string) error {
	name := args[0]
	imagePaths := args[1:]
	model := mustGetString(cmd, "model")
	refsFlag := mustGetString(cmd, "refs")

	cfg := config.Load()
	ctx := context.Background()

	crops, err := detectReferenceFaces(ctx, detector.New(cfg.Detector), imagePaths)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(crops),
		progressbar.OptionSetDescription("Encoding faces"),
		progressbar.OptionShowCount(),
	)
	enc := encoder.New(cfg.Encoder, encoder.WithProgress(func(done, total int) {
		_ = bar.Set(done)
	}))
	embeddings, err := enc.Encode(ctx, crops)
	if err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}
	fmt.Println()

	if refsFlag == "" && cfg.Database.URL != "" {
		return importToStore(ctx, cfg, name, model, embeddings, imagePaths)
	}
	return importToFile(cfg, refsFlag, name, embeddings, imagePaths)
}

// importToStore saves the new references to PostgreSQL.
func importToStore(ctx context.Context, cfg *config.Config, name, model string, embeddings [][]float32, imagePaths []string) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	existing, err := store.List(ctx)
	if err != nil {
		return err
	}
	warnNearDuplicates(existing, embeddings, imagePaths)

	for _, emb := range embeddings {
		if _, err := store.Save(ctx, name, emb, model); err != nil {
			return fmt.Errorf("failed to save reference: %w", err)
		}
	}

	fmt.Printf("Imported %d references for %s (PostgreSQL)\n", len(embeddings), name)
	return nil
}

// importToFile saves the new references to the YAML catalog.
func importToFile(cfg *config.Config, refsFlag, name string, embeddings [][]float32, imagePaths []string) error {
	path, err := refsFilePath(cfg, refsFlag)
	if err != nil {
		return err
	}

	set, err := loadOrEmptySet(path, 0)
	if err != nil {
		return err
	}
	warnNearDuplicates(set, embeddings, imagePaths)

	for _, emb := range embeddings {
		if _, err := set.Add(name, emb); err != nil {
			return err
		}
	}

	if err := reference.SaveFile(path, set); err != nil {
		return err
	}

	fmt.Printf("Imported %d references for %s into %s\n", len(embeddings), name, path)
	return nil
}
