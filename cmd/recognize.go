package cmd

import (
	"context"
	"fmt"
	"image"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkadlec/facematch/internal/config"
	"github.com/mkadlec/facematch/internal/constants"
	"github.com/mkadlec/facematch/internal/detector"
	"github.com/mkadlec/facematch/internal/encoder"
	"github.com/mkadlec/facematch/internal/imaging"
	"github.com/mkadlec/facematch/internal/matcher"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Identify faces in an image against the reference catalog",
	Long: `Identify the people in a photo by matching detected faces against
the reference catalog.

A face is labeled with a reference name only when its similarity score
is strictly above --threshold; everything else comes back as "unknown".
The default threshold of 0 accepts any positive similarity; values
around 0.5-0.6 give a reasonable true/false positive ratio in practice.

Examples:
  # Recognize faces with the default threshold
  facematch recognize family.jpg

  # Stricter matching, JSON output
  facematch recognize family.jpg --threshold 0.6 --json

  # Use a local references file instead of the database
  facematch recognize family.jpg --refs references.yaml

  # Save a copy with boxes drawn around the faces
  facematch recognize family.jpg --annotate out.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().Float64("threshold", constants.DefaultThreshold, "Minimum similarity score for a match (strict, 0.5-0.6 advised)")
	recognizeCmd.Flags().Bool("json", false, "Output as JSON")
	recognizeCmd.Flags().String("refs", "", "YAML references file (overrides DATABASE_URL and REFERENCES_FILE)")
	recognizeCmd.Flags().String("annotate", "", "Write a copy of the image with face boxes to this path")
}

// recognizeOutput is the JSON output structure.
type recognizeOutput struct {
	Image string           `json:"image"`
	Faces []recognizedFace `json:"faces"`
	Count int              `json:"count"`
}

type recognizedFace struct {
	ID    int       `json:"id"`
	Name  string    `json:"name"`
	Score float64   `json:"score"`
	BBox  []float64 `json:"bbox"`
}

func runRecognize(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	threshold := mustGetFloat64(cmd, "threshold")
	jsonOutput := mustGetBool(cmd, "json")
	refsFile := mustGetString(cmd, "refs")
	annotatePath := mustGetString(cmd, "annotate")

	cfg := config.Load()
	ctx := context.Background()

	refs, err := loadCatalog(ctx, cfg, refsFile)
	if err != nil {
		return err
	}
	if !jsonOutput {
		fmt.Printf("Loaded %d references\n", refs.Len())
	}

	data, err := os.ReadFile(imagePath) //nolint:gosec // user-provided CLI argument
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return err
	}

	recognizer := matcher.NewRecognizer(
		detector.New(cfg.Detector),
		encoder.New(cfg.Encoder),
		refs,
	)

	results, err := recognizer.Recognize(ctx, img, threshold)
	if err != nil {
		return err
	}

	if annotatePath != "" {
		if err := saveAnnotated(img, results, annotatePath); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Printf("Annotated image saved to %s\n", annotatePath)
		}
	}

	if jsonOutput {
		faces := make([]recognizedFace, len(results))
		for i, res := range results {
			faces[i] = recognizedFace{
				ID:    res.ID,
				Name:  res.Name,
				Score: res.Score,
				BBox:  []float64{res.Box.Left, res.Box.Top, res.Box.Right, res.Box.Bottom},
			}
		}
		return outputJSON(recognizeOutput{Image: imagePath, Faces: faces, Count: len(faces)})
	}

	printRecognizeTable(results)
	return nil
}

// printRecognizeTable prints the human-readable recognition results.
func printRecognizeTable(results []matcher.MatchResult) {
	if len(results) == 0 {
		fmt.Println("No faces found")
		return
	}

	fmt.Printf("Found %d faces:\n\n", len(results))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCORE\tBOX (L, T, R, B)")
	fmt.Fprintln(w, "--\t----\t-----\t----------------")

	for i := range results {
		res := &results[i]
		score := "-"
		if res.Matched() {
			score = fmt.Sprintf("%.4f", res.Score)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.0f, %.0f, %.0f, %.0f\n",
			res.ID, res.Name, score,
			res.Box.Left, res.Box.Top, res.Box.Right, res.Box.Bottom)
	}

	w.Flush()
}

// saveAnnotated draws face boxes on the image and writes it as JPEG,
// downscaled to a reviewable size.
func saveAnnotated(img image.Image, results []matcher.MatchResult, path string) error {
	annotated := imaging.Annotate(img, results, 6, 10)
	annotated = imaging.ResizeMax(annotated, 1080)

	data, err := imaging.EncodeJPEG(annotated)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write annotated image: %w", err)
	}
	return nil
}
