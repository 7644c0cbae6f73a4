package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkadlec/facematch/internal/config"
	"github.com/mkadlec/facematch/internal/constants"
	"github.com/mkadlec/facematch/internal/detector"
	"github.com/mkadlec/facematch/internal/encoder"
	"github.com/mkadlec/facematch/internal/matcher"
	"github.com/mkadlec/facematch/internal/reference"
	"github.com/mkadlec/facematch/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recognition web server",
	Long: `Start the Facematch web server.
The server exposes face recognition and the reference catalog over a
JSON API; the reference catalog is loaded once at startup.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Float64("threshold", constants.RecommendedThreshold, "Default match threshold for the recognize endpoint")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// initReferenceIndex loads or builds the ANN index over the catalog.
func initReferenceIndex(refs *reference.Set, indexPath string) *reference.Index {
	index := reference.NewIndex()

	if indexPath != "" {
		fmt.Printf("Loading reference index from %s...\n", indexPath)
		if err := index.Load(refs, indexPath); err != nil {
			fmt.Printf("Warning: failed to load reference index: %v\n", err)
			return nil
		}
	} else {
		if err := index.BuildFromSet(refs); err != nil {
			fmt.Printf("Warning: failed to build reference index: %v\n", err)
			return nil
		}
	}

	fmt.Printf("Reference index ready with %d entries\n", index.Count())
	return index
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	refs, err := loadCatalog(ctx, cfg, "")
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d references (dim %d)\n", refs.Len(), refs.Dim())

	index := initReferenceIndex(refs, cfg.Database.HNSWIndexPath)

	recognizer := matcher.NewRecognizer(
		detector.New(cfg.Detector),
		encoder.New(cfg.Encoder),
		refs,
	)

	port, host := resolveServeHostPort(cmd)

	deps := web.Dependencies{
		Recognizer: recognizer,
		Catalog:    refs,
		Threshold:  mustGetFloat64(cmd, "threshold"),
	}
	if index != nil {
		deps.Searcher = index
	}

	server := web.NewServer(host, port, deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		if index != nil && cfg.Database.HNSWIndexPath != "" {
			if err := index.Save(cfg.Database.HNSWIndexPath); err != nil {
				fmt.Printf("Warning: failed to save reference index: %v\n", err)
			} else {
				fmt.Println("Reference index saved to disk")
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Facematch API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
