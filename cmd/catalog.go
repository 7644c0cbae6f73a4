package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkadlec/facematch/internal/config"
	"github.com/mkadlec/facematch/internal/reference"
)

// errNoCatalog is returned when neither a database nor a references file
// is configured.
var errNoCatalog = errors.New("no reference catalog configured: set DATABASE_URL or REFERENCES_FILE (or pass --refs)")

// loadCatalog loads the reference catalog for read-only use. A non-empty
// refsFile (the --refs flag) takes precedence, then the database, then
// the REFERENCES_FILE fallback.
func loadCatalog(ctx context.Context, cfg *config.Config, refsFile string) (*reference.Set, error) {
	if refsFile != "" {
		return reference.LoadFile(refsFile)
	}

	if cfg.Database.URL != "" {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.List(ctx)
	}

	if cfg.Matching.ReferencesFile != "" {
		return reference.LoadFile(cfg.Matching.ReferencesFile)
	}

	return nil, errNoCatalog
}

// openStore connects to PostgreSQL and runs pending migrations.
func openStore(ctx context.Context, cfg *config.Config) (*reference.Store, error) {
	store, err := reference.NewStore(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}
