//go:build integration

package reference

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mkadlec/facematch/internal/config"
)

func setupTestContainer(t *testing.T) (*Store, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.Database{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	store, err := NewStore(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		store.Close()
		container.Terminate(ctx)
	}

	return store, cleanup
}

func TestStoreSaveAndList(t *testing.T) {
	store, cleanup := setupTestContainer(t)
	if store == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	saved, err := store.Save(ctx, "Alice", []float32{1, 0, 0}, "buffalo_l")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.UID == "" {
		t.Error("Save() returned entry without UID")
	}
	if _, err := store.Save(ctx, "Bob", []float32{0, 1, 0}, "buffalo_l"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	set, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("List() Len() = %d, want 2", set.Len())
	}
	names := set.Names()
	if names[0] != "Alice" || names[1] != "Bob" {
		t.Errorf("names = %v, want insertion order Alice, Bob", names)
	}
	if set.Dim() != 3 {
		t.Errorf("Dim() = %d, want 3", set.Dim())
	}
}

func TestStoreFindSimilar(t *testing.T) {
	store, cleanup := setupTestContainer(t)
	if store == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	for _, e := range []struct {
		name      string
		embedding []float32
	}{
		{"Alice", []float32{1, 0, 0}},
		{"Bob", []float32{0, 1, 0}},
		{"Carol", []float32{0, 0, 1}},
	} {
		if _, err := store.Save(ctx, e.name, e.embedding, "buffalo_l"); err != nil {
			t.Fatalf("Save(%q) error = %v", e.name, err)
		}
	}

	entries, distances, err := store.FindSimilar(ctx, []float32{0.9, 0.1, 0}, 2)
	if err != nil {
		t.Fatalf("FindSimilar() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("FindSimilar() returned %d entries, want 2", len(entries))
	}
	if entries[0].Name != "Alice" {
		t.Errorf("nearest = %q, want Alice", entries[0].Name)
	}
	if distances[0] > distances[1] {
		t.Errorf("distances not ascending: %v", distances)
	}
}

func TestStoreDeleteByName(t *testing.T) {
	store, cleanup := setupTestContainer(t)
	if store == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	// Two entries for the same person under different spellings.
	if _, err := store.Save(ctx, "Jan Novák", []float32{1, 0, 0}, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Save(ctx, "jan-novak", []float32{0, 1, 0}, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	deleted, err := store.DeleteByName(ctx, "JAN NOVAK")
	if err != nil {
		t.Fatalf("DeleteByName() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("DeleteByName() = %d, want 2", deleted)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}
