package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/mkadlec/facematch/internal/config"
)

// Store is the PostgreSQL-backed reference catalog. Embeddings live in a
// pgvector column so similarity lookups can run in the database.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection pool against the configured database.
func NewStore(cfg *config.Database) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool.
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Verify connection.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a new identity and returns the stored entry.
func (s *Store) Save(ctx context.Context, name string, embedding []float32, model string) (Entry, error) {
	entry := Entry{
		UID:       uuid.NewString(),
		Name:      name,
		Embedding: embedding,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (uid, name, normalized_name, embedding, dim, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, entry.UID, name, NormalizeName(name), pgvector.NewVector(embedding), len(embedding), model)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to save identity %q: %w", name, err)
	}

	return entry, nil
}

// List loads the whole catalog in insertion order.
func (s *Store) List(ctx context.Context) (*Set, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, name, embedding
		FROM identities
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	set := NewSet(0)
	for rows.Next() {
		var entry Entry
		var vec pgvector.Vector
		if err := rows.Scan(&entry.UID, &entry.Name, &vec); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		entry.Embedding = vec.Slice()
		if err := set.AddEntry(entry); err != nil {
			return nil, fmt.Errorf("inconsistent catalog: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate identities: %w", err)
	}

	return set, nil
}

// DeleteByName removes all entries whose normalized name matches.
// Returns the number of deleted rows.
func (s *Store) DeleteByName(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM identities WHERE normalized_name = $1", NormalizeName(name))
	if err != nil {
		return 0, fmt.Errorf("failed to delete identity %q: %w", name, err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored identities.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identities").Scan(&count)
	return count, err
}

// FindSimilar returns the identities closest to the query embedding by
// cosine distance, nearest first.
func (s *Store) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]Entry, []float64, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, name, embedding, embedding <=> $1 AS distance
		FROM identities
		ORDER BY embedding <=> $1
		LIMIT $2
	`, vec, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search identities: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	var distances []float64
	for rows.Next() {
		var entry Entry
		var vecOut pgvector.Vector
		var distance float64
		if err := rows.Scan(&entry.UID, &entry.Name, &vecOut, &distance); err != nil {
			return nil, nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		entry.Embedding = vecOut.Slice()
		entries = append(entries, entry)
		distances = append(distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate identities: %w", err)
	}

	return entries, distances, nil
}
