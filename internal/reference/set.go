// Package reference manages the catalog of known identities: an ordered
// set of (name, embedding) pairs, with YAML and PostgreSQL persistence
// and an optional HNSW index for near-duplicate lookups.
package reference

import (
	"fmt"

	"github.com/google/uuid"
)

// Entry is one known identity in the catalog.
type Entry struct {
	UID       string
	Name      string
	Embedding []float32
}

// Set is an ordered, in-memory reference catalog. Order is insertion
// order and is significant: the matcher's best-match indices and its
// tie-breaking rule are defined over it.
//
// A Set is not safe for concurrent mutation; it must not be modified
// while a recognize call is using it.
type Set struct {
	dim     int
	entries []Entry
}

// NewSet creates an empty catalog for embeddings of the given dimension.
// A dim of 0 means the dimension is inferred from the first entry.
func NewSet(dim int) *Set {
	return &Set{dim: dim}
}

// Add appends a new identity with a generated UID.
// Duplicate names are allowed; the same person may have several entries.
func (s *Set) Add(name string, embedding []float32) (Entry, error) {
	entry := Entry{
		UID:       uuid.NewString(),
		Name:      name,
		Embedding: embedding,
	}
	if err := s.AddEntry(entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// AddEntry appends an existing entry, validating its dimension against
// the rest of the catalog.
func (s *Set) AddEntry(entry Entry) error {
	if entry.Name == "" {
		return fmt.Errorf("reference name must not be empty")
	}
	if len(entry.Embedding) == 0 {
		return fmt.Errorf("reference %q has an empty embedding", entry.Name)
	}
	if s.dim == 0 {
		s.dim = len(entry.Embedding)
	}
	if len(entry.Embedding) != s.dim {
		return fmt.Errorf("reference %q has dim %d, catalog uses %d",
			entry.Name, len(entry.Embedding), s.dim)
	}
	s.entries = append(s.entries, entry)
	return nil
}

// Len returns the number of entries.
func (s *Set) Len() int {
	return len(s.entries)
}

// Dim returns the embedding dimension, or 0 for an empty untyped set.
func (s *Set) Dim() int {
	return s.dim
}

// Entries returns the entries in catalog order.
func (s *Set) Entries() []Entry {
	return s.entries
}

// Names returns the identity names in catalog order.
// Implements matcher.ReferenceSource.
func (s *Set) Names() []string {
	names := make([]string, len(s.entries))
	for i := range s.entries {
		names[i] = s.entries[i].Name
	}
	return names
}

// Embeddings returns the embedding vectors in catalog order.
// Implements matcher.ReferenceSource.
func (s *Set) Embeddings() [][]float32 {
	embeddings := make([][]float32, len(s.entries))
	for i := range s.entries {
		embeddings[i] = s.entries[i].Embedding
	}
	return embeddings
}

// FindByName returns all entries whose normalized name equals the
// normalized query, so "Jan Novák" finds "jan-novak".
func (s *Set) FindByName(name string) []Entry {
	want := NormalizeName(name)
	var found []Entry
	for _, e := range s.entries {
		if NormalizeName(e.Name) == want {
			found = append(found, e)
		}
	}
	return found
}
