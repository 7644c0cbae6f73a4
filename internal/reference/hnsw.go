package reference

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"

	"github.com/mkadlec/facematch/internal/constants"
)

// Index is an approximate-nearest-neighbor index over a reference
// catalog, used for near-duplicate detection on import and for the
// "refs similar" lookup. Recognition itself always uses the exact
// engine; ANN results are advisory only.
type Index struct {
	graph     *hnsw.Graph[int]
	idToEntry map[int]Entry
	mu        sync.RWMutex
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{idToEntry: make(map[int]Entry)}
}

// BuildFromSet builds the index from a catalog. Node keys are the
// entry ordinals within the set.
func (x *Index) BuildFromSet(set *Set) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	entries := set.Entries()
	if len(entries) == 0 {
		x.graph = nil
		x.idToEntry = make(map[int]Entry)
		return nil
	}

	g := hnsw.NewGraph[int]()
	g.M = constants.HNSWMaxNeighbors
	g.Ml = 1.0 / float64(constants.HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance

	x.idToEntry = make(map[int]Entry, len(entries))
	for i, e := range entries {
		g.Add(hnsw.MakeNode(i, e.Embedding))
		x.idToEntry[i] = e
	}

	x.graph = g
	return nil
}

// Add appends a single entry under the next free ordinal.
func (x *Index) Add(entry Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(entry.Embedding) == 0 {
		return fmt.Errorf("entry %q has an empty embedding", entry.Name)
	}

	if x.graph == nil {
		x.graph = hnsw.NewGraph[int]()
		x.graph.M = constants.HNSWMaxNeighbors
		x.graph.Ml = 1.0 / float64(constants.HNSWMaxNeighbors)
		x.graph.Distance = hnsw.CosineDistance
	}

	id := len(x.idToEntry)
	x.graph.Add(hnsw.MakeNode(id, entry.Embedding))
	x.idToEntry[id] = entry
	return nil
}

// Search finds the k nearest catalog entries to the query embedding.
// Distances are exact cosine distances recomputed from the node vectors,
// not the graph's internal estimates.
func (x *Index) Search(query []float32, k int) ([]Entry, []float64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph == nil {
		return nil, nil, errors.New("index not initialized")
	}

	neighbors := x.graph.Search(query, k)

	entries := make([]Entry, len(neighbors))
	distances := make([]float64, len(neighbors))
	for i, n := range neighbors {
		entries[i] = x.idToEntry[n.Key]
		distances[i] = CosineDistance(query, n.Value)
	}
	return entries, distances, nil
}

// NearDuplicate returns the closest existing entry when it lies within
// maxDistance of the query, for import-time duplicate warnings.
func (x *Index) NearDuplicate(query []float32, maxDistance float64) (Entry, float64, bool) {
	entries, distances, err := x.Search(query, 1)
	if err != nil || len(entries) == 0 {
		return Entry{}, 0, false
	}
	if distances[0] > maxDistance {
		return Entry{}, 0, false
	}
	return entries[0], distances[0], true
}

// Count returns the number of indexed entries.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.idToEntry)
}

// Load restores a persisted graph built from the same catalog. Node
// keys are catalog ordinals, so the set must be the one the graph was
// saved from; on a missing file, a read error, or a size mismatch the
// index is rebuilt from the set instead.
func (x *Index) Load(set *Set, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return x.BuildFromSet(set)
	}

	saved, err := hnsw.LoadSavedGraph[int](path)
	if err != nil || saved.Len() != set.Len() {
		return x.BuildFromSet(set)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.graph = saved.Graph
	entries := set.Entries()
	x.idToEntry = make(map[int]Entry, len(entries))
	for i, e := range entries {
		x.idToEntry[i] = e
	}
	return nil
}

// Save persists the graph to disk. An empty index removes the file.
func (x *Index) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph == nil {
		_ = os.Remove(path)
		return nil
	}

	f, err := os.Create(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return fmt.Errorf("failed to create HNSW index file: %w", err)
	}
	defer f.Close()

	if err := x.graph.Export(f); err != nil {
		return fmt.Errorf("exporting HNSW graph: %w", err)
	}
	return nil
}
