package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mkadlec/facematch/internal/constants"
	"github.com/mkadlec/facematch/internal/reference"
)

// Catalog lists the known identities.
type Catalog interface {
	Entries() []reference.Entry
	Dim() int
}

// SimilarSearcher finds catalog entries near a query embedding.
type SimilarSearcher interface {
	Search(query []float32, k int) ([]reference.Entry, []float64, error)
}

// ReferencesHandler handles the reference catalog endpoints.
type ReferencesHandler struct {
	catalog  Catalog
	searcher SimilarSearcher
}

// NewReferencesHandler creates a new references handler.
func NewReferencesHandler(catalog Catalog, searcher SimilarSearcher) *ReferencesHandler {
	return &ReferencesHandler{
		catalog:  catalog,
		searcher: searcher,
	}
}

// ReferenceInfo describes one catalog entry. Embeddings are not exposed.
type ReferenceInfo struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// ListResponse is the catalog listing response.
type ListResponse struct {
	References []ReferenceInfo `json:"references"`
	Count      int             `json:"count"`
	Dim        int             `json:"dim"`
}

// List returns the catalog entries in order.
func (h *ReferencesHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.catalog.Entries()

	refs := make([]ReferenceInfo, len(entries))
	for i, e := range entries {
		refs[i] = ReferenceInfo{UID: e.UID, Name: e.Name}
	}

	respondJSON(w, http.StatusOK, ListResponse{
		References: refs,
		Count:      len(refs),
		Dim:        h.catalog.Dim(),
	})
}

// SimilarRequest asks for catalog entries near a named identity.
type SimilarRequest struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

// SimilarEntry is one neighbor in the similarity response.
type SimilarEntry struct {
	UID      string  `json:"uid"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"` // cosine distance, lower is closer
}

// SimilarResponse lists the nearest catalog entries.
type SimilarResponse struct {
	Query   string         `json:"query"`
	Similar []SimilarEntry `json:"similar"`
}

// Similar finds the catalog entries closest to a named identity. Useful
// for spotting look-alikes and duplicate imports.
func (h *ReferencesHandler) Similar(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		respondError(w, http.StatusServiceUnavailable, "similarity index not available")
		return
	}

	var req SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = constants.DefaultSimilarLimit
	}

	query := h.findByName(req.Name)
	if query == nil {
		respondError(w, http.StatusNotFound, "no reference with that name")
		return
	}

	// Ask for one extra neighbor since the query entry is its own
	// nearest match.
	entries, distances, err := h.searcher.Search(query.Embedding, req.Limit+1)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	similar := make([]SimilarEntry, 0, req.Limit)
	for i, e := range entries {
		if e.UID == query.UID {
			continue
		}
		similar = append(similar, SimilarEntry{UID: e.UID, Name: e.Name, Distance: distances[i]})
		if len(similar) == req.Limit {
			break
		}
	}

	respondJSON(w, http.StatusOK, SimilarResponse{Query: query.Name, Similar: similar})
}

// findByName returns the first catalog entry matching the normalized name.
func (h *ReferencesHandler) findByName(name string) *reference.Entry {
	want := reference.NormalizeName(name)
	for _, e := range h.catalog.Entries() {
		if reference.NormalizeName(e.Name) == want {
			return &e
		}
	}
	return nil
}
