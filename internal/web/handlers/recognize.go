package handlers

import (
	"context"
	"errors"
	"image"
	"net/http"
	"strconv"

	"github.com/mkadlec/facematch/internal/constants"
	"github.com/mkadlec/facematch/internal/imaging"
	"github.com/mkadlec/facematch/internal/matcher"
)

// FaceRecognizer runs the detect-encode-match pipeline on one image.
type FaceRecognizer interface {
	Recognize(ctx context.Context, img image.Image, threshold float64) ([]matcher.MatchResult, error)
}

// RecognizeHandler handles the recognition endpoint.
type RecognizeHandler struct {
	recognizer       FaceRecognizer
	defaultThreshold float64
}

// NewRecognizeHandler creates a new recognition handler.
func NewRecognizeHandler(recognizer FaceRecognizer, defaultThreshold float64) *RecognizeHandler {
	return &RecognizeHandler{
		recognizer:       recognizer,
		defaultThreshold: defaultThreshold,
	}
}

// RecognizedFace is one face in the recognition response.
type RecognizedFace struct {
	ID    int       `json:"id"`
	Name  string    `json:"name"`
	Score float64   `json:"score"`
	BBox  []float64 `json:"bbox"` // [left, top, right, bottom] in pixels
}

// RecognizeResponse is the recognition response.
type RecognizeResponse struct {
	Faces []RecognizedFace `json:"faces"`
	Count int              `json:"count"`
}

// Recognize identifies faces in an uploaded image. The image comes in a
// multipart form under "image"; an optional "threshold" form value
// overrides the server default.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	threshold := h.defaultThreshold
	if v := r.FormValue("threshold"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "threshold must be a number")
			return
		}
		threshold = parsed
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	img, err := imaging.DecodeReader(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not decode image")
		return
	}

	results, err := h.recognizer.Recognize(r.Context(), img, threshold)
	if err != nil {
		respondError(w, recognizeErrorStatus(err), err.Error())
		return
	}

	faces := make([]RecognizedFace, len(results))
	for i, res := range results {
		faces[i] = RecognizedFace{
			ID:    res.ID,
			Name:  res.Name,
			Score: res.Score,
			BBox:  []float64{res.Box.Left, res.Box.Top, res.Box.Right, res.Box.Bottom},
		}
	}

	respondJSON(w, http.StatusOK, RecognizeResponse{Faces: faces, Count: len(faces)})
}

// recognizeErrorStatus maps pipeline errors to HTTP status codes.
// Upstream service failures are the caller's 502; a missing or broken
// reference catalog means the service itself is not ready.
func recognizeErrorStatus(err error) int {
	switch {
	case errors.Is(err, matcher.ErrUpstreamFailure):
		return http.StatusBadGateway
	case errors.Is(err, matcher.ErrEmptyReferenceSet):
		return http.StatusServiceUnavailable
	case errors.Is(err, matcher.ErrInvalidInput), errors.Is(err, matcher.ErrNotNormalized):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
