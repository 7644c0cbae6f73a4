// Package encoder is an HTTP client for the face embedding service.
// It turns aligned face crops into fixed-dimension embedding vectors.
// The service is expected to L2-normalize its output; the matcher
// verifies that invariant at its own boundary.
package encoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkadlec/facematch/internal/config"
	"github.com/mkadlec/facematch/internal/constants"
	"github.com/mkadlec/facematch/internal/imaging"
)

// ProgressFunc is called after every completed batch with the number of
// faces encoded so far and the total. Used by the CLI to drive a
// progress bar during bulk imports.
type ProgressFunc func(done, total int)

// Client talks to the embedding service. Implements matcher.Encoder.
type Client struct {
	baseURL    string
	dim        int
	batchSize  int
	onProgress ProgressFunc
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithProgress sets a per-batch progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) {
		c.onProgress = fn
	}
}

// WithBatchSize overrides the number of crops sent per request.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// New creates an encoder client from config.
func New(cfg config.Encoder, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		dim:       cfg.Dim,
		batchSize: constants.EncodeBatchSize,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// embedRequest is the service's JSON input: base64 JPEG crops.
type embedRequest struct {
	Images []string `json:"images"`
}

// embedResponse is the service's JSON answer.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dim        int         `json:"dim"`
	Model      string      `json:"model"`
}

// Encode sends the face crops to the embedding service in batches and
// returns one embedding per crop, in input order. The returned count and
// dimension are validated; mismatches surface as errors for the matcher
// to classify as upstream failures.
func (c *Client) Encode(ctx context.Context, faces []image.Image) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(faces))

	for start := 0; start < len(faces); start += c.batchSize {
		end := min(start+c.batchSize, len(faces))

		batch, err := c.encodeBatch(ctx, faces[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)

		if c.onProgress != nil {
			c.onProgress(end, len(faces))
		}
	}

	return embeddings, nil
}

func (c *Client) encodeBatch(ctx context.Context, faces []image.Image) ([][]float32, error) {
	images := make([]string, len(faces))
	for i, face := range faces {
		data, err := imaging.EncodeJPEG(face)
		if err != nil {
			return nil, fmt.Errorf("could not encode face %d: %w", i, err)
		}
		images[i] = base64.StdEncoding.EncodeToString(data)
	}

	body, err := json.Marshal(embedRequest{Images: images})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding request failed with status %d: %s",
			resp.StatusCode, readErrorBody(resp.Body))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	if len(result.Embeddings) != len(faces) {
		return nil, fmt.Errorf("embedding service returned %d embeddings for %d faces",
			len(result.Embeddings), len(faces))
	}
	for i, emb := range result.Embeddings {
		if c.dim > 0 && len(emb) != c.dim {
			return nil, fmt.Errorf("embedding %d has dim %d, want %d", i, len(emb), c.dim)
		}
	}

	return result.Embeddings, nil
}

// readErrorBody reads a response body for inclusion in an error message.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
