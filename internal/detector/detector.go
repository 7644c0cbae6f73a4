// Package detector is an HTTP client for the face detection service.
// The service (an InsightFace-style sidecar) takes an image and returns
// bounding boxes, detection scores, and optionally the aligned face crops.
package detector

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
	"github.com/mkadlec/facematch/internal/imaging"
	"github.com/mkadlec/facematch/internal/matcher"
)

// Client talks to the detection service. Implements matcher.Detector.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a detector client from config.
func New(cfg config.Detector) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// detectResponse is the service's JSON answer.
type detectResponse struct {
	Faces []detectedFace `json:"faces"`
}

type detectedFace struct {
	BBox     []float64 `json:"bbox"` // [x1, y1, x2, y2] in pixels
	DetScore float64   `json:"det_score"`
	Crop     string    `json:"crop,omitempty"` // base64 JPEG of the aligned face
}

// Detect sends the image to the detection service and returns the faces
// found in it. When the service omits aligned crops, the face region is
// cut from the source image locally.
func (c *Client) Detect(ctx context.Context, img image.Image) ([]matcher.DetectedFace, error) {
	imgData, err := imaging.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("could not encode image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(imgData))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detection request failed with status %d: %s",
			resp.StatusCode, readErrorBody(resp.Body))
	}

	var result detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	faces := make([]matcher.DetectedFace, 0, len(result.Faces))
	for i, f := range result.Faces {
		if len(f.BBox) != 4 {
			return nil, fmt.Errorf("face %d has malformed bbox %v", i, f.BBox)
		}
		box := matcher.Box{Left: f.BBox[0], Top: f.BBox[1], Right: f.BBox[2], Bottom: f.BBox[3]}

		var crop image.Image
		if f.Crop != "" {
			cropData, err := base64.StdEncoding.DecodeString(f.Crop)
			if err != nil {
				return nil, fmt.Errorf("face %d has malformed crop: %w", i, err)
			}
			crop, err = imaging.Decode(cropData)
			if err != nil {
				return nil, fmt.Errorf("face %d crop: %w", i, err)
			}
		} else {
			crop = imaging.Crop(img, box)
		}

		faces = append(faces, matcher.DetectedFace{
			Box:      box,
			Image:    crop,
			DetScore: f.DetScore,
		})
	}

	return faces, nil
}

// readErrorBody reads a response body for inclusion in an error message.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
