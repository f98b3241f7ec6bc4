// Package recognition talks to the external face-recognition backend on
// behalf of the Match Resolver. The wire protocol follows the same plain
// JSON-over-HTTP shape as the other example services' face-detection
// clients: POST a small JSON body, get a JSON body back, context-scoped
// timeout on the client rather than per-call deadlines baked into the URL.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FaceMatch is one similarity hit returned by the recognition engine.
type FaceMatch struct {
	FaceID     string  `json:"face_id"`
	Similarity float64 `json:"similarity"`
}

type searchRequest struct {
	FaceID    string  `json:"face_id"`
	Threshold float64 `json:"threshold"`
	MaxFaces  int     `json:"max_faces"`
}

type searchResponse struct {
	Matches []FaceMatch `json:"matches"`
	Error   string      `json:"error,omitempty"`
}

// Client is a thin HTTP client for the recognition engine's
// searchMatches operation.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a recognition engine client. baseURL is the engine's
// root URL; requestTimeout bounds each search call.
func NewClient(baseURL string, requestTimeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// SearchMatches calls searchMatches(collectionID, faceID) on the
// recognition engine, returning up to maxFaces matches at or above
// threshold similarity, excluding faceID itself. A resource-not-found
// response is treated as zero matches, not an error.
func (c *Client) SearchMatches(ctx context.Context, collectionID, faceID string, threshold float64, maxFaces int) ([]FaceMatch, error) {
	reqBody, err := json.Marshal(searchRequest{FaceID: faceID, Threshold: threshold, MaxFaces: maxFaces})
	if err != nil {
		return nil, fmt.Errorf("recognition: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/search", c.baseURL, collectionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("recognition: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognition: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("recognition: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognition: engine returned status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("recognition: decode response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("recognition: %s", result.Error)
	}

	matches := make([]FaceMatch, 0, len(result.Matches))
	for _, m := range result.Matches {
		if m.FaceID == faceID {
			continue
		}
		matches = append(matches, m)
		if len(matches) >= maxFaces {
			break
		}
	}
	return matches, nil
}
