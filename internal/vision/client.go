package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient implementa Provider usando HTTP contra un proveedor externo.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  httpClient,
	}
}

func (c *HTTPClient) AnalyzePhoto(ctx context.Context, photoURL string) (PhotoAnalysis, error) {
	payload, err := json.Marshal(map[string]string{"photo_url": photoURL})
	if err != nil {
		return PhotoAnalysis{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(payload))
	if err != nil {
		return PhotoAnalysis{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return PhotoAnalysis{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PhotoAnalysis{}, fmt.Errorf("vision backend status %d", resp.StatusCode)
	}

	var analysis PhotoAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return PhotoAnalysis{}, fmt.Errorf("decode vision response: %w", err)
	}
	return analysis, nil
}
