// Package orthanc is a thin HTTP client for the external Orthanc DICOM
// server. Network DICOM (C-STORE/C-FIND) stays delegated to Orthanc;
// this client only proxies its REST API.
package orthanc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client manages communication with the Orthanc REST API.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a new Orthanc API client with a default HTTP client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// System returns the raw /system document describing the Orthanc peer.
func (c *Client) System(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/system", nil)
	if err != nil {
		return nil, fmt.Errorf("create system request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get orthanc system info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orthanc /system returned status %d", resp.StatusCode)
	}

	var system map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&system); err != nil {
		return nil, fmt.Errorf("decode system response: %w", err)
	}
	return system, nil
}

// ListStudies retrieves the list of study IDs known to Orthanc.
func (c *Client) ListStudies(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/studies", nil)
	if err != nil {
		return nil, fmt.Errorf("create studies request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get studies from orthanc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orthanc /studies returned status %d", resp.StatusCode)
	}

	// The /studies endpoint returns a JSON array of opaque IDs.
	var studies []string
	if err := json.NewDecoder(resp.Body).Decode(&studies); err != nil {
		return nil, fmt.Errorf("decode studies response: %w", err)
	}
	return studies, nil
}

// InstancePreview retrieves a rendered preview image for an instance.
// Returns the image bytes and the content type.
func (c *Client) InstancePreview(ctx context.Context, instanceID string) ([]byte, string, error) {
	url := fmt.Sprintf("%s/instances/%s/preview", c.BaseURL, instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create preview request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get preview for instance %s: %w", instanceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("instance %s not found", instanceID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("orthanc preview returned status %d for instance %s", resp.StatusCode, instanceID)
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read preview body for instance %s: %w", instanceID, err)
	}

	return image, resp.Header.Get("Content-Type"), nil
}
