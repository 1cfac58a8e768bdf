package record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"modscout/internal/config"
)

// Client talks to the canonical record store API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient creates a catalog client.
func NewClient(cfg config.Catalog, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("catalog base url required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type listResponse struct {
	Records []Record `json:"records"`
}

// ListRecords fetches every record from the store.
func (c *Client) ListRecords(ctx context.Context) ([]Record, error) {
	body, err := c.do(ctx, http.MethodGet, "/records", nil)
	if err != nil {
		return nil, err
	}
	var parsed listResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("catalog list: decode response: %w", err)
	}
	return parsed.Records, nil
}

// CreateRecord creates a new pending record in the store. The initial note is
// the first line of the record's audit trail.
func (c *Client) CreateRecord(ctx context.Context, title, url, initialNote string) (*Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("catalog create: title required")
	}
	payload := map[string]string{
		"title":  title,
		"url":    strings.TrimSpace(url),
		"status": StatusPending,
		"notes":  strings.TrimSpace(initialNote),
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("catalog create: encode body: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/records", encoded)
	if err != nil {
		return nil, err
	}
	var created Record
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("catalog create: decode response: %w", err)
	}
	return &created, nil
}

// AppendNote appends one line to a record's notes. The store implements the
// append; modscout never sends the full notes value, so curator-authored
// content cannot be overwritten from here.
func (c *Client) AppendNote(ctx context.Context, recordID, note string) error {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return errors.New("catalog note: record id required")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return errors.New("catalog note: note required")
	}
	encoded, err := json.Marshal(map[string]string{"note": note})
	if err != nil {
		return fmt.Errorf("catalog note: encode body: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/records/"+recordID+"/notes", encoded)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("catalog request: new request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: http error: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("catalog request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return payload, nil
}
