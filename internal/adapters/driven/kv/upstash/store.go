// Package upstash implements the key-value store port against the
// Upstash Redis REST API.
package upstash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
)

// defaultTimeout bounds individual REST calls.
const defaultTimeout = 15 * time.Second

// Store talks to an Upstash Redis instance over its REST API. Values
// are stored as opaque strings; callers own serialisation.
type Store struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ driven.KVStore = (*Store)(nil)

// New creates an Upstash REST store. client may be nil; a client with
// defaultTimeout is then used.
func New(baseURL, token string, client *http.Client) *Store {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

// getResponse is the REST API envelope for GET commands. A null result
// means the key does not exist.
type getResponse struct {
	Result *string `json:"result"`
}

// Get retrieves a value. The second return is false on a cache miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := s.do(ctx, http.MethodGet, "/get/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, false, err
	}

	var resp getResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, fmt.Errorf("decode get response: %w", err)
	}
	if resp.Result == nil {
		return nil, false, nil
	}
	return []byte(*resp.Result), true, nil
}

// Set stores a value, replacing any prior value for the key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.do(ctx, http.MethodPost, "/set/"+url.PathEscape(key), value)
	return err
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.do(ctx, http.MethodPost, "/del/"+url.PathEscape(key), nil)
	return err
}

func (s *Store) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstash request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstash request failed with status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
