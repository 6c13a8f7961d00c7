// Package client talks to a running cadence server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/lazypower/cadence/internal/ranking"
)

const (
	defaultServerURL = "http://127.0.0.1:37778"
	httpTimeout      = 5 * time.Second
)

// Client talks to the cadence server.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. An empty serverURL falls back to
// CADENCE_URL, then http://127.0.0.1:37778.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("CADENCE_URL")
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: serverURL,
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", req.URL.Path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(data))
	}
	return data, nil
}

// Post sends a POST request with JSON body. Returns response body.
func (c *Client) Post(path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, c.serverURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// Get sends a GET request. Returns response body.
func (c *Client) Get(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.serverURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Invalidate asks the server to drop userID's cached feeds and returns how
// many were evicted.
func (c *Client) Invalidate(userID string) (int, error) {
	data, err := c.Post("/api/users/"+url.PathEscape(userID)+"/invalidate", nil)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Evicted int `json:"evicted"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("decode invalidate response: %w", err)
	}
	return resp.Evicted, nil
}

// Feed fetches userID's feed from the server.
func (c *Client) Feed(userID string, opts ranking.Options) (*ranking.FeedResult, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Filters.Type != "" {
		q.Set("type", opts.Filters.Type)
	}
	if opts.Filters.Status != "" {
		q.Set("status", opts.Filters.Status)
	}

	path := "/api/users/" + url.PathEscape(userID) + "/feed"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	data, err := c.Get(path)
	if err != nil {
		return nil, err
	}
	var res ranking.FeedResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return &res, nil
}
