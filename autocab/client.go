package autocab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the Autocab-style dispatch platform REST API. It owns no
// polling cadence; the engine decides when to call it.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("autocab request %s: %w", path, err)
	}
	c.setHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("autocab GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, path, result)
}

func (c *Client) post(path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("autocab marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("autocab request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("autocab POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, path, result)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}

func (c *Client) decode(resp *http.Response, path string, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("autocab read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("autocab HTTP %d on %s: %s", resp.StatusCode, path, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("autocab decode %s: %w", path, err)
		}
	}
	return nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Reconfigure updates the client's connection settings for hot-reload.
func (c *Client) Reconfigure(baseURL, apiKey string, timeout time.Duration) {
	c.baseURL = baseURL
	c.apiKey = apiKey
	c.httpClient.Timeout = timeout
}

// checkResponse validates the platform response envelope code.
func checkResponse(r *Response) error {
	if r.Code != 0 {
		return fmt.Errorf("autocab error %d: %s", r.Code, r.Msg)
	}
	return nil
}
