package glucoseapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/slickwilli/neoview/models"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("glucose api responded %d: %s", e.StatusCode, e.Detail)
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported api url scheme %q", u.Scheme)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, method, path string, data io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/%s", c.baseURL, path), data)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode, Detail: strings.TrimSpace(string(body))}
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Detail != "" {
			apiErr.Detail = e.Detail
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// PostReading stores a reading; the backend fills in id, category and color.
func (c *Client) PostReading(ctx context.Context, in models.ReadingInput) (*models.Reading, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := c.buildRequest(ctx, http.MethodPost, "api/glucose", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	var reading models.Reading
	if err := c.do(req, &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}

// Latest returns nil when the backend has no readings.
func (c *Client) Latest(ctx context.Context) (*models.Reading, error) {
	req, err := c.buildRequest(ctx, http.MethodGet, "api/glucose/latest", nil)
	if err != nil {
		return nil, err
	}
	var reading *models.Reading
	if err := c.do(req, &reading); err != nil {
		return nil, err
	}
	return reading, nil
}

func (c *Client) History(ctx context.Context, limit int) ([]models.Reading, error) {
	path := "api/glucose/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	req, err := c.buildRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var history []models.Reading
	if err := c.do(req, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	req, err := c.buildRequest(ctx, http.MethodGet, "api/glucose/stats", nil)
	if err != nil {
		return nil, err
	}
	var stats models.Stats
	if err := c.do(req, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Clear deletes every stored reading and returns the backend's message.
func (c *Client) Clear(ctx context.Context) (string, error) {
	req, err := c.buildRequest(ctx, http.MethodDelete, "api/glucose/clear", nil)
	if err != nil {
		return "", err
	}
	var msg messageResponse
	if err := c.do(req, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}
