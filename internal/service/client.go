// Package service is the HTTP client for the business-network service that
// extracts cards, stores contacts, answers questions and ingests memos.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"netagent/internal/card"
	"netagent/internal/logging"
)

const (
	pathExtractCard = "/api/extract-business-card"
	pathSaveContact = "/api/save-contact"
	pathQuery       = "/api/query"
	pathMemo        = "/api/memo"
	pathHealth      = "/health"

	maxErrorBody = 4 << 10
)

// Client talks to the network service. It never retries; each call either
// succeeds or returns one error.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the overall per-request timeout. It works on a copy, so
// an http.Client passed through WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root this client calls.
func (c *Client) BaseURL() string { return c.baseURL }

// ExtractCard uploads a card image as multipart field "file" and returns
// the extracted fields.
func (c *Client) ExtractCard(ctx context.Context, img Image) (card.Payload, error) {
	const op = "Failed to extract business card"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", img.Name)
	if err != nil {
		return card.Payload{}, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return card.Payload{}, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return card.Payload{}, fmt.Errorf("failed to build upload: %w", err)
	}

	var out card.Payload
	if err := c.do(ctx, op, http.MethodPost, pathExtractCard, mw.FormDataContentType(), &body, &out); err != nil {
		return card.Payload{}, err
	}
	return out, nil
}

// SaveContact stores a confirmed card. The response body is ignored.
func (c *Client) SaveContact(ctx context.Context, p card.Payload) error {
	return c.postJSON(ctx, "Failed to save contact", pathSaveContact, p, nil)
}

// Ask sends a natural-language question and returns the answer text.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	var out queryResponse
	if err := c.postJSON(ctx, "Query failed", pathQuery, queryRequest{Question: question}, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

// SaveMemo sends a free-text note and returns the entities extracted from it.
func (c *Client) SaveMemo(ctx context.Context, text string) ([]Entity, error) {
	var out memoResponse
	if err := c.postJSON(ctx, "Memo save failed", pathMemo, memoRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return out.ExtractedData.Entities, nil
}

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out healthResponse
	if err := c.do(ctx, "Health check failed", http.MethodGet, pathHealth, "", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, op, http.MethodPost, path, "application/json", bytes.NewReader(body), out)
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, out any) error {
	log := logging.Get(logging.CategoryAPI).With("op", op)
	start := time.Now()
	logging.APIDebug("%s %s", method, path)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("%s %s failed after %v: %v", method, path, time.Since(start), err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn("%s %s returned %d in %v: %s", method, path, resp.StatusCode, time.Since(start), string(b))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(b)}
	}

	logging.API("%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
