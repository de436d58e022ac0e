package langflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// APIError is a non-2xx reply from the flow engine. Detail carries the
// engine's own message untouched so callers can relay it.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("langflow returned status %d: %s", e.StatusCode, e.Detail)
}

// RunRequest is the payload for the engine's run endpoint.
type RunRequest struct {
	InputValue string                    `json:"input_value"`
	InputType  string                    `json:"input_type"`
	OutputType string                    `json:"output_type"`
	SessionID  string                    `json:"session_id,omitempty"`
	Tweaks     map[string]map[string]any `json:"tweaks,omitempty"`
}

// Client calls a Langflow server's public API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client for the given base address. No global
// timeout is set because streamed runs stay open as long as the flow
// produces tokens; callers bound individual calls via context.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

func (c *Client) runURL(flowID string, stream bool) string {
	return fmt.Sprintf("%s/api/v1/run/%s?stream=%t", c.baseURL, url.PathEscape(flowID), stream)
}

// Run executes a flow once and returns the engine's JSON payload
// untouched. A 2xx reply that is not valid JSON is reported as an error.
func (c *Client) Run(ctx context.Context, flowID, apiKey string, req RunRequest) (json.RawMessage, error) {
	resp, err := c.postJSON(ctx, c.runURL(flowID, false), apiKey, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read run response: %w", err)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("malformed run response")
	}
	return json.RawMessage(payload), nil
}

// RunStream opens a streamed flow run. The caller owns the returned
// stream and must Close it.
func (c *Client) RunStream(ctx context.Context, flowID, apiKey string, req RunRequest) (*EventStream, error) {
	resp, err := c.postJSON(ctx, c.runURL(flowID, true), apiKey, req)
	if err != nil {
		return nil, err
	}
	return NewEventStream(resp.Body), nil
}

// UploadFile forwards a staged local file to the engine's storage for
// the given flow and returns the storage handle.
func (c *Client) UploadFile(ctx context.Context, flowID, apiKey, localPath, filename string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read staged file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	uploadURL := fmt.Sprintf("%s/api/v1/files/upload/%s", c.baseURL, url.PathEscape(flowID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", apiError(resp)
	}
	var uploaded struct {
		FilePath string `json:"file_path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if uploaded.FilePath == "" {
		return "", fmt.Errorf("upload response missing file_path")
	}
	return uploaded.FilePath, nil
}

// FlowBuilds fetches the engine's build state for a flow untouched.
func (c *Client) FlowBuilds(ctx context.Context, flowID, apiKey string) (json.RawMessage, error) {
	monitorURL := fmt.Sprintf("%s/api/v1/monitor/builds?flow_id=%s", c.baseURL, url.QueryEscape(flowID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, monitorURL, nil)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apiError(resp)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read builds response: %w", err)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("malformed builds response")
	}
	return json.RawMessage(payload), nil
}

func (c *Client) postJSON(ctx context.Context, rawURL, apiKey string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := apiError(resp)
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// apiError drains the response into an APIError, preferring the JSON
// detail field the engine uses for failures.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	detail := strings.TrimSpace(string(body))
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		detail = parsed.Detail
	}
	if detail == "" {
		detail = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}
