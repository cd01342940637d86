package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/jobmatcher/backend/internal/utils"
)

// HTTPClient talks to the AI microservice over its JSON/multipart API.
// Implements both CvParser and Embedder.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type textBody struct {
	Text string `json:"text"`
}

func (c *HTTPClient) ParseText(ctx context.Context, text string) (*ParseResponse, error) {
	var out ParseResponse
	if err := c.postJSON(ctx, "/cv/parse-text", textBody{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) EmbedText(ctx context.Context, text string) (*EmbedResponse, error) {
	var out EmbedResponse
	if err := c.postJSON(ctx, "/jobs/embed-text", textBody{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ParseResource(ctx context.Context, content []byte, filename, contentType string) (*ParseResponse, error) {
	if filename == "" {
		filename = "cv"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cv/parse-file", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out ParseResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       utils.Truncate(string(body), 500),
		}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
