// Package ai is the client for the external AI microservice that turns CV
// files into structured text plus embedding vectors, and free text into
// embeddings.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// ParseResponse mirrors the AI service wire format. Field names are part of
// the external contract and must be preserved.
type ParseResponse struct {
	Text      string         `json:"text"`
	Sections  map[string]any `json:"sections,omitempty"`
	Embedding []float64      `json:"embedding,omitempty"`
	ModelUsed string         `json:"model_used,omitempty"`
}

type EmbedResponse struct {
	Embedding []float64 `json:"embedding"`
	ModelUsed string    `json:"model_used,omitempty"`
}

type CvParser interface {
	ParseResource(ctx context.Context, content []byte, filename, contentType string) (*ParseResponse, error)
	ParseText(ctx context.Context, text string) (*ParseResponse, error)
}

type Embedder interface {
	EmbedText(ctx context.Context, text string) (*EmbedResponse, error)
}

// TransportError marks failures to reach the AI service at all (DNS, refused
// connection, timeout). Callers map it to a service-unavailable condition,
// distinct from an application-level rejection.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("ai transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx reply from the AI service: the request arrived, the
// service rejected it.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string { return fmt.Sprintf("AI %d: %s", e.StatusCode, e.Body) }

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
