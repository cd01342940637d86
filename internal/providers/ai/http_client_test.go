package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTextRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cv/parse-text", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["text"])

		_ = json.NewEncoder(w).Encode(ParseResponse{
			Text:      "hello",
			Embedding: []float64{0.1, 0.2},
			ModelUsed: "m1",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	resp, err := c.ParseText(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, []float64{0.1, 0.2}, resp.Embedding)
	assert.Equal(t, "m1", resp.ModelUsed)
}

func TestParseResourceSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cv/parse-file", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "cv.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		_ = json.NewEncoder(w).Encode(ParseResponse{Text: "parsed"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	resp, err := c.ParseResource(context.Background(), []byte("%PDF-1.4"), "cv.pdf", "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, "parsed", resp.Text)
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unreadable document", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.ParseText(context.Background(), "x")

	require.Error(t, err)
	assert.False(t, IsTransport(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "unreadable document")
}

func TestUnreachableServiceIsTransportError(t *testing.T) {
	// grab a port that is certainly closed
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewHTTPClient(addr, 500*time.Millisecond)
	_, err := c.EmbedText(context.Background(), "x")

	require.Error(t, err)
	assert.True(t, IsTransport(err))
}
