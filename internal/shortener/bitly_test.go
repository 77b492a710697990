package shortener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBitlyShortenerRequiresToken(t *testing.T) {
	assert.Nil(t, NewBitlyShortener(""))
	assert.NotNil(t, NewBitlyShortener("token"))
}

func TestShortenSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req shortenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://meet.google.com/abc-defg-hij", req.LongURL)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(shortenResponse{Link: "https://bit.ly/3xYz"})
	}))
	defer server.Close()

	b := NewBitlyShortener("test-token")
	b.apiURL = server.URL

	short, err := b.Shorten(context.Background(), "https://meet.google.com/abc-defg-hij")
	require.NoError(t, err)
	assert.Equal(t, "https://bit.ly/3xYz", short)
}

func TestShortenAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	b := NewBitlyShortener("bad-token")
	b.apiURL = server.URL

	_, err := b.Shorten(context.Background(), "https://meet.google.com/abc-defg-hij")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestShortenEmptyURL(t *testing.T) {
	b := NewBitlyShortener("token")
	_, err := b.Shorten(context.Background(), "")
	assert.Error(t, err)
}

func TestShortenEmptyLinkInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(shortenResponse{})
	}))
	defer server.Close()

	b := NewBitlyShortener("token")
	b.apiURL = server.URL

	_, err := b.Shorten(context.Background(), "https://meet.google.com/abc-defg-hij")
	assert.Error(t, err)
}
