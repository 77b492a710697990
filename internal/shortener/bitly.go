package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const bitlyShortenURL = "https://api-ssl.bitly.com/v4/shorten"

// BitlyShortener shortens Meet links via the Bitly v4 API so confirmations
// stay readable on small chat screens.
type BitlyShortener struct {
	accessToken string
	apiURL      string
	httpClient  *http.Client
}

// NewBitlyShortener creates a Bitly client. Returns nil when no access
// token is configured, which disables link shortening.
func NewBitlyShortener(accessToken string) *BitlyShortener {
	if accessToken == "" {
		return nil
	}
	return &BitlyShortener{
		accessToken: accessToken,
		apiURL:      bitlyShortenURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type shortenRequest struct {
	LongURL string `json:"long_url"`
}

type shortenResponse struct {
	Link string `json:"link"`
}

// Shorten returns the shortened form of longURL
func (b *BitlyShortener) Shorten(ctx context.Context, longURL string) (string, error) {
	if longURL == "" {
		return "", fmt.Errorf("no URL specified")
	}

	jsonData, err := json.Marshal(shortenRequest{LongURL: longURL})
	if err != nil {
		return "", fmt.Errorf("failed to marshal shorten request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.accessToken)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call bitly: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("bitly API returned status %d", resp.StatusCode)
	}

	var result shortenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode bitly response: %w", err)
	}
	if result.Link == "" {
		return "", fmt.Errorf("bitly response contained no link")
	}

	return result.Link, nil
}
