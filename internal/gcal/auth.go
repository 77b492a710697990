package gcal

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const callbackPath = "/oauth/callback"

// OAuthScopes contains only the Calendar events scope
var OAuthScopes = []string{
	calendar.CalendarEventsScope,
}

// getOAuthCallbackURL returns the OAuth callback URL for this deployment
func getOAuthCallbackURL(baseURL string, httpPort int) string {
	if baseURL != "" {
		return baseURL + callbackPath
	}
	return fmt.Sprintf("http://localhost:%d%s", httpPort, callbackPath)
}

// LoadOAuthConfig loads OAuth2 configuration from a credentials file or
// the GOOGLE_CREDENTIALS_JSON environment variable.
func LoadOAuthConfig(credentialsFile, baseURL string, httpPort int) (*oauth2.Config, error) {
	// Try environment variable first (useful for container deployments)
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON"); credJSON != "" {
		config, err := google.ConfigFromJSON([]byte(credJSON), OAuthScopes...)
		if err == nil {
			config.RedirectURL = getOAuthCallbackURL(baseURL, httpPort)
			return config, nil
		}
	}

	if credentialsFile != "" {
		if config, err := loadConfigFromFile(credentialsFile, baseURL, httpPort); err == nil {
			return config, nil
		}
	}

	if config, err := loadConfigFromFile("./credentials.json", baseURL, httpPort); err == nil {
		return config, nil
	}

	return nil, fmt.Errorf("no credentials file found - please provide credentials.json or set GOOGLE_CREDENTIALS_JSON env var")
}

// loadConfigFromFile attempts to load OAuth config from a file
func loadConfigFromFile(path, baseURL string, httpPort int) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := google.ConfigFromJSON(data, OAuthScopes...)
	if err != nil {
		return nil, err
	}

	config.RedirectURL = getOAuthCallbackURL(baseURL, httpPort)
	return config, nil
}
