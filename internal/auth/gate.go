package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"meetbot/internal/database"
)

const statePrefix = "whatsapp:"

// ErrNoRefreshToken means Google completed the exchange without a
// refresh token, so the credential cannot outlive the access token.
var ErrNoRefreshToken = errors.New("google did not return a refresh token")

// Gate owns the delegated-credential lifecycle. The dialogue engine only
// ever asks whether a user has a credential and where to send them to get
// one; it never constructs provider clients itself.
type Gate struct {
	config *oauth2.Config
	db     *database.DB
}

// NewGate creates an authorization gate over the token store
func NewGate(config *oauth2.Config, db *database.DB) *Gate {
	return &Gate{config: config, db: db}
}

// HasCredential reports whether the user can act on their calendar.
// Store errors are treated as "no credential" so the user is routed back
// through sign-in rather than crashing the turn.
func (g *Gate) HasCredential(userAddress string) bool {
	has, err := g.db.HasGoogleToken(userAddress)
	if err != nil {
		fmt.Printf("Warning: credential lookup failed for %s: %v\n", userAddress, err)
		return false
	}
	return has
}

// BuildAuthURL returns the Google consent URL for a user. The messaging
// address rides in the state parameter so the callback knows who to bind
// the credential to.
func (g *Gate) BuildAuthURL(userAddress string) string {
	return g.config.AuthCodeURL(
		statePrefix+userAddress,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
	)
}

// HandleCallback exchanges the authorization code and persists the
// credential for the user carried in state.
func (g *Gate) HandleCallback(ctx context.Context, state, code string) error {
	userAddress, err := ParseState(state)
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("missing authorization code")
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if token.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	if err := g.db.SaveGoogleToken(userAddress, token); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	return nil
}

// ParseState validates an OAuth state value and returns the messaging
// address embedded in it.
func ParseState(state string) (string, error) {
	if !strings.HasPrefix(state, statePrefix) {
		return "", fmt.Errorf("invalid oauth state")
	}

	userAddress := strings.TrimPrefix(state, statePrefix)
	if userAddress == "" {
		return "", fmt.Errorf("oauth state is missing the user address")
	}

	return userAddress, nil
}
