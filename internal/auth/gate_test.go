package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"meetbot/internal/database"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	t.Setenv("MEETBOT_ENCRYPTION_KEY", "test-encryption-key")

	config := &oauth2.Config{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:8000/oauth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		Scopes: []string{"https://www.googleapis.com/auth/calendar.events"},
	}
	return NewGate(config, database.NewTestDB(t))
}

func TestHasCredential(t *testing.T) {
	gate := newTestGate(t)

	assert.False(t, gate.HasCredential("whatsapp:+15550001111"))

	token := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}
	require.NoError(t, gate.db.SaveGoogleToken("whatsapp:+15550001111", token))

	assert.True(t, gate.HasCredential("whatsapp:+15550001111"))
	assert.False(t, gate.HasCredential("whatsapp:+15552222222"))
}

func TestBuildAuthURLCarriesUserState(t *testing.T) {
	gate := newTestGate(t)

	url := gate.BuildAuthURL("+15550001111")
	assert.Contains(t, url, "state=whatsapp%3A%2B15550001111")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "client_id=client-id")
}

func TestParseState(t *testing.T) {
	tests := []struct {
		name    string
		state   string
		want    string
		wantErr bool
	}{
		{name: "valid", state: "whatsapp:+15550001111", want: "+15550001111"},
		{name: "missing prefix", state: "+15550001111", wantErr: true},
		{name: "empty address", state: "whatsapp:", wantErr: true},
		{name: "empty state", state: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseState(tt.state)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
