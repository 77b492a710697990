package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGoogleTokenRoundTrip(t *testing.T) {
	t.Setenv("MEETBOT_ENCRYPTION_KEY", "test-encryption-key")
	db := NewTestDB(t)

	token := &oauth2.Token{
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}

	require.NoError(t, db.SaveGoogleToken("whatsapp:+15550001111", token))

	got, err := db.GetGoogleToken("whatsapp:+15550001111")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, token.AccessToken, got.AccessToken)
	assert.Equal(t, token.RefreshToken, got.RefreshToken)
	assert.Equal(t, token.TokenType, got.TokenType)
	assert.WithinDuration(t, token.Expiry, got.Expiry, time.Second)
}

func TestGoogleTokenMissing(t *testing.T) {
	t.Setenv("MEETBOT_ENCRYPTION_KEY", "test-encryption-key")
	db := NewTestDB(t)

	got, err := db.GetGoogleToken("whatsapp:+15559999999")
	require.NoError(t, err)
	assert.Nil(t, got)

	has, err := db.HasGoogleToken("whatsapp:+15559999999")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGoogleTokenUpsert(t *testing.T) {
	t.Setenv("MEETBOT_ENCRYPTION_KEY", "test-encryption-key")
	db := NewTestDB(t)

	first := &oauth2.Token{AccessToken: "old", RefreshToken: "r1", TokenType: "Bearer"}
	require.NoError(t, db.SaveGoogleToken("user1", first))

	second := &oauth2.Token{AccessToken: "new", RefreshToken: "r2", TokenType: "Bearer"}
	require.NoError(t, db.SaveGoogleToken("user1", second))

	got, err := db.GetGoogleToken("user1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
	assert.Equal(t, "r2", got.RefreshToken)

	has, err := db.HasGoogleToken("user1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestDeleteGoogleToken(t *testing.T) {
	t.Setenv("MEETBOT_ENCRYPTION_KEY", "test-encryption-key")
	db := NewTestDB(t)

	token := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}
	require.NoError(t, db.SaveGoogleToken("user1", token))
	require.NoError(t, db.DeleteGoogleToken("user1"))

	got, err := db.GetGoogleToken("user1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is a no-op
	require.NoError(t, db.DeleteGoogleToken("user1"))
}
