package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// getEncryptionKey derives a 32-byte key for AES-256 encryption
func getEncryptionKey() ([]byte, error) {
	// Try MEETBOT_ENCRYPTION_KEY first
	if envKey := os.Getenv("MEETBOT_ENCRYPTION_KEY"); envKey != "" {
		hash := sha256.Sum256([]byte(envKey))
		return hash[:], nil
	}

	// Fall back to deriving from ANTHROPIC_API_KEY
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		hash := sha256.Sum256([]byte("meetbot-encryption-" + apiKey))
		return hash[:], nil
	}

	return nil, fmt.Errorf("no encryption key available: set MEETBOT_ENCRYPTION_KEY or ANTHROPIC_API_KEY")
}

// encryptToken encrypts an OAuth token value for storage
func encryptToken(token string) ([]byte, error) {
	key, err := getEncryptionKey()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, []byte(token), nil), nil
}

// decryptToken decrypts an OAuth token value from storage
func decryptToken(ciphertext []byte) (string, error) {
	key, err := getEncryptionKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

// GetGoogleToken retrieves the OAuth2 token for a messaging address.
// Returns (nil, nil) when no token is stored.
func (d *DB) GetGoogleToken(userAddress string) (*oauth2.Token, error) {
	var accessTokenEnc, refreshTokenEnc []byte
	var tokenType string
	var expiry sql.NullTime

	err := d.QueryRow(`
		SELECT access_token_encrypted, refresh_token_encrypted, token_type, expiry
		FROM user_tokens WHERE user_address = ?
	`, userAddress).Scan(&accessTokenEnc, &refreshTokenEnc, &tokenType, &expiry)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get google token: %w", err)
	}

	accessToken, err := decryptToken(accessTokenEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	refreshToken, err := decryptToken(refreshTokenEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}

	return token, nil
}

// SaveGoogleToken stores an OAuth2 token for a messaging address (upsert)
func (d *DB) SaveGoogleToken(userAddress string, token *oauth2.Token) error {
	accessTokenEnc, err := encryptToken(token.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	refreshTokenEnc, err := encryptToken(token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		expiry = &token.Expiry
	}

	_, err = d.Exec(`
		INSERT INTO user_tokens (user_address, access_token_encrypted, refresh_token_encrypted, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_address) DO UPDATE SET
			access_token_encrypted = excluded.access_token_encrypted,
			refresh_token_encrypted = excluded.refresh_token_encrypted,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = CURRENT_TIMESTAMP
	`, userAddress, accessTokenEnc, refreshTokenEnc, token.TokenType, expiry)

	if err != nil {
		return fmt.Errorf("failed to save google token: %w", err)
	}

	return nil
}

// DeleteGoogleToken removes the OAuth2 token for a messaging address
func (d *DB) DeleteGoogleToken(userAddress string) error {
	_, err := d.Exec(`DELETE FROM user_tokens WHERE user_address = ?`, userAddress)
	if err != nil {
		return fmt.Errorf("failed to delete google token: %w", err)
	}
	return nil
}

// HasGoogleToken reports whether a messaging address has a stored credential
func (d *DB) HasGoogleToken(userAddress string) (bool, error) {
	var one int
	err := d.QueryRow(`SELECT 1 FROM user_tokens WHERE user_address = ?`, userAddress).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check google token: %w", err)
	}
	return true, nil
}
