package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "initial_schema",
		Up:      initialSchema,
	})
}

func initialSchema(db *sql.DB) error {
	statements := []string{
		// One delegated Google credential per messaging address
		`CREATE TABLE IF NOT EXISTS user_tokens (
			user_address TEXT PRIMARY KEY,
			access_token_encrypted BLOB NOT NULL,
			refresh_token_encrypted BLOB NOT NULL,
			token_type TEXT NOT NULL DEFAULT 'Bearer',
			expiry DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Audit log of successfully scheduled meetings
		`CREATE TABLE IF NOT EXISTS meetings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_address TEXT NOT NULL,
			title TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			attendees TEXT NOT NULL DEFAULT '[]',
			meet_link TEXT,
			google_event_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_user ON meetings(user_address, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
