package database

import (
	"encoding/json"
	"fmt"
	"time"
)

// Meeting is the audit record of a successfully scheduled meeting
type Meeting struct {
	ID            int64
	UserAddress   string
	Title         string
	StartTime     time.Time
	EndTime       time.Time
	Attendees     []string
	MeetLink      string
	GoogleEventID string
	CreatedAt     time.Time
}

// RecordMeeting inserts an audit row for a created calendar event
func (d *DB) RecordMeeting(m Meeting) (int64, error) {
	attendeesJSON, err := json.Marshal(m.Attendees)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal attendees: %w", err)
	}

	result, err := d.Exec(`
		INSERT INTO meetings (user_address, title, start_time, end_time, attendees, meet_link, google_event_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.UserAddress, m.Title, m.StartTime, m.EndTime, string(attendeesJSON), m.MeetLink, m.GoogleEventID)
	if err != nil {
		return 0, fmt.Errorf("failed to record meeting: %w", err)
	}

	return result.LastInsertId()
}

// ListMeetings returns the most recent meetings for a messaging address
func (d *DB) ListMeetings(userAddress string, limit int) ([]Meeting, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.Query(`
		SELECT id, user_address, title, start_time, end_time, attendees, meet_link, google_event_id, created_at
		FROM meetings
		WHERE user_address = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		var attendeesJSON string
		if err := rows.Scan(&m.ID, &m.UserAddress, &m.Title, &m.StartTime, &m.EndTime, &attendeesJSON, &m.MeetLink, &m.GoogleEventID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		if err := json.Unmarshal([]byte(attendeesJSON), &m.Attendees); err != nil {
			m.Attendees = nil
		}
		meetings = append(meetings, m)
	}

	return meetings, rows.Err()
}
