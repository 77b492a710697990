package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndListMeetings(t *testing.T) {
	db := NewTestDB(t)

	start := time.Date(2026, 4, 16, 14, 30, 0, 0, time.UTC)
	id, err := db.RecordMeeting(Meeting{
		UserAddress:   "whatsapp:+15550001111",
		Title:         "Standup",
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Attendees:     []string{"bob@x.com"},
		MeetLink:      "https://meet.google.com/abc-defg-hij",
		GoogleEventID: "evt123",
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	meetings, err := db.ListMeetings("whatsapp:+15550001111", 10)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "Standup", meetings[0].Title)
	assert.Equal(t, []string{"bob@x.com"}, meetings[0].Attendees)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", meetings[0].MeetLink)
}

func TestListMeetingsScopedToUser(t *testing.T) {
	db := NewTestDB(t)

	start := time.Now().UTC()
	_, err := db.RecordMeeting(Meeting{UserAddress: "user1", Title: "A", StartTime: start, EndTime: start})
	require.NoError(t, err)
	_, err = db.RecordMeeting(Meeting{UserAddress: "user2", Title: "B", StartTime: start, EndTime: start})
	require.NoError(t, err)

	meetings, err := db.ListMeetings("user1", 10)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "A", meetings[0].Title)
}
