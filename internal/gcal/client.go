package gcal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"meetbot/internal/database"
)

// ErrNotAuthorized means no usable credential is stored for the user
var ErrNotAuthorized = errors.New("user has no google credential")

// Client creates calendar events on behalf of authorized users. A fresh
// Calendar service is built per call from the user's stored token so one
// process can act for many users.
type Client struct {
	config *oauth2.Config
	db     *database.DB
}

// NewClient creates a multi-user Google Calendar client
func NewClient(config *oauth2.Config, db *database.DB) *Client {
	return &Client{config: config, db: db}
}

// MeetingInput is a fully resolved meeting ready for the calendar write
type MeetingInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Attendees []string
}

// CreatedMeeting is the calendar's view of a created event
type CreatedMeeting struct {
	EventID  string
	MeetLink string
}

// CreateMeeting inserts an event with a Meet conference on the user's
// primary calendar and returns the conference link.
func (c *Client) CreateMeeting(ctx context.Context, userAddress string, input MeetingInput) (*CreatedMeeting, error) {
	token, err := c.db.GetGoogleToken(userAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if token == nil {
		return nil, ErrNotAuthorized
	}

	// TokenSource refreshes expired access tokens using the refresh token
	tokenSource := c.config.TokenSource(ctx, token)
	service, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	event := &calendar.Event{
		Summary: input.Title,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	if len(input.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, len(input.Attendees))
		for i, email := range input.Attendees {
			attendees[i] = &calendar.EventAttendee{Email: email}
		}
		event.Attendees = attendees
	}

	created, err := service.Events.Insert("primary", event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	// Persist a refreshed token so the next turn skips the refresh
	if fresh, err := tokenSource.Token(); err == nil && fresh.AccessToken != token.AccessToken {
		if saveErr := c.db.SaveGoogleToken(userAddress, fresh); saveErr != nil {
			fmt.Printf("Warning: could not save refreshed token for %s: %v\n", userAddress, saveErr)
		}
	}

	return &CreatedMeeting{
		EventID:  created.Id,
		MeetLink: created.HangoutLink,
	}, nil
}
