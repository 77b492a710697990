package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetbot/internal/agent"
	"meetbot/internal/database"
	"meetbot/internal/gcal"
	"meetbot/internal/session"
	"meetbot/internal/timeutil"
)

// Replies are the only text a user ever sees from a failed step; raw
// errors stay in the logs.
const (
	authReplyFormat       = "🛡️ To schedule meetings, please sign in with Google: %s"
	genericClarification  = "Could you please provide more information about the meeting?"
	invalidSlotsReply     = "Something about those details didn't add up. Could you restate the meeting title and how many minutes it should last?"
	resolutionFailedReply = "⚠️ I couldn't understand the date and time. Please try again like 'April 16 at 2:30 PM'."
	schedulingFailedReply = "❌ Failed to create the calendar event. Please try again."
	confirmationFormat    = "✅ Meeting created!\n📌 %s\n📅 %s\n🔗 %s"

	confirmationTimeLayout = "Monday, January 2 at 3:04 PM"
)

// SlotExtractor judges a transcript and either asks for clarification or
// produces a complete slot set. Implemented by agent.ClaudeExtractor.
type SlotExtractor interface {
	Extract(ctx context.Context, transcript []session.Turn) (agent.Outcome, error)
}

// AuthGate decides whether a user may schedule and where to send them to
// sign in. Implemented by auth.Gate.
type AuthGate interface {
	HasCredential(userAddress string) bool
	BuildAuthURL(userAddress string) string
}

// Scheduler performs the calendar write. Implemented by gcal.Client.
type Scheduler interface {
	CreateMeeting(ctx context.Context, userAddress string, input gcal.MeetingInput) (*gcal.CreatedMeeting, error)
}

// MeetingRecorder keeps the audit log. Implemented by database.DB.
type MeetingRecorder interface {
	RecordMeeting(m database.Meeting) (int64, error)
}

// Shortener shortens conference links. Optional.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// Notifier emails meeting confirmations. Optional.
type Notifier interface {
	SendConfirmation(ctx context.Context, m database.Meeting) error
}

// Engine runs one slot-filling dialogue turn per inbound message. Turns
// for a single user are serialized through the session store's per-user
// lock; distinct users run fully in parallel. Every failure inside a
// turn is converted to exactly one natural-language reply.
//
// Session policy on failure: a failed temporal resolution or calendar
// write keeps the session so the user can retry without re-stating the
// meeting. Only a successful commit clears it.
type Engine struct {
	sessions    *session.Store
	extractor   SlotExtractor
	gate        AuthGate
	scheduler   Scheduler
	resolver    *timeutil.Resolver
	recorder    MeetingRecorder
	shortener   Shortener
	notifier    Notifier
	turnTimeout time.Duration
	now         func() time.Time
}

// Config wires the engine's collaborators
type Config struct {
	Sessions    *session.Store
	Extractor   SlotExtractor
	Gate        AuthGate
	Scheduler   Scheduler
	Resolver    *timeutil.Resolver
	Recorder    MeetingRecorder
	Shortener   Shortener
	Notifier    Notifier
	TurnTimeout time.Duration
	Now         func() time.Time
}

// New creates the dialogue engine
func New(cfg Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		sessions:    cfg.Sessions,
		extractor:   cfg.Extractor,
		gate:        cfg.Gate,
		scheduler:   cfg.Scheduler,
		resolver:    cfg.Resolver,
		recorder:    cfg.Recorder,
		shortener:   cfg.Shortener,
		notifier:    cfg.Notifier,
		turnTimeout: cfg.TurnTimeout,
		now:         now,
	}
}

// HandleMessage processes one inbound message and returns the single
// reply to send back.
func (e *Engine) HandleMessage(ctx context.Context, from, body string) string {
	// Unauthorized users get the sign-in link and no session
	if !e.gate.HasCredential(from) {
		return fmt.Sprintf(authReplyFormat, e.gate.BuildAuthURL(from))
	}

	unlock := e.sessions.Lock(from)
	defer unlock()

	if e.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.turnTimeout)
		defer cancel()
	}

	e.sessions.GetOrCreate(from)
	if err := e.sessions.AppendTurn(from, session.Turn{Role: session.RoleUser, Content: strings.TrimSpace(body)}); err != nil {
		// Store failure is the only fatal class: drop the turn entirely,
		// an empty reply means no outbound message
		fmt.Printf("Session append failed for %s: %v\n", from, err)
		return ""
	}

	outcome, err := e.extractor.Extract(ctx, e.sessions.Snapshot(from))
	if err != nil {
		fmt.Printf("Extraction unavailable for %s: %v\n", from, err)
		e.appendAssistant(from, genericClarification, nil)
		return genericClarification
	}

	// The assistant response is recorded before branching so the next
	// turn sees the full conversational memory either way
	var payload json.RawMessage
	if outcome.Ready() {
		payload = json.RawMessage(outcome.Raw)
	}
	e.appendAssistant(from, outcome.Raw, payload)

	if !outcome.Ready() {
		return outcome.Clarification
	}

	return e.commit(ctx, from, outcome.Slots)
}

// commit runs the resolving and committing half of a turn: temporal
// resolution, the calendar write, audit and notification, session reset.
func (e *Engine) commit(ctx context.Context, from string, slots *agent.SlotSet) string {
	// Defensive re-check: the extractor schema should guarantee these,
	// but a bad value must loop back to collecting, not reach the calendar
	if strings.TrimSpace(slots.Title) == "" || slots.DurationMinutes <= 0 {
		fmt.Printf("Rejected slot set for %s: title=%q duration=%d\n", from, slots.Title, slots.DurationMinutes)
		return invalidSlotsReply
	}

	start, end, err := e.resolver.Window(slots.Date, slots.StartTime, slots.DurationMinutes, e.now())
	if err != nil {
		if !errors.Is(err, timeutil.ErrUnresolvable) {
			fmt.Printf("Temporal resolution error for %s: %v\n", from, err)
		}
		return resolutionFailedReply
	}

	created, err := e.scheduler.CreateMeeting(ctx, from, gcal.MeetingInput{
		Title:     slots.Title,
		StartTime: start,
		EndTime:   end,
		Attendees: slots.Attendees,
	})
	if err != nil {
		fmt.Printf("Scheduling failed for %s: %v\n", from, err)
		return schedulingFailedReply
	}

	link := created.MeetLink
	if e.shortener != nil {
		if short, err := e.shortener.Shorten(ctx, link); err == nil && short != "" {
			link = short
		} else if err != nil {
			fmt.Printf("Link shortening failed for %s: %v\n", from, err)
		}
	}

	meeting := database.Meeting{
		UserAddress:   from,
		Title:         slots.Title,
		StartTime:     start,
		EndTime:       end,
		Attendees:     slots.Attendees,
		MeetLink:      link,
		GoogleEventID: created.EventID,
	}
	if e.recorder != nil {
		if _, err := e.recorder.RecordMeeting(meeting); err != nil {
			fmt.Printf("Warning: failed to record meeting for %s: %v\n", from, err)
		}
	}
	if e.notifier != nil {
		if err := e.notifier.SendConfirmation(ctx, meeting); err != nil {
			fmt.Printf("Warning: confirmation email failed for %s: %v\n", from, err)
		}
	}

	e.sessions.Clear(from)

	return fmt.Sprintf(confirmationFormat, slots.Title, start.Format(confirmationTimeLayout), link)
}

func (e *Engine) appendAssistant(from, content string, payload json.RawMessage) {
	err := e.sessions.AppendTurn(from, session.Turn{
		Role:    session.RoleAssistant,
		Content: content,
		Payload: payload,
	})
	if err != nil {
		fmt.Printf("Session append failed for %s: %v\n", from, err)
	}
}
