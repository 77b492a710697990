package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"meetbot/internal/session"
)

// ErrExtractionUnavailable means the extractor backend failed or returned
// a payload that violates the slot schema. Callers degrade to a generic
// clarification; the raw error is never shown to the user.
var ErrExtractionUnavailable = errors.New("slot extraction unavailable")

// SlotSet is the structured meeting intent extracted from a transcript
type SlotSet struct {
	Title           string   `json:"title"`
	Date            string   `json:"date"`
	StartTime       string   `json:"startTime"`
	DurationMinutes int      `json:"durationMinutes"`
	Attendees       []string `json:"attendees,omitempty"`
}

// Outcome is the result of one extraction call. Exactly one of Slots or
// Clarification is meaningful: Slots when the transcript was judged
// complete and unambiguous, Clarification otherwise. Raw is the assistant
// response to record in the transcript regardless of branch.
type Outcome struct {
	Slots         *SlotSet
	Clarification string
	Raw           string
}

// Ready reports whether a complete slot set was extracted
func (o Outcome) Ready() bool {
	return o.Slots != nil
}

// ClaudeExtractor produces slot sets from transcripts using the
// Anthropic API with a single tool-calling extraction schema.
type ClaudeExtractor struct {
	client *APIClient
}

// ExtractorConfig configures the Claude-backed extractor
type ExtractorConfig struct {
	APIKey      string
	Model       string
	Temperature float64
}

// NewClaudeExtractor creates the LLM-backed slot extractor
func NewClaudeExtractor(cfg ExtractorConfig) *ClaudeExtractor {
	return &ClaudeExtractor{
		client: NewAPIClient(cfg.APIKey, cfg.Model, cfg.Temperature),
	}
}

// IsConfigured returns true if the extractor has an API key
func (e *ClaudeExtractor) IsConfigured() bool {
	return e.client.IsConfigured()
}

// Extract sends the transcript to the model. The system turn becomes the
// system prompt; user and assistant turns are relayed in order.
func (e *ClaudeExtractor) Extract(ctx context.Context, transcript []session.Turn) (Outcome, error) {
	system, messages := splitTranscript(transcript)
	if system == "" {
		system = SystemPrompt
	}

	resp, err := e.client.Call(ctx, messages, CallOptions{
		System: system,
		Tools:  []Tool{CreateEventTool},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
	}

	return parseResponse(resp)
}

func splitTranscript(transcript []session.Turn) (string, []Message) {
	var system string
	messages := make([]Message, 0, len(transcript))

	for _, turn := range transcript {
		switch turn.Role {
		case session.RoleSystem:
			system = turn.Content
		case session.RoleUser, session.RoleAssistant:
			messages = append(messages, Message{
				Role:    string(turn.Role),
				Content: turn.Content,
			})
		}
	}

	return system, messages
}

// parseResponse converts the API response into an Outcome, failing closed
// on any schema violation.
func parseResponse(resp *APIResponse) (Outcome, error) {
	var call *ToolUse
	for i := range resp.ToolUses {
		if resp.ToolUses[i].Name == CreateEventToolName {
			if call != nil {
				return Outcome{}, fmt.Errorf("%w: multiple extraction tool calls", ErrExtractionUnavailable)
			}
			call = &resp.ToolUses[i]
		}
	}

	if call == nil {
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return Outcome{}, fmt.Errorf("%w: empty response with no tool call", ErrExtractionUnavailable)
		}
		return Outcome{Clarification: text, Raw: text}, nil
	}

	slots, err := parseSlotSet(call.Input)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
	}

	return Outcome{Slots: slots, Raw: string(raw)}, nil
}

// parseSlotSet validates the tool payload against the strict schema:
// required string fields present and typed, duration a number, attendees
// an array of strings.
func parseSlotSet(input map[string]any) (*SlotSet, error) {
	slots := &SlotSet{}

	for field, dst := range map[string]*string{
		"title":     &slots.Title,
		"date":      &slots.Date,
		"startTime": &slots.StartTime,
	} {
		raw, ok := input[field]
		if !ok {
			return nil, fmt.Errorf("missing required field %q", field)
		}
		s, ok := raw.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("field %q is not a non-empty string", field)
		}
		*dst = strings.TrimSpace(s)
	}

	rawDuration, ok := input["durationMinutes"]
	if !ok {
		return nil, fmt.Errorf("missing required field %q", "durationMinutes")
	}
	duration, ok := rawDuration.(float64)
	if !ok {
		return nil, fmt.Errorf("field %q is not a number", "durationMinutes")
	}
	slots.DurationMinutes = int(duration)

	if rawAttendees, ok := input["attendees"]; ok && rawAttendees != nil {
		list, ok := rawAttendees.([]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not an array", "attendees")
		}
		for _, item := range list {
			email, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("attendee entry is not a string")
			}
			email = strings.TrimSpace(email)
			if email != "" {
				slots.Attendees = append(slots.Attendees, email)
			}
		}
	}

	return slots, nil
}
