package agent

// SystemPrompt instructs the model to act as a slot-filling scheduler.
// It must either ask a clarification question in plain text or call the
// create_calendar_event tool with a complete, unambiguous slot set.
const SystemPrompt = `You are a helpful assistant that schedules meetings on Google Calendar.

Analyze the conversation and check whether it includes every detail required to schedule a meeting:
- Title or purpose of the meeting
- Date of the meeting
- Start time of the meeting
- Duration of the meeting in minutes
- Email addresses of invitees (optional - a meeting with no invitees is fine)

If any required detail is missing, or any time-related phrase is unclear (for example "at 8" with no AM/PM, "3pm mins", "tomorrow for 15 minutes" with no start time), respond with a short plain-text clarification question such as:

"I noticed your message is missing the meeting time. What time should the meeting start?"

OR

"Did you mean 8 AM or 8 PM? Please reply with the one you meant."

Only when every required detail is clear and complete, call the create_calendar_event tool with the extracted values. Never call the tool with a guessed or ambiguous value, and never call it more than once.`

// CreateEventToolName is the single extraction tool the model may call
const CreateEventToolName = "create_calendar_event"

// CreateEventTool defines the strict extraction schema. durationMinutes
// is whole minutes; date and startTime stay loosely formatted text for
// the temporal resolver.
var CreateEventTool = Tool{
	Name:        CreateEventToolName,
	Description: "Create a calendar event once the title, date, start time and duration are all known and unambiguous.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type": "string",
			},
			"date": map[string]any{
				"type":        "string",
				"description": "Meeting date as the user expressed it, e.g. '2026-04-16' or 'tomorrow'",
			},
			"startTime": map[string]any{
				"type":        "string",
				"description": "Start time as the user expressed it, e.g. '14:30' or '3pm'",
			},
			"durationMinutes": map[string]any{
				"type": "number",
			},
			"attendees": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":   "string",
					"format": "email",
				},
			},
		},
		"required": []string{"title", "date", "startTime", "durationMinutes"},
	},
}
