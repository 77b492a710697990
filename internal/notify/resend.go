package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"meetbot/internal/database"
)

// ResendNotifier emails the organizer a copy of the meeting confirmation
// via the Resend API.
type ResendNotifier struct {
	client      *resend.Client
	fromAddress string
}

// NewResendNotifier creates a Resend email notifier. Returns nil when no
// API key is configured, which disables confirmation emails.
func NewResendNotifier(apiKey, from string) *ResendNotifier {
	if apiKey == "" {
		return nil
	}
	return &ResendNotifier{
		client:      resend.NewClient(apiKey),
		fromAddress: from,
	}
}

// IsConfigured returns true if the notifier has server-side config
func (r *ResendNotifier) IsConfigured() bool {
	return r.client != nil && r.fromAddress != ""
}

// SendConfirmation emails the meeting details to every attendee address.
// Meetings with no attendees produce no email.
func (r *ResendNotifier) SendConfirmation(ctx context.Context, meeting database.Meeting) error {
	if len(meeting.Attendees) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Meeting scheduled: %s", meeting.Title)
	html := r.formatEmailHTML(meeting)

	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      meeting.Attendees,
		Subject: subject,
		Html:    html,
	}

	_, err := r.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	fmt.Printf("Confirmation email sent to %s for meeting: %s\n",
		strings.Join(meeting.Attendees, ", "), meeting.Title)
	return nil
}

// formatEmailHTML creates the HTML email body
func (r *ResendNotifier) formatEmailHTML(meeting database.Meeting) string {
	startStr := meeting.StartTime.Format("Monday, January 2, 2006 at 3:04 PM")

	// If same day, just show the end time
	endStr := ""
	if meeting.StartTime.Format("2006-01-02") == meeting.EndTime.Format("2006-01-02") {
		endStr = fmt.Sprintf(" - %s", meeting.EndTime.Format("3:04 PM"))
	} else {
		endStr = fmt.Sprintf(" - %s", meeting.EndTime.Format("Monday, January 2, 2006 at 3:04 PM"))
	}

	linkHTML := ""
	if meeting.MeetLink != "" {
		linkHTML = fmt.Sprintf(`<p style="margin: 16px 0;"><a href="%s" style="background-color: #007bff; color: white; padding: 10px 20px; border-radius: 4px; text-decoration: none; font-weight: 600;">Join with Google Meet</a></p>`, meeting.MeetLink)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
  <div style="background-color: white; border-radius: 8px; padding: 24px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
    <h2 style="margin: 0 0 16px 0; color: #333;">%s</h2>

    <div style="background: #f8f9fa; padding: 16px; border-radius: 8px; margin: 16px 0; border-left: 4px solid #007bff;">
      <p style="margin: 8px 0;"><strong>When:</strong> %s%s</p>
    </div>

    %s

    <p style="margin: 16px 0 0 0; color: #999; font-size: 12px;">This meeting was scheduled over WhatsApp. A calendar invitation has also been sent to your Google Calendar.</p>
  </div>
</body>
</html>`,
		meeting.Title,
		startStr,
		endStr,
		linkHTML,
	)
}
