package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"meetbot/internal/auth"
	"meetbot/internal/database"
)

type stubEngine struct {
	lastFrom string
	lastBody string
	reply    string
}

func (e *stubEngine) HandleMessage(ctx context.Context, from, body string) string {
	e.lastFrom = from
	e.lastBody = body
	return e.reply
}

func createTestServer(t *testing.T) (*Server, *stubEngine) {
	t.Helper()
	db := database.NewTestDB(t)
	engine := &stubEngine{reply: "ok"}
	gate := auth.NewGate(&oauth2.Config{
		ClientID:    "client",
		RedirectURL: "http://localhost:8000/oauth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}, db)

	return New(ServerConfig{
		DB:     db,
		Engine: engine,
		Gate:   gate,
		Port:   8000,
	}), engine
}

func TestHandleHealthCheck(t *testing.T) {
	s, _ := createTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestWebhookRepliesWithTwiML(t *testing.T) {
	s, engine := createTestServer(t)
	engine.reply = "✅ Meeting created!"

	form := url.Values{}
	form.Set("From", "whatsapp:+15550001111")
	form.Set("Body", "schedule a sync tomorrow at 3pm")

	req := httptest.NewRequest("POST", "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/xml")

	body := w.Body.String()
	assert.Contains(t, body, "<Response>")
	assert.Contains(t, body, "<Message>")
	assert.Contains(t, body, "Meeting created!")

	assert.Equal(t, "whatsapp:+15550001111", engine.lastFrom)
	assert.Equal(t, "schedule a sync tomorrow at 3pm", engine.lastBody)
}

func TestWebhookEscapesReplyForXML(t *testing.T) {
	s, engine := createTestServer(t)
	engine.reply = `Did you mean "8 AM" or <8 PM>?`

	form := url.Values{}
	form.Set("From", "whatsapp:+15550001111")
	form.Set("Body", "meet at 8")

	req := httptest.NewRequest("POST", "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "&lt;8 PM&gt;")
	assert.NotContains(t, w.Body.String(), "<8 PM>")
}

func TestWebhookEmptyReplySendsNoMessage(t *testing.T) {
	s, engine := createTestServer(t)
	engine.reply = ""

	form := url.Values{}
	form.Set("From", "whatsapp:+15550001111")
	form.Set("Body", "hello")

	req := httptest.NewRequest("POST", "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<Response>")
	assert.NotContains(t, w.Body.String(), "<Message>")
}

func TestWebhookRejectsMissingFrom(t *testing.T) {
	s, engine := createTestServer(t)

	form := url.Values{}
	form.Set("Body", "hello")

	req := httptest.NewRequest("POST", "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, engine.lastFrom, "engine must not run without a sender address")
}

func TestWebhookRequiresPOST(t *testing.T) {
	s, _ := createTestServer(t)

	req := httptest.NewRequest("GET", "/webhook/whatsapp", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestOAuthCallbackRejectsMissingParams(t *testing.T) {
	s, _ := createTestServer(t)

	req := httptest.NewRequest("GET", "/oauth/callback", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOAuthCallbackReportsDenial(t *testing.T) {
	s, _ := createTestServer(t)

	req := httptest.NewRequest("GET", "/oauth/callback?error=access_denied", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "access_denied")
}
