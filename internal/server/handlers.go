package server

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
)

// Health Check

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Messaging webhook

// twimlResponse is the XML envelope Twilio expects back from a webhook.
// The reply text goes out over the same WhatsApp conversation; an empty
// envelope with no Message element sends nothing.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

func (s *Server) handleWhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	if from == "" {
		respondError(w, http.StatusBadRequest, "missing From")
		return
	}

	fmt.Printf("Webhook message from %s: %q\n", from, body)

	reply := s.engine.HandleMessage(r.Context(), from, body)
	respondTwiML(w, reply)
}

func respondTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	out, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		fmt.Printf("Error encoding TwiML response: %v\n", err)
		return
	}
	w.Write([]byte(xml.Header))
	w.Write(out)
}

// Google OAuth

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("authorization denied: %s", errMsg))
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		respondError(w, http.StatusBadRequest, "missing state or code")
		return
	}

	if err := s.gate.HandleCallback(r.Context(), state, code); err != nil {
		fmt.Printf("OAuth callback failed: %v\n", err)
		respondError(w, http.StatusInternalServerError, "failed to complete authorization")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(`<html><body><h2>You're all set!</h2><p>Google Calendar is connected. Head back to WhatsApp and send your meeting request again.</p></body></html>`))
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
