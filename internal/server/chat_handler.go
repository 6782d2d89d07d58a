package server

import (
	"encoding/json"
	"net/http"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
	"github.com/glucoguide/insulin-tracker/internal/logger"
)

type chatRequest struct {
	History []domain.ChatMessage `json:"history"`
	Message string               `json:"message"`
}

// handleChat streams the assistant's reply as chunked plain text. The
// client concatenates chunks in arrival order for the full reply.
//
// Failure surface: errors before the first chunk map to a status code
// via respondWithError. Once body bytes are out the 200 is committed, so
// a provider failure mid-stream ends the response early and the client
// receives a truncated reply; the session rolls the exchange back, so a
// retry of the same message is clean.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	user := sessionUser(r)
	// The chat is keyed by the active patient so switching patients
	// resets the conversation. A doctor with no selection chats in an
	// unkeyed session.
	patientID, _, err := s.patients.ActivePatient(r.Context(), user)
	if err != nil {
		respondWithError(w, err)
		return
	}

	session := s.chat.SessionFor(sessionToken(r), patientID, s.language(r))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	sink := &trackingWriter{ResponseWriter: w}
	if err := session.Send(r.Context(), req.History, req.Message, sink); err != nil {
		if sink.wrote {
			// Headers are out; the truncated body is the error signal.
			logger.Error("chat stream aborted", "user", user.Username, "error", err)
			return
		}
		respondWithError(w, err)
		return
	}
	logger.Debug("chat reply streamed", "user", user.Username)
}

// trackingWriter records whether any body bytes went out, so errors can
// still be reported as a status code when streaming never started.
type trackingWriter struct {
	http.ResponseWriter
	wrote bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	t.wrote = true
	return t.ResponseWriter.Write(p)
}

func (t *trackingWriter) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
