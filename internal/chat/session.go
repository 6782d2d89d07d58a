// Package chat holds the transient, non-persisted conversation state for
// the AI assistant. A session lives in memory only and is reset whenever
// the active patient or the display language changes.
package chat

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/glucoguide/insulin-tracker/internal/ai"
	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
	"github.com/glucoguide/insulin-tracker/internal/i18n"
)

// Session accumulates one conversation. The user turn is appended
// optimistically before the provider call; on transport failure it is
// rolled back together with the placeholder reply.
type Session struct {
	mu       sync.Mutex
	client   ai.Client
	turns    []domain.ChatMessage
	language string
	inFlight bool
}

func NewSession(client ai.Client, language string) *Session {
	s := &Session{client: client}
	s.reset(language)
	return s
}

func (s *Session) reset(language string) {
	s.language = language
	s.turns = []domain.ChatMessage{
		{Role: domain.ChatRoleModel, Text: i18n.Greeting(language)},
	}
}

// Turns returns a copy of the conversation so far.
func (s *Session) Turns() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.turns))
	copy(out, s.turns)
	return out
}

// Send streams the assistant's reply for message into sink, chunk by
// chunk, while updating the session state. When history is non-nil it
// replaces the session's turns first (the client is the source of truth
// for what it displays). Blank input and overlapping sends are rejected.
func (s *Session) Send(ctx context.Context, history []domain.ChatMessage, message string, sink io.Writer) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return apperrors.NewValidationError("message must not be blank")
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return apperrors.NewValidationError("a request is already in flight")
	}
	s.inFlight = true
	if history != nil {
		s.turns = append([]domain.ChatMessage(nil), history...)
	}
	prior := append([]domain.ChatMessage(nil), s.turns...)
	s.turns = append(s.turns, domain.ChatMessage{Role: domain.ChatRoleUser, Text: message})
	userIdx := len(s.turns) - 1
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	stream, err := s.client.StreamChat(ctx, prior, message)
	if err != nil {
		s.rollback(userIdx)
		return apperrors.NewNetworkError(err)
	}
	defer stream.Close()

	flusher, _ := sink.(http.Flusher)
	replyStarted := false
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.rollback(userIdx)
			return apperrors.NewNetworkError(err)
		}
		if chunk == "" {
			continue
		}

		s.mu.Lock()
		if !replyStarted {
			s.turns = append(s.turns, domain.ChatMessage{Role: domain.ChatRoleModel})
			replyStarted = true
		}
		s.turns[len(s.turns)-1].Text += chunk
		s.mu.Unlock()

		if _, err := io.WriteString(sink, chunk); err != nil {
			// The client went away; the reply already applied to the
			// session state stays (no externally visible effect).
			return nil
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	return nil
}

// rollback removes the optimistic user turn and everything after it.
func (s *Session) rollback(userIdx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userIdx < len(s.turns) {
		s.turns = s.turns[:userIdx]
	}
}

// Manager keys sessions by login token and resets them when the active
// patient or language changes.
type Manager struct {
	mu       sync.Mutex
	client   ai.Client
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	session   *Session
	patientID domain.PatientID
	language  string
}

func NewManager(client ai.Client) *Manager {
	return &Manager{client: client, sessions: make(map[string]*sessionEntry)}
}

// SessionFor returns the caller's session, starting or resetting it when
// the patient or language differs from the last call.
func (m *Manager) SessionFor(token string, patientID domain.PatientID, language string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[token]
	if !ok {
		entry = &sessionEntry{
			session:   NewSession(m.client, language),
			patientID: patientID,
			language:  language,
		}
		m.sessions[token] = entry
		return entry.session
	}
	if !entry.patientID.Equal(patientID) || entry.language != language {
		entry.session.mu.Lock()
		entry.session.reset(language)
		entry.session.mu.Unlock()
		entry.patientID = patientID
		entry.language = language
	}
	return entry.session
}

// Drop discards the session for a token, e.g. on logout.
func (m *Manager) Drop(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
