package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucoguide/insulin-tracker/internal/ai"
	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
	"github.com/glucoguide/insulin-tracker/internal/i18n"
)

// fakeStream replays canned chunks, then errAfter or io.EOF.
type fakeStream struct {
	chunks   []string
	errAfter error
}

func (s *fakeStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		if s.errAfter != nil {
			return "", s.errAfter
		}
		return "", io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func (s *fakeStream) Close() {}

type fakeClient struct {
	chunks      []string
	streamErr   error
	openErr     error
	lastHistory []domain.ChatMessage
	lastMessage string
}

func (c *fakeClient) StreamChat(ctx context.Context, history []domain.ChatMessage, message string) (ai.Stream, error) {
	c.lastHistory = append([]domain.ChatMessage(nil), history...)
	c.lastMessage = message
	if c.openErr != nil {
		return nil, c.openErr
	}
	return &fakeStream{chunks: append([]string(nil), c.chunks...), errAfter: c.streamErr}, nil
}

// holdingStream blocks its first Recv until released, so a send can be
// kept in flight from the test goroutine.
type holdingStream struct {
	started chan struct{}
	release chan struct{}
	sent    bool
}

func (s *holdingStream) Recv() (string, error) {
	if s.sent {
		return "", io.EOF
	}
	close(s.started)
	<-s.release
	s.sent = true
	return "held reply", nil
}

func (s *holdingStream) Close() {}

type holdingClient struct{ stream *holdingStream }

func (c *holdingClient) StreamChat(ctx context.Context, history []domain.ChatMessage, message string) (ai.Stream, error) {
	return c.stream, nil
}

func TestSessionStartsWithGreeting(t *testing.T) {
	s := NewSession(&fakeClient{}, "es")
	turns := s.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, domain.ChatRoleModel, turns[0].Role)
	assert.Equal(t, i18n.Greeting("es"), turns[0].Text)
}

func TestSendStreamsAndRecords(t *testing.T) {
	client := &fakeClient{chunks: []string{"Carbs ", "matter."}}
	s := NewSession(client, "en")

	var sink bytes.Buffer
	err := s.Send(context.Background(), nil, "  What about carbs?  ", &sink)
	require.NoError(t, err)

	assert.Equal(t, "Carbs matter.", sink.String())
	assert.Equal(t, "What about carbs?", client.lastMessage)
	// the provider sees the turns prior to this message
	require.Len(t, client.lastHistory, 1)

	turns := s.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, domain.ChatRoleUser, turns[1].Role)
	assert.Equal(t, "What about carbs?", turns[1].Text)
	assert.Equal(t, domain.ChatRoleModel, turns[2].Role)
	assert.Equal(t, "Carbs matter.", turns[2].Text)
}

func TestSendBlankMessage(t *testing.T) {
	s := NewSession(&fakeClient{}, "en")
	err := s.Send(context.Background(), nil, "   ", io.Discard)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Len(t, s.Turns(), 1)
}

func TestSendReplacesHistoryFromClient(t *testing.T) {
	client := &fakeClient{chunks: []string{"ok"}}
	s := NewSession(client, "en")

	history := []domain.ChatMessage{
		{Role: domain.ChatRoleModel, Text: "Hello"},
		{Role: domain.ChatRoleUser, Text: "Hi"},
		{Role: domain.ChatRoleModel, Text: "How can I help?"},
	}
	err := s.Send(context.Background(), history, "question", io.Discard)
	require.NoError(t, err)

	assert.Equal(t, history, client.lastHistory)
	turns := s.Turns()
	require.Len(t, turns, 5)
	assert.Equal(t, "question", turns[3].Text)
	assert.Equal(t, "ok", turns[4].Text)
}

func TestSendRejectsOverlappingSend(t *testing.T) {
	stream := &holdingStream{started: make(chan struct{}), release: make(chan struct{})}
	s := NewSession(&holdingClient{stream: stream}, "en")

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- s.Send(context.Background(), nil, "first", io.Discard)
	}()

	<-stream.started
	err := s.Send(context.Background(), nil, "second", io.Discard)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	close(stream.release)
	require.NoError(t, <-firstDone)

	// the rejected send left no trace
	turns := s.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "first", turns[1].Text)
	assert.Equal(t, "held reply", turns[2].Text)
}

func TestSendRollsBackOnOpenFailure(t *testing.T) {
	client := &fakeClient{openErr: errors.New("provider down")}
	s := NewSession(client, "en")

	err := s.Send(context.Background(), nil, "hello", io.Discard)
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
	// the optimistic user turn is gone
	assert.Len(t, s.Turns(), 1)
}

func TestSendRollsBackOnMidStreamFailure(t *testing.T) {
	client := &fakeClient{chunks: []string{"partial "}, streamErr: errors.New("reset")}
	s := NewSession(client, "en")

	var sink bytes.Buffer
	err := s.Send(context.Background(), nil, "hello", &sink)
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
	assert.Equal(t, "partial ", sink.String())
	assert.Len(t, s.Turns(), 1)
}

func TestSendAfterFailureStillWorks(t *testing.T) {
	client := &fakeClient{openErr: errors.New("provider down")}
	s := NewSession(client, "en")

	require.Error(t, s.Send(context.Background(), nil, "first", io.Discard))

	client.openErr = nil
	client.chunks = []string{"second reply"}
	require.NoError(t, s.Send(context.Background(), nil, "second", io.Discard))

	turns := s.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "second", turns[1].Text)
	assert.Equal(t, "second reply", turns[2].Text)
}

func TestManagerResetsOnPatientOrLanguageChange(t *testing.T) {
	m := NewManager(&fakeClient{chunks: []string{"hi"}})

	s1 := m.SessionFor("tok", "John (drA)", "en")
	require.NoError(t, s1.Send(context.Background(), nil, "hello", io.Discard))
	require.Len(t, s1.Turns(), 3)

	// same patient and language: same state
	s2 := m.SessionFor("tok", "john (dra)", "en")
	assert.Same(t, s1, s2)
	assert.Len(t, s2.Turns(), 3)

	// switching patients wipes the conversation
	s3 := m.SessionFor("tok", "Jane (drA)", "en")
	assert.Len(t, s3.Turns(), 1)

	// switching language reseeds the greeting
	s4 := m.SessionFor("tok", "Jane (drA)", "fr")
	turns := s4.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, i18n.Greeting("fr"), turns[0].Text)
}

func TestManagerDrop(t *testing.T) {
	m := NewManager(&fakeClient{chunks: []string{"hi"}})

	s1 := m.SessionFor("tok", "John (drA)", "en")
	require.NoError(t, s1.Send(context.Background(), nil, "hello", io.Discard))

	m.Drop("tok")
	s2 := m.SessionFor("tok", "John (drA)", "en")
	assert.NotSame(t, s1, s2)
	assert.Len(t, s2.Turns(), 1)
}
