package ai

import (
	"context"
	"errors"

	"github.com/glucoguide/insulin-tracker/internal/domain"
)

// Unavailable is the client used when no provider is configured. Every
// send fails fast so the rest of the tracker keeps working.
type Unavailable struct{}

func (Unavailable) StreamChat(ctx context.Context, history []domain.ChatMessage, message string) (Stream, error) {
	return nil, errors.New("no AI provider is configured")
}
