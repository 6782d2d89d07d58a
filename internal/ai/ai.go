// Package ai wraps the generative-model providers behind a streaming
// client interface. Gemini is the primary provider, OpenAI the fallback.
package ai

import (
	"context"
	"fmt"

	"github.com/glucoguide/insulin-tracker/internal/config"
	"github.com/glucoguide/insulin-tracker/internal/domain"
)

// SystemInstruction frames the assistant. The closing disclaimer is part of
// the product contract, not decoration.
const SystemInstruction = `You are an advanced AI assistant for diabetes management, named 'GlucoGuide'.
Your purpose is to provide comprehensive and informative answers to questions about diet, exercise, medication, symptoms, and general diabetes care.
You can discuss a wide range of topics to help users better understand their condition.
However, it is CRITICALLY IMPORTANT that you are not a replacement for a real doctor.
Therefore, you MUST ALWAYS conclude every single response with a clear and prominent disclaimer in the user's language:
'IMPORTANT: The information provided is for educational purposes only and is not a substitute for professional medical advice, diagnosis, or treatment. Always seek the advice of your physician or another qualified health provider with any questions you may have regarding a medical condition.'`

// Stream yields the assistant's reply incrementally. Recv returns io.EOF
// after the final chunk.
type Stream interface {
	Recv() (string, error)
	Close()
}

// Client starts a streaming chat completion for the prior turns plus the
// new user message.
type Client interface {
	StreamChat(ctx context.Context, history []domain.ChatMessage, message string) (Stream, error)
}

// New builds the provider selected in the config.
func New(cfg *config.Config) (Client, error) {
	switch cfg.AIProvider {
	case config.ProviderGemini:
		return NewGeminiClient(context.Background(), cfg.GeminiAPIKey)
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
}
