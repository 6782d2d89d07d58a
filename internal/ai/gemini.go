package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/glucoguide/insulin-tracker/internal/domain"
)

const geminiModel = "gemini-2.5-flash"

// GeminiClient streams chat replies from the Gemini API.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) StreamChat(ctx context.Context, history []domain.ChatMessage, message string) (Stream, error) {
	model := c.client.GenerativeModel(geminiModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}

	cs := model.StartChat()
	cs.History = make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  msg.Role,
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}

	return &geminiStream{iter: cs.SendMessageStream(ctx, genai.Text(message))}, nil
}

type geminiStream struct {
	iter *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Recv() (string, error) {
	resp, err := s.iter.Next()
	if errors.Is(err, iterator.Done) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	var chunk string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				chunk += string(text)
			}
		}
	}
	return chunk, nil
}

func (s *geminiStream) Close() {}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
