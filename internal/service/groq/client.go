package groq

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"Sully/internal/domain/models"
	"Sully/internal/domain/repository"
)

// Fixed sampling parameters for every completion call.
const (
	temperature = 0.8
	maxTokens   = 1500
)

// Client implements Completer over Groq's OpenAI-compatible chat API.
type Client struct {
	client *openai.Client
	model  string
}

// New creates a Groq completion client. Callers must only construct one
// when an API key is present; the conversation engine handles the
// degraded no-credential path itself.
func New(apiKey, baseURL, model string, timeout time.Duration) repository.Completer {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends the ordered turn list and returns the first choice's
// text. No retries: a failed call surfaces immediately.
func (c *Client) Complete(ctx context.Context, turns []models.Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    t.Role,
			Content: t.Text,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
