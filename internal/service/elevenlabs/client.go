package elevenlabs

import (
	"context"
	"fmt"
	"io"
	"time"

	"Sully/internal/domain/repository"
	xhttp "Sully/pkg/http"
)

// Client implements SpeechSynthesizer against the ElevenLabs streaming
// endpoint. The response body is handed to the caller unread so audio
// bytes flow straight through to the browser.
type Client struct {
	apiKey  string
	voiceID string
	modelID string
	baseURL string
	client  *xhttp.Client
}

// New creates a speech synthesis client.
func New(apiKey, voiceID, modelID, baseURL string, timeout time.Duration) repository.SpeechSynthesizer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: modelID,
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Configured reports whether both credential and default voice are set.
func (c *Client) Configured() bool { return c.apiKey != "" && c.voiceID != "" }

// Synthesize streams MP3 audio for text. An empty voiceID falls back to
// the configured default voice.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, string, error) {
	if !c.Configured() {
		return nil, "", fmt.Errorf("speech synthesis not configured")
	}
	if voiceID == "" {
		voiceID = c.voiceID
	}

	resp, err := c.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/v1/text-to-speech/%s/stream", c.baseURL, voiceID),
		Headers: map[string]string{
			"xi-api-key":   c.apiKey,
			"Content-Type": "application/json",
			"Accept":       "audio/mpeg",
		},
		Body: map[string]interface{}{
			"text":     text,
			"model_id": c.modelID,
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("tts request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, "", fmt.Errorf("tts status %d: %s", resp.StatusCode, body)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return resp.Body, contentType, nil
}
