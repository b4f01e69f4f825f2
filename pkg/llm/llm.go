package llm

import (
	"context"
	"errors"
)

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// It intentionally hides concrete providers to preserve dependency direction.
type ChatModel interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Provider-independent failures. Concrete clients wrap these so callers can map them.
var (
	ErrInvalidAPIKey      = errors.New("invalid API key")
	ErrDeploymentNotFound = errors.New("deployment not found")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrTimeout            = errors.New("request timeout")
	ErrEmptyResponse      = errors.New("no response content from model")
	ErrUpstream           = errors.New("model call failed")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message content is either a string or a []ContentPart for multimodal input.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

func TextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// VisionMessage builds a user message carrying text plus one image data URL.
func VisionMessage(text, dataURL, detail string) Message {
	return Message{
		Role: RoleUser,
		Content: []ContentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &ImageURL{URL: dataURL, Detail: detail}},
		},
	}
}

// LastUserText returns the text of the last user message, joining text parts of multimodal content.
func (r Request) LastUserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		m := r.Messages[i]
		if m.Role != RoleUser {
			continue
		}
		switch c := m.Content.(type) {
		case string:
			return c
		case []ContentPart:
			var out string
			for _, p := range c {
				if p.Type == "text" {
					out += p.Text
				}
			}
			return out
		}
	}
	return ""
}

// HasImage reports whether any message carries an image part.
func (r Request) HasImage() bool {
	for _, m := range r.Messages {
		if parts, ok := m.Content.([]ContentPart); ok {
			for _, p := range parts {
				if p.ImageURL != nil {
					return true
				}
			}
		}
	}
	return false
}
