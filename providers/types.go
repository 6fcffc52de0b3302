package providers

import (
	"encoding/json"
	"fmt"
)

// Request is the provider-neutral request.
type Request struct {
	SystemPrompt string
	Messages     []Message
	// ResponseSchema, when set, asks the API to return JSON matching it.
	ResponseSchema json.RawMessage
}

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// NewTextRequest wraps a single user prompt.
func NewTextRequest(prompt string) *Request {
	return &Request{Messages: []Message{{Role: RoleUser, Content: prompt}}}
}

func (r *Request) validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("request has no messages")
	}
	return nil
}

// Content is a sealed interface for the kinds of content a response carries.
// Only text exists today.
type Content interface {
	isContent()
}

// Text is plain text content.
type Text struct {
	Value string
}

func (Text) isContent() {}

// Response is what a provider parsed out of an API reply.
type Response struct {
	Content    Content
	Usage      *Usage
	StopReason string
}

func (r *Response) String() string {
	if r == nil {
		return ""
	}
	if text, ok := r.Content.(Text); ok {
		return text.Value
	}
	return ""
}

// Usage is token accounting as reported by the API.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

func NewUsage(inputTokens, outputTokens int64) *Usage {
	return &Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
	}
}
