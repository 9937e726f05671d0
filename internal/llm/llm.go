// Package llm defines the text generator collaborator boundary. The core
// treats generator output as untrusted text: no assumption is made about it
// being well-formed, and every downstream consumer must tolerate garbage.
package llm

import (
	"context"
	"errors"
)

// Message roles, matching the chat-completion convention.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation passed to the generator.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrGenerate wraps any failure to obtain a completion from the generator.
// Handlers map it to HTTP 502 since the upstream model service is at fault.
var ErrGenerate = errors.New("generator request failed")

// Generator produces the assistant's next reply for a conversation.
// Implementations must return the raw text untouched; extraction and repair
// are the caller's concern.
type Generator interface {
	Generate(ctx context.Context, history []Message) (string, error)
}
