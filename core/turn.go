package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleTool, RoleSystem:
		return true
	}
	return false
}

// Turn is one message in the conversation log. After it has been appended to
// a History it must be treated as immutable.
type Turn struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Parts   []Part    `json:"parts"`
	Created time.Time `json:"created"`
}

// NewID generates a new unique identifier for turns.
func NewID() string { return uuid.NewString() }

// NewTurn creates a turn with a fresh id authored by role.
func NewTurn(role Role, parts ...Part) Turn {
	return Turn{
		ID:      NewID(),
		Role:    role,
		Parts:   parts,
		Created: time.Now().UTC(),
	}
}

// NewUserTurn creates a user-authored turn holding a single text part.
func NewUserTurn(text string) Turn {
	return NewTurn(RoleUser, TextPart{Text: text})
}

// NewAssistantTurn creates an assistant-authored turn holding a single text part.
func NewAssistantTurn(text string) Turn {
	return NewTurn(RoleAssistant, TextPart{Text: text})
}

// Clone returns a copy whose Parts slice can be modified independently.
func (t Turn) Clone() Turn {
	c := t
	c.Parts = make([]Part, len(t.Parts))
	copy(c.Parts, t.Parts)
	return c
}

// ToolCalls returns the tool call parts contained in the turn preserving
// their original order.
func (t Turn) ToolCalls() []ToolCallPart {
	var calls []ToolCallPart
	for _, p := range t.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

// PlainText concatenates the raw text parts of the turn without any
// normalization. Provider adapters use it to build request messages.
func (t Turn) PlainText() string {
	var b strings.Builder
	for _, p := range t.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// InvocationResult is what one run of the agent loop produced. Text is the
// aggregate final answer (empty when the model did not synthesize one) and
// Messages holds every turn generated during the run in chronological order.
type InvocationResult struct {
	Text     string `json:"text"`
	Messages []Turn `json:"messages"`
	Steps    int    `json:"steps"`
}
