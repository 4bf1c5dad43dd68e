package testutil

import (
	"strconv"

	"github.com/dewantaratirta/agentkit/core"
)

// TurnBuilder provides a fluent helper for constructing turns in tests.
// Example:
//
//	turn := NewTurnBuilder(core.RoleAssistant).Text("hello").ToolCall("c1", "sum", `{}`).Build()
type TurnBuilder struct {
	turn core.Turn
}

// NewTurnBuilder starts a turn with a fresh id authored by role.
func NewTurnBuilder(role core.Role) *TurnBuilder {
	return &TurnBuilder{turn: core.NewTurn(role)}
}

// ID overrides the generated id (chainable).
func (b *TurnBuilder) ID(id string) *TurnBuilder { b.turn.ID = id; return b }

// Text appends one text part per argument (chainable).
func (b *TurnBuilder) Text(texts ...string) *TurnBuilder {
	for _, t := range texts {
		b.turn.Parts = append(b.turn.Parts, core.TextPart{Text: t})
	}
	return b
}

// ToolCall appends a tool call part (chainable).
func (b *TurnBuilder) ToolCall(id, name, args string) *TurnBuilder {
	b.turn.Parts = append(b.turn.Parts, core.ToolCallPart{ID: id, Name: name, Arguments: args})
	return b
}

// ToolResult appends a successful tool result part (chainable).
func (b *TurnBuilder) ToolResult(callID, name string, result any) *TurnBuilder {
	b.turn.Parts = append(b.turn.Parts, core.ToolResultPart{CallID: callID, Name: name, Result: result})
	return b
}

// ToolError appends a failed tool result part (chainable).
func (b *TurnBuilder) ToolError(callID, name, message string) *TurnBuilder {
	b.turn.Parts = append(b.turn.Parts, core.ToolResultPart{CallID: callID, Name: name, Result: message, IsError: true})
	return b
}

// Part appends arbitrary parts (chainable).
func (b *TurnBuilder) Part(parts ...core.Part) *TurnBuilder {
	b.turn.Parts = append(b.turn.Parts, parts...)
	return b
}

// Build returns the constructed turn.
func (b *TurnBuilder) Build() core.Turn { return b.turn.Clone() }

// ToolResults builds a tool turn holding one successful result per value,
// with call ids "call-0", "call-1", ...
func ToolResults(results ...any) core.Turn {
	b := NewTurnBuilder(core.RoleTool)
	for i, r := range results {
		b.ToolResult("call-"+strconv.Itoa(i), "tool", r)
	}
	return b.Build()
}
