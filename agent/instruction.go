package agent

import (
	"context"
	"strings"

	"github.com/dewantaratirta/agentkit/internal/util"
)

// InstructionData is the template data available to instructions.
type InstructionData struct {
	Name      string
	Date      string // YYYY-MM-DD
	Tools     string // comma separated tool names
	ToolNames []string
}

// NewInstructionData builds InstructionData from an agent name, date and tool names.
func NewInstructionData(name, date string, tools []string) InstructionData {
	return InstructionData{
		Name:      name,
		Date:      date,
		Tools:     strings.Join(tools, ", "),
		ToolNames: tools,
	}
}

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(ctx context.Context) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(ctx context.Context) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ctx context.Context) (string, error) { return f(ctx) }

// Instruction represents either a static instruction string or a dynamic provider.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed,
// and renders it as a text/template against data.
func (i Instruction) Resolve(ctx context.Context, data InstructionData) (string, error) {
	text := i.text
	if i.provider != nil {
		var err error
		if text, err = i.provider.Instruction(ctx); err != nil {
			return "", err
		}
	}

	return util.RenderTemplate(text, data)
}
