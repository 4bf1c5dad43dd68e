// Package reply turns the heterogeneous output of an agent run into the single
// text answer returned to the caller.
package reply

import (
	"strings"

	"github.com/dewantaratirta/agentkit/core"
	"github.com/dewantaratirta/agentkit/logging"
)

// Selector extracts text from turns and picks the best reply from an
// invocation result. It holds no mutable state and is safe for concurrent use.
type Selector struct {
	logger logging.Logger
}

// NewSelector creates a Selector reporting extraction problems to logger.
// A nil logger discards them.
func NewSelector(logger logging.Logger) *Selector {
	return &Selector{logger: logging.OrNoOp(logger)}
}

// ExtractText collects the usable text of a turn. Text parts are trimmed and
// kept when non-empty; tool results are kept verbatim when they are strings
// and rendered as JSON otherwise. Results that cannot be rendered are logged
// and skipped. Chunks are joined with newlines and the whole is trimmed.
func (s *Selector) ExtractText(turn core.Turn) string {
	chunks := make([]string, 0, len(turn.Parts))

	for _, p := range turn.Parts {
		switch part := p.(type) {
		case core.TextPart:
			if v := strings.TrimSpace(part.Text); v != "" {
				chunks = append(chunks, v)
			}
		case core.ToolResultPart:
			if !part.HasResult() {
				continue
			}
			text, err := part.DisplayString()
			if err != nil {
				s.logger.Warn("reply.extract.tool_result_unrenderable",
					"turn_id", turn.ID,
					"tool", part.Name,
					"call_id", part.CallID,
					"error", err.Error(),
				)
				continue
			}
			chunks = append(chunks, text)
		default:
			// tool calls and unknown parts carry nothing to show
		}
	}

	return strings.TrimSpace(strings.Join(chunks, "\n"))
}

// SelectReply picks the reply for an invocation. The first non-empty
// candidate wins:
//
//  1. the aggregate final text
//  2. the most recent assistant turn with extractable text
//  3. the most recent tool turn with extractable text
//
// It returns "" when the run produced nothing usable.
func (s *Selector) SelectReply(result *core.InvocationResult) string {
	if result == nil {
		return ""
	}

	if text := strings.TrimSpace(result.Text); text != "" {
		return text
	}

	if text := s.latestText(result.Messages, core.RoleAssistant); text != "" {
		return text
	}

	return s.latestText(result.Messages, core.RoleTool)
}

// latestText scans turns from newest to oldest and returns the extracted text
// of the first turn authored by role that has any.
func (s *Selector) latestText(turns []core.Turn, role core.Role) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != role {
			continue
		}
		if text := s.ExtractText(turns[i]); text != "" {
			return text
		}
	}
	return ""
}
