package model

import (
	"context"
	"errors"
	"testing"

	"github.com/dewantaratirta/agentkit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_ScriptedResponses(t *testing.T) {
	m := NewMockModel("mock-1", "mock").
		EnqueueToolCalls(core.ToolCallPart{ID: "c1", Name: "sum", Arguments: `{"a":1}`}).
		EnqueueText("done").
		EnqueueError(errors.New("quota"))

	req := Request{Contents: []core.Turn{core.NewUserTurn("hi")}}

	r1, err := Collect(context.Background(), m, req)
	require.NoError(t, err)
	assert.Equal(t, "tool_calls", r1.FinishReason)
	require.Len(t, r1.Parts, 1)
	assert.Equal(t, "sum", r1.Parts[0].(core.ToolCallPart).Name)

	r2, err := Collect(context.Background(), m, req)
	require.NoError(t, err)
	assert.Equal(t, []core.Part{core.TextPart{Text: "done"}}, r2.Parts)

	_, err = Collect(context.Background(), m, req)
	assert.EqualError(t, err, "quota")

	assert.Len(t, m.Requests(), 3)
}

func TestMockModel_DefaultEcho(t *testing.T) {
	m := NewMockModel("mock-1", "mock")

	resp, err := Collect(context.Background(), m, Request{Contents: []core.Turn{
		core.NewUserTurn("first"),
		core.NewAssistantTurn("reply"),
		core.NewUserTurn("second"),
	}})
	require.NoError(t, err)
	assert.Equal(t, []core.Part{core.TextPart{Text: "Mock response to: second"}}, resp.Parts)

	_, err = Collect(context.Background(), m, Request{})
	assert.Error(t, err)
}

func TestMockModel_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, NewMockModel("m", "mock").EnqueueText("x"), Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

type silentModel struct{}

func (silentModel) Generate(context.Context, Request) (<-chan Response, <-chan error) {
	r := make(chan Response)
	e := make(chan error)
	close(r)
	close(e)
	return r, e
}

func (silentModel) Info() Info { return Info{Name: "silent"} }

func TestCollect_NoResponse(t *testing.T) {
	_, err := Collect(context.Background(), silentModel{}, Request{})
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestNewFunctionDefinition(t *testing.T) {
	def := NewFunctionDefinition("sum", "Add", map[string]any{"type": "object"})
	assert.Equal(t, "function", def.Type)
	assert.Equal(t, "sum", def.Function.Name)
}
