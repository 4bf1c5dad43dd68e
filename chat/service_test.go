package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dewantaratirta/agentkit/agent"
	"github.com/dewantaratirta/agentkit/core"
	"github.com/dewantaratirta/agentkit/engine"
	"github.com/dewantaratirta/agentkit/history"
	"github.com/dewantaratirta/agentkit/internal/testutil"
	"github.com/dewantaratirta/agentkit/logging"
	"github.com/dewantaratirta/agentkit/model"
)

type mockFactory struct{ mock.Mock }

func (m *mockFactory) CreateAgent(ctx context.Context) (*agent.Agent, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).(*agent.Agent)
	return a, args.Error(1)
}

type mockRunner struct{ mock.Mock }

func (m *mockRunner) Run(ctx context.Context, p engine.Params) (*core.InvocationResult, error) {
	args := m.Called(ctx, p)
	r, _ := args.Get(0).(*core.InvocationResult)
	return r, args.Error(1)
}

type failingHistory struct {
	*history.InMemoryStore
	failRole core.Role
}

func (h *failingHistory) Append(turn core.Turn) error {
	if turn.Role == h.failRole {
		return errors.New("disk full")
	}
	return h.InMemoryStore.Append(turn)
}

func testAgent() *agent.Agent {
	return &agent.Agent{Name: "test", Model: model.NewMockModel("m", "mock"), System: "be helpful"}
}

func textResult(text string) *core.InvocationResult {
	return &core.InvocationResult{Text: text}
}

func TestHandleUserMessage_HelloRoundTrip(t *testing.T) {
	store := history.NewInMemoryStore()
	factory := &mockFactory{}
	runner := &mockRunner{}

	factory.On("CreateAgent", mock.Anything).Return(testAgent(), nil)
	runner.On("Run", mock.Anything, mock.MatchedBy(func(p engine.Params) bool {
		return p.MaxSteps == 10 &&
			p.System == "be helpful" &&
			len(p.Messages) == 1 &&
			p.Messages[0].PlainText() == "hello"
	})).Return(textResult("hi there"), nil)

	svc := NewService(store, factory, runner)

	got, err := svc.HandleUserMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)

	turns := store.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, core.RoleUser, turns[0].Role)
	assert.Equal(t, []core.Part{core.TextPart{Text: "hello"}}, turns[0].Parts)
	assert.Equal(t, core.RoleAssistant, turns[1].Role)
	assert.Equal(t, []core.Part{core.TextPart{Text: "hi there"}}, turns[1].Parts)
	assert.NotEqual(t, turns[0].ID, turns[1].ID)

	factory.AssertExpectations(t)
	runner.AssertExpectations(t)
}

func TestHandleUserMessage_ConstructionFailure(t *testing.T) {
	store := history.NewInMemoryStore()
	factory := &mockFactory{}
	runner := &mockRunner{}

	factory.On("CreateAgent", mock.Anything).Return(nil, errors.New("no API key"))

	svc := NewService(store, factory, runner)

	got, err := svc.HandleUserMessage(context.Background(), "hello")
	assert.Empty(t, got)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "no API key", failure.Message)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, core.RoleUser, store.Snapshot()[0].Role)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestHandleUserMessage_InvocationFailure(t *testing.T) {
	store := history.NewInMemoryStore()
	factory := &mockFactory{}
	runner := &mockRunner{}

	factory.On("CreateAgent", mock.Anything).Return(testAgent(), nil)
	runner.On("Run", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	_, err := NewService(store, factory, runner).HandleUserMessage(context.Background(), "hello")
	assert.EqualError(t, err, "rate limited")
	assert.Equal(t, 1, store.Len())
}

func TestHandleUserMessage_FailureIsLogged(t *testing.T) {
	logger := testutil.NewRecordingLogger()
	factory := &mockFactory{}
	factory.On("CreateAgent", mock.Anything).Return(nil, agent.ErrMissingAPIKey)

	svc := NewService(history.NewInMemoryStore(), factory, &mockRunner{}, func(o *Options) { o.Logger = logger })

	_, err := svc.HandleUserMessage(context.Background(), "hello")
	require.ErrorIs(t, err, agent.ErrMissingAPIKey)

	entry, ok := logger.Find("chat.invocation.failed")
	require.True(t, ok)
	assert.Equal(t, logging.LogLevelError, entry.Level)
}

func TestHandleUserMessage_EmptyErrorUsesFallback(t *testing.T) {
	factory := &mockFactory{}
	factory.On("CreateAgent", mock.Anything).Return(nil, errors.New(""))

	_, err := NewService(history.NewInMemoryStore(), factory, &mockRunner{}).HandleUserMessage(context.Background(), "x")
	assert.EqualError(t, err, FallbackMessage)
}

func TestHandleUserMessage_PanicBecomesFailure(t *testing.T) {
	store := history.NewInMemoryStore()
	factory := &mockFactory{}
	runner := &mockRunner{}

	factory.On("CreateAgent", mock.Anything).Return(testAgent(), nil)
	runner.On("Run", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("engine exploded") })

	_, err := NewService(store, factory, runner).HandleUserMessage(context.Background(), "hello")

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "engine exploded", failure.Message)
	assert.Equal(t, 1, store.Len())
}

func TestHandleUserMessage_EmptyReplyAppendsNothing(t *testing.T) {
	store := history.NewInMemoryStore()
	factory := &mockFactory{}
	runner := &mockRunner{}

	factory.On("CreateAgent", mock.Anything).Return(testAgent(), nil)
	runner.On("Run", mock.Anything, mock.Anything).Return(&core.InvocationResult{
		Messages: []core.Turn{core.NewTurn(core.RoleAssistant, core.TextPart{Text: "   "})},
	}, nil)

	got, err := NewService(store, factory, runner).HandleUserMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Equal(t, 1, store.Len())
}

func TestHandleUserMessage_FallsBackToToolText(t *testing.T) {
	factory := &mockFactory{}
	runner := &mockRunner{}

	factory.On("CreateAgent", mock.Anything).Return(testAgent(), nil)
	runner.On("Run", mock.Anything, mock.Anything).Return(&core.InvocationResult{
		Messages: []core.Turn{
			core.NewTurn(core.RoleAssistant, core.ToolCallPart{ID: "c1", Name: "sum"}),
			core.NewTurn(core.RoleTool, core.ToolResultPart{CallID: "c1", Name: "sum", Result: 42}),
		},
	}, nil)

	got, err := NewService(history.NewInMemoryStore(), factory, runner).HandleUserMessage(context.Background(), "sum")
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestHandleUserMessage_RepeatedMessagesAppendNewPairs(t *testing.T) {
	store := history.NewInMemoryStore()
	factory := &mockFactory{}
	runner := &mockRunner{}

	factory.On("CreateAgent", mock.Anything).Return(testAgent(), nil)
	runner.On("Run", mock.Anything, mock.MatchedBy(func(p engine.Params) bool { return len(p.Messages) == 1 })).
		Return(textResult("first"), nil).Once()
	runner.On("Run", mock.Anything, mock.MatchedBy(func(p engine.Params) bool { return len(p.Messages) == 3 })).
		Return(textResult("second"), nil).Once()

	svc := NewService(store, factory, runner)

	first, err := svc.HandleUserMessage(context.Background(), "same")
	require.NoError(t, err)
	second, err := svc.HandleUserMessage(context.Background(), "same")
	require.NoError(t, err)

	assert.Equal(t, "first", first)
	assert.Equal(t, "second", second)
	assert.Equal(t, 4, store.Len())
	runner.AssertExpectations(t)
}

func TestHandleUserMessage_AssistantAppendFailureStillReplies(t *testing.T) {
	store := &failingHistory{InMemoryStore: history.NewInMemoryStore(), failRole: core.RoleAssistant}
	factory := &mockFactory{}
	runner := &mockRunner{}

	factory.On("CreateAgent", mock.Anything).Return(testAgent(), nil)
	runner.On("Run", mock.Anything, mock.Anything).Return(textResult("hi"), nil)

	got, err := NewService(store, factory, runner).HandleUserMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, 1, store.Len())
}

func TestHandleUserMessage_UserAppendFailure(t *testing.T) {
	store := &failingHistory{InMemoryStore: history.NewInMemoryStore(), failRole: core.RoleUser}
	factory := &mockFactory{}

	_, err := NewService(store, factory, &mockRunner{}).HandleUserMessage(context.Background(), "hello")

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Message, "disk full")
	factory.AssertNotCalled(t, "CreateAgent", mock.Anything)
}

func TestHandleUserMessage_WithEngine(t *testing.T) {
	store := history.NewInMemoryStore()
	m := model.NewMockModel("m", "mock").EnqueueText("hi there")

	factory := agent.FactoryFunc(func(context.Context) (*agent.Agent, error) {
		return &agent.Agent{Model: m}, nil
	})

	svc := NewService(store, factory, engine.New(), func(o *Options) { o.MaxSteps = 3 })

	got, err := svc.HandleUserMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
	assert.Equal(t, 2, store.Len())
}

type messageKey struct{}

func TestHandleUserMessage_ConcurrentRequestsKeepTheirPairs(t *testing.T) {
	const n = 50

	store := history.NewInMemoryStore()
	factory := agent.FactoryFunc(func(ctx context.Context) (*agent.Agent, error) {
		msg, _ := ctx.Value(messageKey{}).(string)
		return &agent.Agent{Model: model.NewMockModel("m", "mock").EnqueueText("reply to " + msg)}, nil
	})
	svc := NewService(store, factory, engine.New())

	var g errgroup.Group
	for i := range n {
		msg := fmt.Sprintf("message %d", i)
		g.Go(func() error {
			ctx := context.WithValue(context.Background(), messageKey{}, msg)
			got, err := svc.HandleUserMessage(ctx, msg)
			if err != nil {
				return err
			}
			if got != "reply to "+msg {
				return fmt.Errorf("%s: got reply %q", msg, got)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	turns := store.Snapshot()
	require.Len(t, turns, 2*n)

	userAt := make(map[string]int, n)
	replyAt := make(map[string]int, n)
	for i, turn := range turns {
		switch turn.Role {
		case core.RoleUser:
			userAt[turn.PlainText()] = i
		case core.RoleAssistant:
			replyAt[turn.PlainText()] = i
		}
	}
	require.Len(t, userAt, n)
	require.Len(t, replyAt, n)

	for i := range n {
		msg := fmt.Sprintf("message %d", i)
		u, ok := userAt[msg]
		require.True(t, ok, msg)
		r, ok := replyAt["reply to "+msg]
		require.True(t, ok, msg)
		assert.Less(t, u, r, "user turn of %q must precede its reply", msg)
	}
}
