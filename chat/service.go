// Package chat turns one user message into one reply: it records the user
// turn, builds an agent, runs it over the whole conversation and records the
// selected reply.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/dewantaratirta/agentkit/agent"
	"github.com/dewantaratirta/agentkit/core"
	"github.com/dewantaratirta/agentkit/engine"
	"github.com/dewantaratirta/agentkit/logging"
	"github.com/dewantaratirta/agentkit/reply"
)

// DefaultMaxSteps bounds the model/tool loop of one invocation.
const DefaultMaxSteps = engine.DefaultMaxSteps

// FallbackMessage is returned to the caller when a failure carries no message.
const FallbackMessage = "I'm sorry, I encountered an issue processing your message. Please try again later."

// Runner executes an agent over a conversation. *engine.Engine implements it.
type Runner interface {
	Run(ctx context.Context, p engine.Params) (*core.InvocationResult, error)
}

// Failure is the caller visible outcome of a failed invocation.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

func newFailure(err error) *Failure {
	msg := err.Error()
	if msg == "" {
		msg = FallbackMessage
	}

	return &Failure{Message: msg, Err: err}
}

// Options configure a Service.
type Options struct {
	Logger   logging.Logger
	MaxSteps int
}

// Service orchestrates invocations against a shared History. It is safe for
// concurrent use as long as the History is.
type Service struct {
	history  core.History
	factory  agent.Factory
	runner   Runner
	selector *reply.Selector
	logger   logging.Logger
	maxSteps int
}

// NewService creates a Service.
func NewService(history core.History, factory agent.Factory, runner Runner, optFns ...func(o *Options)) *Service {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		MaxSteps: DefaultMaxSteps,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	logger := logging.OrNoOp(opts.Logger)

	if opts.MaxSteps < 1 {
		opts.MaxSteps = DefaultMaxSteps
	}

	return &Service{
		history:  history,
		factory:  factory,
		runner:   runner,
		selector: reply.NewSelector(logger),
		logger:   logger,
		maxSteps: opts.MaxSteps,
	}
}

// HandleUserMessage records userText, runs the agent over the full history
// and returns the reply. An empty reply is not an error. Any returned error
// is a *Failure.
func (s *Service) HandleUserMessage(ctx context.Context, userText string) (string, error) {
	start := time.Now()

	userTurn := core.NewUserTurn(userText)
	if err := s.history.Append(userTurn); err != nil {
		s.logger.Error("chat.history.append_failed", "turn_id", userTurn.ID, "role", string(userTurn.Role), "error", err.Error())
		return "", newFailure(fmt.Errorf("record user message: %w", err))
	}

	text, err := s.invoke(ctx)
	if err != nil {
		s.logger.Error("chat.invocation.failed", "turn_id", userTurn.ID, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return "", newFailure(err)
	}

	if text != "" {
		assistantTurn := core.NewAssistantTurn(text)
		if err := s.history.Append(assistantTurn); err != nil {
			s.logger.Error("chat.history.append_failed", "turn_id", assistantTurn.ID, "role", string(assistantTurn.Role), "error", err.Error())
		}
	}

	s.logger.Info(
		"chat.invocation.complete",
		"turn_id", userTurn.ID,
		"reply_chars", len(text),
		"history_len", s.history.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return text, nil
}

// invoke builds the agent, runs it and selects the reply. Collaborator
// panics are returned as errors.
func (s *Service) invoke(ctx context.Context) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chat.invocation.panic", "recover", r)
			err = fmt.Errorf("%v", r)
		}
	}()

	a, err := s.factory.CreateAgent(ctx)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", fmt.Errorf("agent factory returned no agent")
	}

	result, err := s.runner.Run(ctx, engine.Params{
		Model:    a.Model,
		Tools:    a.Tools,
		System:   a.System,
		Messages: s.history.Snapshot(),
		MaxSteps: s.maxSteps,
	})
	if err != nil {
		return "", err
	}

	return s.selector.SelectReply(result), nil
}
