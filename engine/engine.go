package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dewantaratirta/agentkit/core"
	"github.com/dewantaratirta/agentkit/logging"
	"github.com/dewantaratirta/agentkit/model"
	"github.com/dewantaratirta/agentkit/tool"
)

// ErrNoModel is returned by Run when Params.Model is nil.
var ErrNoModel = errors.New("engine: no model configured")

// DefaultMaxSteps is the step budget used by callers that do not configure one.
const DefaultMaxSteps = 10

// Options configure an Engine.
type Options struct {
	Logger logging.Logger

	// MaxParallelTools bounds how many tool calls of one step run at once.
	// Zero or less means no limit.
	MaxParallelTools int

	Callbacks []Callback
}

// Params describe one run.
type Params struct {
	Model  model.Model
	Tools  []tool.Tool
	System string

	// Messages is the conversation so far, oldest first. It is not modified.
	Messages []core.Turn

	// MaxSteps bounds the number of model calls. Values below 1 are treated as 1.
	MaxSteps int
}

// Engine executes runs. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	logger    logging.Logger
	callbacks *CallbackManager
	executor  *toolExecutor
}

// New creates an Engine.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := logging.OrNoOp(opts.Logger)
	callbacks := NewCallbackManager(opts.Callbacks...)

	return &Engine{
		logger:    logger,
		callbacks: callbacks,
		executor: &toolExecutor{
			maxParallel: opts.MaxParallelTools,
			logger:      logger,
			callbacks:   callbacks,
		},
	}
}

// Run drives the model/tool loop and returns the turns it produced. The
// result Text is the trimmed text of the last assistant turn.
func (e *Engine) Run(ctx context.Context, p Params) (*core.InvocationResult, error) {
	if p.Model == nil {
		return nil, ErrNoModel
	}

	registry, err := tool.NewRegistry(p.Tools...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	maxSteps := p.MaxSteps
	if maxSteps < 1 {
		maxSteps = 1
	}

	limiter := NewStepLimiter(maxSteps)
	defs := toolDefinitions(p.Tools)

	conversation := make([]core.Turn, len(p.Messages), len(p.Messages)+2*maxSteps)
	copy(conversation, p.Messages)

	result := &core.InvocationResult{}
	start := time.Now()

	var lastAssistant core.Turn

	for limiter.Increment() == nil {
		step := limiter.Count()

		req := model.Request{
			Instructions: p.System,
			Contents:     conversation,
			Tools:        defs,
		}

		e.logger.Debug("engine.step.start", "step", step, "turns", len(conversation))

		if err := e.callbacks.ExecuteCallbacks(ctx, CallbackBeforeModel, &CallbackContext{Step: step, Request: &req}); err != nil {
			return nil, e.abort(ctx, step, fmt.Errorf("before model callback: %w", err))
		}

		resp, err := model.Collect(ctx, p.Model, req)
		if err != nil {
			e.logger.Error("engine.model.error", "step", step, "model", p.Model.Info().Name, "error", err.Error())
			return nil, e.abort(ctx, step, fmt.Errorf("model call failed at step %d: %w", step, err))
		}

		if err := e.callbacks.ExecuteCallbacks(ctx, CallbackAfterModel, &CallbackContext{Step: step, Request: &req, Response: &resp}); err != nil {
			return nil, e.abort(ctx, step, fmt.Errorf("after model callback: %w", err))
		}

		lastAssistant = core.NewTurn(core.RoleAssistant, resp.Parts...)
		conversation = append(conversation, lastAssistant)
		result.Messages = append(result.Messages, lastAssistant)
		result.Steps = step

		calls := lastAssistant.ToolCalls()
		if len(calls) == 0 {
			break
		}

		toolTurn := core.NewTurn(core.RoleTool, e.executor.execute(ctx, step, registry, calls)...)
		conversation = append(conversation, toolTurn)
		result.Messages = append(result.Messages, toolTurn)

		if err := ctx.Err(); err != nil {
			return nil, e.abort(ctx, step, err)
		}
	}

	result.Text = strings.TrimSpace(lastAssistant.PlainText())

	e.logger.Info(
		"engine.run.complete",
		"steps", result.Steps,
		"max_steps", maxSteps,
		"messages", len(result.Messages),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

func (e *Engine) abort(ctx context.Context, step int, err error) error {
	if cbErr := e.callbacks.ExecuteCallbacks(ctx, CallbackOnError, &CallbackContext{Step: step, Err: err}); cbErr != nil {
		e.logger.Warn("engine.callback.error", "callback", string(CallbackOnError), "error", cbErr.Error())
	}

	return err
}

func toolDefinitions(tools []tool.Tool) []model.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}

	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		if t == nil {
			continue
		}
		defs = append(defs, model.NewFunctionDefinition(t.Name(), t.Description(), t.Parameters()))
	}

	return defs
}
