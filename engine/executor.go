package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dewantaratirta/agentkit/core"
	"github.com/dewantaratirta/agentkit/logging"
	"github.com/dewantaratirta/agentkit/tool"
)

// toolExecutor runs the tool calls of one step, possibly in parallel, and
// returns exactly one result per call in call order.
type toolExecutor struct {
	maxParallel int
	logger      logging.Logger
	callbacks   *CallbackManager
}

func (x *toolExecutor) execute(ctx context.Context, step int, registry tool.Registry, calls []core.ToolCallPart) []core.Part {
	results := make([]core.Part, len(calls))

	if len(calls) == 1 {
		results[0] = x.executeOne(ctx, step, registry, calls[0])
		return results
	}

	var g errgroup.Group
	if x.maxParallel > 0 {
		g.SetLimit(x.maxParallel)
	}

	batchStart := time.Now()

	for i, call := range calls {
		g.Go(func() error {
			results[i] = x.executeOne(ctx, step, registry, call)
			return nil
		})
	}

	_ = g.Wait()

	x.logger.Debug(
		"engine.tools.batch.complete",
		"step", step,
		"count", len(calls),
		"parallelism", x.maxParallel,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return results
}

func (x *toolExecutor) executeOne(ctx context.Context, step int, registry tool.Registry, call core.ToolCallPart) core.Part {
	start := time.Now()

	var (
		output any
		err    error
	)

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("tool %q panicked: %v", call.Name, r)
				x.logger.Error("engine.tool.panic", "tool", call.Name, "fc_id", call.ID, "recover", r)
			}
		}()

		if err = x.callbacks.ExecuteCallbacks(ctx, CallbackBeforeTool, &CallbackContext{Step: step, Call: &call}); err != nil {
			return
		}

		output, err = callTool(ctx, registry, call, x.logger)
	}()

	result := core.ToolResultPart{CallID: call.ID, Name: call.Name, Result: output}
	if err != nil {
		result.Result = err.Error()
		result.IsError = true
	}

	if cbErr := x.callbacks.ExecuteCallbacks(ctx, CallbackAfterTool, &CallbackContext{Step: step, Call: &call, Result: &result}); cbErr != nil {
		x.logger.Warn("engine.callback.error", "callback", string(CallbackAfterTool), "tool", call.Name, "error", cbErr.Error())
	}

	x.logger.Info(
		"engine.tool.executed",
		"step", step,
		"tool", call.Name,
		"fc_id", call.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", result.IsError,
	)

	return result
}

// callTool resolves the tool, decodes its JSON arguments and invokes it.
func callTool(ctx context.Context, registry tool.Registry, call core.ToolCallPart, logger logging.Logger) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	impl, ok := registry[call.Name]
	if !ok {
		return nil, tool.NewToolError(call.Name, fmt.Sprintf("tool %q not found", call.Name), tool.CodeNotFound)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return nil, tool.NewToolError(call.Name, fmt.Sprintf("invalid arguments: %v", err), tool.CodeValidation)
		}
	}

	return impl.Call(tool.WithCall(ctx, call.ID, logger), args)
}
