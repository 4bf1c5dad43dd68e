package engine

import (
	"context"

	"github.com/dewantaratirta/agentkit/core"
	"github.com/dewantaratirta/agentkit/logging"
	"github.com/dewantaratirta/agentkit/model"
)

// CallbackType identifies the point in the loop where a callback runs.
type CallbackType string

const (
	// CallbackBeforeModel runs before each model call. Request is set.
	CallbackBeforeModel CallbackType = "before_model"

	// CallbackAfterModel runs after a successful model call. Request and Response are set.
	CallbackAfterModel CallbackType = "after_model"

	// CallbackBeforeTool runs before a tool call. Call is set.
	CallbackBeforeTool CallbackType = "before_tool"

	// CallbackAfterTool runs after a tool call. Call and Result are set.
	CallbackAfterTool CallbackType = "after_tool"

	// CallbackOnError runs when a run aborts. Err is set.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext describes the loop state handed to a callback. Fields that
// do not apply to the callback type are nil.
type CallbackContext struct {
	CallbackType CallbackType
	Step         int

	Request  *model.Request
	Response *model.Response

	Call   *core.ToolCallPart
	Result *core.ToolResultPart

	Err error
}

// Callback is a synchronous lifecycle hook.
//
// Returning an error from a before_model or after_model callback aborts the
// run. Errors from tool callbacks are reported as the tool's result. Tool
// callbacks may run concurrently when several tools execute in parallel.
type Callback interface {
	Type() CallbackType
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a Callback.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{callbackType: callbackType, fn: fn}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType { return c.callbackType }

// Execute calls the wrapped function.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// LoggingCallback writes one debug line per lifecycle event.
type LoggingCallback struct {
	callbackType CallbackType
	logger       logging.Logger
}

// NewLoggingCallback creates a LoggingCallback for callbackType.
func NewLoggingCallback(callbackType CallbackType, logger logging.Logger) *LoggingCallback {
	return &LoggingCallback{callbackType: callbackType, logger: logging.OrNoOp(logger)}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType { return c.callbackType }

// Execute logs the event.
func (c *LoggingCallback) Execute(_ context.Context, cc *CallbackContext) error {
	args := []any{"callback", string(cc.CallbackType), "step", cc.Step}
	if cc.Call != nil {
		args = append(args, "tool", cc.Call.Name, "fc_id", cc.Call.ID)
	}
	if cc.Result != nil {
		args = append(args, "tool_error", cc.Result.IsError)
	}
	if cc.Response != nil {
		args = append(args, "finish_reason", cc.Response.FinishReason)
	}
	if cc.Err != nil {
		args = append(args, "error", cc.Err.Error())
	}

	c.logger.Debug("engine.callback", args...)

	return nil
}

// CallbackManager routes callbacks by type. Register everything before the
// first run; execution is then safe for concurrent use.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager(callbacks ...Callback) *CallbackManager {
	cm := &CallbackManager{callbacks: make(map[CallbackType][]Callback)}
	for _, cb := range callbacks {
		cm.RegisterCallback(cb)
	}

	return cm
}

// RegisterCallback adds a callback; callbacks of one type run in
// registration order.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	if callback == nil {
		return
	}

	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs the callbacks registered for callbackType and stops
// at the first error.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	callbackCtx.CallbackType = callbackType

	for _, callback := range cm.callbacks[callbackType] {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}
