package tool

import (
	"context"

	"github.com/dewantaratirta/agentkit/logging"
)

type callKey struct{}

type callInfo struct {
	id     string
	logger logging.Logger
}

// WithCall returns a context describing one tool invocation: the model's
// call id and the logger the tool should report through.
func WithCall(ctx context.Context, callID string, logger logging.Logger) context.Context {
	return context.WithValue(ctx, callKey{}, callInfo{id: callID, logger: logging.OrNoOp(logger)})
}

// CallID returns the function call id stored by WithCall, or "".
func CallID(ctx context.Context) string {
	info, _ := ctx.Value(callKey{}).(callInfo)
	return info.id
}

// Logger returns the logger stored by WithCall, or a NoOpLogger.
func Logger(ctx context.Context) logging.Logger {
	info, ok := ctx.Value(callKey{}).(callInfo)
	if !ok {
		return logging.NoOpLogger{}
	}
	return info.logger
}
