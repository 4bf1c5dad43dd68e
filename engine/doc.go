// Package engine runs the bounded model/tool loop behind every agent
// invocation.
//
// One step is a model call followed, when the model requested tools, by
// executing those tools and appending their results. The loop ends when a
// step produces no tool calls or the step budget (Params.MaxSteps) is used
// up. Tools requested on the final step still run, so a run may end on a
// tool turn without a synthesized answer.
//
// Tool failures never abort a run: unknown tools, malformed arguments,
// returned errors and panics all become ToolResultPart values with IsError
// set, which the model sees on the next step. Model failures abort the run
// and are returned to the caller.
//
// Basic usage:
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Logger = logger
//	    o.MaxParallelTools = 4
//	})
//
//	result, err := eng.Run(ctx, engine.Params{
//	    Model:    m,
//	    Tools:    tools,
//	    System:   "You are a helpful assistant.",
//	    Messages: history.Snapshot(),
//	    MaxSteps: 10,
//	})
package engine
