// Package builtin provides a small set of general purpose tools that can be
// enabled by name from configuration.
package builtin

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dewantaratirta/agentkit/tool"
)

type currentTimeArgs struct {
	Timezone string `json:"timezone,omitempty" description:"IANA time zone such as 'Europe/Berlin'; defaults to UTC"`
}

type sumArgs struct {
	Numbers []float64 `json:"numbers" description:"Numbers to add up"`
}

// NewCurrentTimeTool reports the current time. now is injectable for tests;
// nil means time.Now.
func NewCurrentTimeTool(now func() time.Time) *tool.FunctionTool {
	if now == nil {
		now = time.Now
	}
	return tool.NewFunctionToolFromStruct(
		"get_current_time",
		"Get the current date and time, optionally in a specific time zone",
		currentTimeArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			zone, _ := args["timezone"].(string)
			if zone == "" {
				zone = "UTC"
			}
			loc, err := time.LoadLocation(zone)
			if err != nil {
				return nil, tool.NewToolError("get_current_time", fmt.Sprintf("unknown time zone %q", zone), tool.CodeValidation)
			}
			t := now().In(loc)
			return map[string]any{
				"timezone": zone,
				"time":     t.Format(time.RFC3339),
				"weekday":  t.Weekday().String(),
			}, nil
		},
	)
}

// NewCalculateSumTool adds up a list of numbers.
func NewCalculateSumTool() *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"calculate_sum",
		"Calculate the sum of a list of numbers",
		sumArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			items, _ := args["numbers"].([]any)
			var total float64
			for i, item := range items {
				n, ok := item.(float64)
				if !ok {
					return nil, tool.NewToolError("calculate_sum", fmt.Sprintf("numbers[%d] is not a number", i), tool.CodeValidation)
				}
				total += n
			}
			return total, nil
		},
	)
}

var constructors = map[string]func() tool.Tool{
	"get_current_time": func() tool.Tool { return NewCurrentTimeTool(nil) },
	"calculate_sum":    func() tool.Tool { return NewCalculateSumTool() },
}

// Names lists the built-in tool names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves built-in tools by name. An unknown name is an error.
func Lookup(names ...string) ([]tool.Tool, error) {
	tools := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		ctor, ok := constructors[name]
		if !ok {
			return nil, fmt.Errorf("unknown built-in tool %q (available: %v)", name, Names())
		}
		tools = append(tools, ctor())
	}
	return tools, nil
}
