package agent

import (
	"context"

	"github.com/dewantaratirta/agentkit/model"
	"github.com/dewantaratirta/agentkit/tool"
)

// Agent bundles everything the engine needs for one run.
type Agent struct {
	Name   string
	Model  model.Model
	Tools  []tool.Tool
	System string
}

// Factory creates the Agent used for one invocation.
type Factory interface {
	CreateAgent(ctx context.Context) (*Agent, error)
}

// FactoryFunc adapts an ordinary function to the Factory interface.
type FactoryFunc func(ctx context.Context) (*Agent, error)

// CreateAgent implements Factory.
func (f FactoryFunc) CreateAgent(ctx context.Context) (*Agent, error) { return f(ctx) }
