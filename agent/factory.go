package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/dewantaratirta/agentkit/config"
	"github.com/dewantaratirta/agentkit/logging"
	"github.com/dewantaratirta/agentkit/model"
	anthropicmodel "github.com/dewantaratirta/agentkit/model/anthropic"
	openaimodel "github.com/dewantaratirta/agentkit/model/openai"
	"github.com/dewantaratirta/agentkit/tool"
	"github.com/dewantaratirta/agentkit/tool/builtin"
)

var (
	// ErrMissingAPIKey is returned when the configured provider needs an API
	// key and none is set.
	ErrMissingAPIKey = errors.New("no API key configured")

	// ErrUnknownProvider is returned for a provider name the factory cannot build.
	ErrUnknownProvider = errors.New("unknown model provider")
)

// FactoryOptions configure a ConfigFactory.
type FactoryOptions struct {
	Logger logging.Logger

	// Instruction overrides the instruction text from configuration.
	Instruction *Instruction

	// Tools are registered in addition to the configured built-in tools.
	Tools []tool.Tool

	// Model, when set, is used instead of building one from configuration.
	Model model.Model

	// Now is the clock used for {{.Date}}.
	Now func() time.Time
}

// ConfigFactory builds agents from configuration. Every call constructs a
// fresh model client so key rotation in the environment takes effect
// without a restart.
type ConfigFactory struct {
	modelCfg config.ModelConfig
	agentCfg config.AgentConfig
	opts     FactoryOptions
}

// NewConfigFactory creates a ConfigFactory.
func NewConfigFactory(modelCfg config.ModelConfig, agentCfg config.AgentConfig, optFns ...func(o *FactoryOptions)) *ConfigFactory {
	opts := FactoryOptions{
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &ConfigFactory{modelCfg: modelCfg, agentCfg: agentCfg, opts: opts}
}

// CreateAgent implements Factory.
func (f *ConfigFactory) CreateAgent(ctx context.Context) (*Agent, error) {
	m := f.opts.Model
	if m == nil {
		var err error
		if m, err = f.buildModel(); err != nil {
			return nil, err
		}
	}

	tools, err := builtin.Lookup(f.agentCfg.Tools...)
	if err != nil {
		return nil, err
	}

	tools = append(tools, f.opts.Tools...)

	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}

	instruction := NewInstructionFromText(f.agentCfg.Instruction)
	if f.opts.Instruction != nil {
		instruction = *f.opts.Instruction
	}

	data := NewInstructionData(f.agentCfg.Name, f.opts.Now().Format(time.DateOnly), names)

	system, err := instruction.Resolve(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("resolve instruction: %w", err)
	}

	f.opts.Logger.Debug(
		"agent.created",
		"agent", f.agentCfg.Name,
		"provider", m.Info().Provider,
		"model", m.Info().Name,
		"tools", len(tools),
	)

	return &Agent{
		Name:   f.agentCfg.Name,
		Model:  m,
		Tools:  tools,
		System: system,
	}, nil
}

func (f *ConfigFactory) buildModel() (model.Model, error) {
	mc := f.modelCfg

	switch strings.ToLower(mc.Provider) {
	case config.ProviderOpenAI:
		if mc.APIKey == "" {
			return nil, ErrMissingAPIKey
		}

		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if mc.Name != "" {
				o.Model = mc.Name
			}
			if mc.MaxTokens > 0 {
				o.MaxCompletionTokens = mc.MaxTokens
			}
			o.Temperature = mc.Temperature
			o.APIKey = mc.APIKey
			o.BaseURL = mc.BaseURL
		}), nil
	case config.ProviderAnthropic:
		if mc.APIKey == "" {
			return nil, ErrMissingAPIKey
		}

		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if mc.Name != "" {
				o.Model = anthropicsdk.Model(mc.Name)
			}
			if mc.MaxTokens > 0 {
				o.MaxTokens = mc.MaxTokens
			}
			o.Temperature = mc.Temperature
			o.APIKey = mc.APIKey
			o.BaseURL = mc.BaseURL
		}), nil
	case config.ProviderMock:
		name := mc.Name
		if name == "" {
			name = "mock"
		}

		return model.NewMockModel(name, config.ProviderMock), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, mc.Provider)
	}
}
