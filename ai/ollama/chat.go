package ollama

import (
	"context"
	"log/slog"

	"github.com/sentinelai/sentinel/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// ChatModel implements ai.ChatModel using the Ollama chat API.
type ChatModel struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.Host),
		ollama.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "ollama-chat"),
	}, nil
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Generate produces a completion for the given system and user prompts.
func (m *ChatModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.logger.Debug("generating completion", "prompt_length", len(prompt))

	response, err := m.client.GenerateContent(ctx, buildMessages(system, prompt),
		llms.WithTemperature(m.temperature))
	if err != nil {
		m.logger.Error("failed to generate completion", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		m.logger.Warn("no choices returned from model")
		return "", nil
	}

	return response.Choices[0].Content, nil
}

// GenerateJSON produces a completion constrained to JSON output at
// temperature zero.
func (m *ChatModel) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	m.logger.Debug("generating JSON completion", "prompt_length", len(prompt))

	response, err := m.client.GenerateContent(ctx, buildMessages(system, prompt),
		llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		m.logger.Error("failed to generate JSON completion", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		m.logger.Warn("no choices returned from model")
		return "", nil
	}

	return response.Choices[0].Content, nil
}

// GenerateStream produces a completion incrementally, invoking fn for each
// token chunk as it arrives.
func (m *ChatModel) GenerateStream(ctx context.Context, system, prompt string, fn func(chunk string) error) error {
	m.logger.Debug("generating streamed completion", "prompt_length", len(prompt))

	_, err := m.client.GenerateContent(ctx, buildMessages(system, prompt),
		llms.WithTemperature(m.temperature),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return fn(string(chunk))
		}))
	if err != nil {
		m.logger.Error("failed to stream completion", "err", err)
		return err
	}

	return nil
}

// buildMessages assembles the message content for a chat call.
// An empty system prompt yields a single user message.
func buildMessages(system, prompt string) []llms.MessageContent {
	var content []llms.MessageContent
	if system != "" {
		content = append(content, llms.MessageContent{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(system),
			},
		})
	}
	content = append(content, llms.MessageContent{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.TextPart(prompt),
		},
	})
	return content
}
