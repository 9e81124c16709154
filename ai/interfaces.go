package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel generates chat completions from prompts.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Generate produces a completion for the given system and user prompts.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// GenerateJSON produces a completion constrained to JSON output,
	// at temperature zero. Callers still need to validate the result;
	// local models routinely emit malformed JSON.
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)

	// GenerateStream produces a completion incrementally, invoking fn for
	// each token chunk as it arrives. Returning an error from fn aborts
	// the generation.
	GenerateStream(ctx context.Context, system, prompt string, fn func(chunk string) error) error
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// ChatModel instances, ensuring they share configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ChatModel returns the chat completion service.
	// The returned ChatModel is safe for concurrent use.
	ChatModel() ChatModel

	// CheckHealth verifies that the backing model service is reachable.
	// A non-nil error means the system should report degraded status,
	// not crash: uploads and search over stored vectors keep working.
	CheckHealth(ctx context.Context) error

	// WaitReady blocks until the model service responds to health checks,
	// retrying with increasing delays. Returns the last health error if
	// the service never became ready.
	WaitReady(ctx context.Context) error

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
