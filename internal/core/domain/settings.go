package domain

// Provider names accepted by the AI adapter factory.
const (
	// ProviderOllama streams newline-delimited JSON from /api/chat.
	ProviderOllama = "ollama"

	// ProviderLMStudio is an OpenAI-compatible local server (SSE streaming).
	ProviderLMStudio = "lmstudio"

	// ProviderOpenAICompatible is any other OpenAI-compatible endpoint.
	ProviderOpenAICompatible = "openai"
)

// LLMSettings configures the generation endpoint.
type LLMSettings struct {
	// Provider selects the wire protocol: ollama, lmstudio or openai.
	Provider string

	// BaseURL is the API base URL. Empty means the provider default.
	BaseURL string

	// APIKey is the bearer token. Local providers rarely need one.
	APIKey string

	// Model is the model name sent with each request.
	Model string

	// Temperature controls generation randomness.
	Temperature float64

	// MaxTokens bounds the generated answer length.
	MaxTokens int
}

// EmbeddingSettings configures the embedding endpoint.
type EmbeddingSettings struct {
	// Provider selects the embedding API shape: ollama, lmstudio or openai.
	Provider string

	// BaseURL is the API base URL. Empty means the provider default.
	BaseURL string

	// APIKey is the bearer token, if the endpoint requires one.
	APIKey string

	// Model is the embedding model name.
	Model string

	// Dimensions is the embedding vector size produced by Model.
	Dimensions int

	// RequestsPerSecond caps embedding request rate. Zero disables limiting.
	RequestsPerSecond float64
}
