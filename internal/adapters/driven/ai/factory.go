// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/ragchat-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ragchat-cli/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/ragchat-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ragchat-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// lmStudioAPIKey is the placeholder key LM Studio expects when a client
// insists on sending one.
const lmStudioAPIKey = "lm-studio"

// CreateAndValidateEmbeddingService creates an embedding service and validates
// connectivity. Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings, log *logger.Logger) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Is the %s server running?",
			domain.ErrEmbeddingUnavailable, err, settings.Provider)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates
// connectivity. Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings, log *logger.Logger) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Is the %s server running?",
			domain.ErrLLMUnavailable, err, settings.Provider)
	}

	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings missing", domain.ErrInvalidInput)
	}

	switch settings.Provider {
	case domain.ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.ProviderLMStudio:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			BaseURL:           settings.BaseURL,
			APIKey:            orDefault(settings.APIKey, lmStudioAPIKey),
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.ProviderOpenAICompatible:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			BaseURL:           settings.BaseURL,
			APIKey:            settings.APIKey,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
func CreateLLMService(settings *domain.LLMSettings, log *logger.Logger) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: LLM settings missing", domain.ErrInvalidInput)
	}

	switch settings.Provider {
	case domain.ProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}, log), nil

	case domain.ProviderLMStudio:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			BaseURL: settings.BaseURL,
			APIKey:  orDefault(settings.APIKey, lmStudioAPIKey),
			Model:   settings.Model,
		}, log), nil

	case domain.ProviderOpenAICompatible:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			BaseURL: settings.BaseURL,
			APIKey:  settings.APIKey,
			Model:   settings.Model,
		}, log), nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, settings.Provider)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
