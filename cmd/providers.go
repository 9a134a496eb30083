package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/ai"
	"github.com/spigell/careermate/internal/ai/gemini"
	"github.com/spigell/careermate/internal/ai/ollama"
	"github.com/spigell/careermate/internal/contacts"
	"github.com/spigell/careermate/internal/secrets"
)

// assistant is satisfied by every configured provider.
type assistant interface {
	ai.Generator
	ai.ImageReader
}

// newAssistant builds the configured model client. model overrides the
// provider's configured model when not empty.
func newAssistant(ctx context.Context, cfg *AIConfig, model string, logger *zap.Logger) (assistant, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", ai.ProviderOllama:
		if model == "" {
			model = cfg.Ollama.Model
		}
		return ollama.New(cfg.Ollama.Host, model, logger), nil
	case ai.ProviderGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}
		if model == "" {
			model = cfg.Gemini.Model
		}
		client, err := gemini.NewGenerator(ctx, apiKey, model, cfg.MaxLogLength, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func openContacts(cfg *ContactsConfig, logger *zap.Logger) (contacts.Store, error) {
	store, err := contacts.Open(cfg.Backend, cfg.Path)
	if err != nil {
		return nil, err
	}

	logger.Debug("contacts store opened", zap.String("backend", cfg.Backend), zap.String("path", cfg.Path))
	return store, nil
}
