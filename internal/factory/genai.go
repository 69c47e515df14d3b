package factory

import (
	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/config"
	"github.com/contextforge/ragchat/internal/genai"
)

// NewGenerationService creates the chat generation backend from config.
func NewGenerationService(cfg *config.Config, log zerolog.Logger) genai.Service {
	switch cfg.ChatProvider {
	case "mock":
		return genai.NewMock()
	case "", "ollama":
		return genai.NewOllama(cfg.OllamaURL, cfg.ChatModel, cfg.GenerateConnectTimeout(), log)
	default:
		log.Warn().Str("provider", cfg.ChatProvider).Msg("unknown chat provider; using ollama")
		return genai.NewOllama(cfg.OllamaURL, cfg.ChatModel, cfg.GenerateConnectTimeout(), log)
	}
}
