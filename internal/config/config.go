// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the ragchat service.
// Environment variables are parsed from the RAGCHAT_ prefix.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Generation / Embedding backends (Ollama)
	OllamaURL    string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	ChatProvider string `envconfig:"CHAT_PROVIDER" default:"ollama"`
	ChatModel    string `envconfig:"CHAT_MODEL" default:"llama3.1"`

	EmbedProvider  string `envconfig:"EMBED_PROVIDER" default:"ollama"`
	EmbedModel     string `envconfig:"EMBED_MODEL" default:"mxbai-embed-large"`
	EmbedDimension int    `envconfig:"EMBED_DIMENSION" default:"384"`

	// Vector store selection: "memory" or "weaviate"
	VectorStore string `envconfig:"VECTOR_STORE" default:"memory"`
	WeaviateURL string `envconfig:"WEAVIATE_URL" default:"localhost:8081"`

	// Retrieval defaults
	SearchLimit     int     `envconfig:"SEARCH_LIMIT" default:"5"`
	SearchThreshold float32 `envconfig:"SEARCH_THRESHOLD" default:"0.7"`

	// Streaming behaviour
	StreamPersistIntervalMS       int `envconfig:"STREAM_PERSIST_INTERVAL_MS" default:"500"`
	GenerateConnectTimeoutSeconds int `envconfig:"GENERATE_CONNECT_TIMEOUT_SECONDS" default:"30"`
	GenerateChunkTimeoutSeconds   int `envconfig:"GENERATE_CHUNK_TIMEOUT_SECONDS" default:"10"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"15"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"30"`
}

// New loads and validates configuration from the environment.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("RAGCHAT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.VectorStore {
	case "memory", "weaviate":
	default:
		return fmt.Errorf("unsupported VECTOR_STORE: %s", c.VectorStore)
	}
	if c.VectorStore == "weaviate" && c.WeaviateURL == "" {
		return fmt.Errorf("WEAVIATE_URL required when VECTOR_STORE=weaviate")
	}
	if c.EmbedDimension <= 0 {
		return fmt.Errorf("EMBED_DIMENSION must be positive, got %d", c.EmbedDimension)
	}
	if c.SearchThreshold < 0 || c.SearchThreshold > 1 {
		return fmt.Errorf("SEARCH_THRESHOLD must be in [0,1], got %f", c.SearchThreshold)
	}
	return nil
}

// StreamPersistInterval returns the debounce interval for partial-content
// persistence during streaming.
func (c *Config) StreamPersistInterval() time.Duration {
	return time.Duration(c.StreamPersistIntervalMS) * time.Millisecond
}

// GenerateConnectTimeout is the hard timeout for establishing a generation
// backend stream.
func (c *Config) GenerateConnectTimeout() time.Duration {
	return time.Duration(c.GenerateConnectTimeoutSeconds) * time.Second
}

// GenerateChunkTimeout is the soft per-chunk wait during streaming.
func (c *Config) GenerateChunkTimeout() time.Duration {
	return time.Duration(c.GenerateChunkTimeoutSeconds) * time.Second
}
