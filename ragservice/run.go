// Package ragservice wires configuration, backends, HTTP routes and health
// checking into the runnable chat service.
package ragservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/api"
	"github.com/contextforge/ragchat/internal/api/recovery"
	"github.com/contextforge/ragchat/internal/chatstore"
	"github.com/contextforge/ragchat/internal/config"
	emb "github.com/contextforge/ragchat/internal/embeddings"
	"github.com/contextforge/ragchat/internal/factory"
	"github.com/contextforge/ragchat/internal/genai"
	"github.com/contextforge/ragchat/internal/health"
	"github.com/contextforge/ragchat/internal/logger"
	"github.com/contextforge/ragchat/internal/metrics"
	"github.com/contextforge/ragchat/internal/services"
	"github.com/contextforge/ragchat/internal/stream"
	"github.com/contextforge/ragchat/internal/vectorindex"
)

// Run starts the chat service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("ragchat")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("chat_provider", cfg.ChatProvider).
		Str("chat_model", cfg.ChatModel).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Str("vector_store", cfg.VectorStore).
		Msg("Chat service starting")

	// Cancellable root context bound to SIGINT/SIGTERM.
	ctx, stop := newServerContext()
	defer stop()

	embedder, idx, gen, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	router := buildRouter(idx, gen, cfg, log)

	// Start health checkers and bind service health.
	svcHealth := startHealthCheckers(ctx, cfg, log, embedder, idx, gen)

	// Block startup until dependencies report healthy; fail fast otherwise.
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the pluggable backends and enforces fail-fast
// on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (emb.Provider, vectorindex.Index, genai.Service, error) {
	embedder := factory.NewEmbeddingProvider(ctx, cfg, log)
	if embedder == nil {
		return nil, nil, nil, fmt.Errorf("embedding provider not configured")
	}

	idx, err := factory.NewVectorIndex(ctx, cfg, embedder, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Vector index unavailable")
		return nil, nil, nil, err
	}

	gen := factory.NewGenerationService(cfg, log)
	return embedder, idx, gen, nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(idx vectorindex.Index, gen genai.Service, cfg *config.Config, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	m := metrics.New()
	store := chatstore.NewMemoryStore()
	adapter := stream.NewAdapter(store, cfg.StreamPersistInterval(), cfg.GenerateChunkTimeout(), m, log)
	opts := vectorindex.SearchOptions{Limit: cfg.SearchLimit, Threshold: cfg.SearchThreshold}
	chatSvc := services.NewChatService(store, idx, gen, adapter, opts, m, log)

	// Conversations
	conv := api.NewConversationHandler(chatSvc)
	root.HandleFunc("/api/conversations", conv.CreateConversation).Methods("POST")
	root.HandleFunc("/api/conversations", conv.ListConversations).Methods("GET")
	root.HandleFunc("/api/conversations/{conversationId}", conv.GetConversation).Methods("GET")
	root.HandleFunc("/api/conversations/{conversationId}", conv.UpdateConversation).Methods("PATCH")
	root.HandleFunc("/api/conversations/{conversationId}", conv.DeleteConversation).Methods("DELETE")
	root.HandleFunc("/api/conversations/{conversationId}/messages", conv.GetMessages).Methods("GET")
	root.HandleFunc("/api/conversations/{conversationId}/messages", conv.AddMessage).Methods("POST")

	// Completions (blocking JSON or SSE by Accept header)
	completions := api.NewCompletionHandler(chatSvc, log)
	root.HandleFunc("/api/conversations/{conversationId}/completions", completions.CreateCompletion).Methods("POST")

	// Retrieval corpus
	docs := api.NewDocumentHandler(chatSvc)
	root.HandleFunc("/api/documents", docs.AddDocument).Methods("POST")
	root.HandleFunc("/api/search", docs.Search).Methods("POST")

	// Health and metrics
	healthHandler := api.NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	root.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return root
}

// startHealthCheckers starts component checkers and the service-level
// aggregator; binds service health for /api/health.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, embedder emb.Provider, idx vectorindex.Index, gen genai.Service) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	embChecker := emb.NewProviderHealthChecker(embedder, log, probeTimeout)
	go embChecker.Start(ctx, interval)
	checkers = append(checkers, embChecker)

	idxChecker := vectorindex.NewIndexHealthChecker(idx, log, probeTimeout)
	go idxChecker.Start(ctx, interval)
	checkers = append(checkers, idxChecker)

	genChecker := genai.NewServiceHealthChecker(gen, log, probeTimeout)
	go genChecker.Start(ctx, interval)
	checkers = append(checkers, genChecker)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Streaming completions keep the response open past any fixed write
		// window, so no WriteTimeout is set.
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout returns the startup health window, interval*2 with a
// floor of 60 seconds so checkers complete their first probe cycle.
func startupHealthTimeout(healthIntervalSeconds int) time.Duration {
	timeout := time.Duration(healthIntervalSeconds*2) * time.Second
	if timeout < 60*time.Second {
		return 60 * time.Second
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup
// window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	window := startupHealthTimeout(cfg.HealthIntervalSeconds)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = window

	probe := func() error {
		if svcHealth.IsHealthy() {
			return nil
		}
		return fmt.Errorf("dependencies not healthy")
	}
	if err := backoff.Retry(probe, backoff.WithContext(bo, ctx)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("startup aborted: dependencies not healthy within %s", window)
	}
	return nil
}

// newServerContext returns a cancellable context that is cancelled on
// SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
