package health

import "context"

// HealthPinger is implemented by backends that can reach their upstream
// (the Ollama API, a Weaviate instance). HealthPing must return nil when
// the backend is reachable and serving.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
