package genai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/model"
)

// Ollama is a generation Service backed by the Ollama chat API.
type Ollama struct {
	rc             *resty.Client
	model          string
	connectTimeout time.Duration
	log            zerolog.Logger
}

// NewOllama builds a client for baseURL. connectTimeout bounds stream
// establishment; it is fatal when exceeded.
func NewOllama(baseURL, chatModel string, connectTimeout time.Duration, log zerolog.Logger) *Ollama {
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	// The connect timeout is enforced at the transport as a response-header
	// deadline, so it bounds stream establishment without cutting off a
	// long-running generation body.
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTransport(&http.Transport{ResponseHeaderTimeout: connectTimeout})
	return &Ollama{rc: rc, model: chatModel, connectTimeout: connectTimeout, log: log}
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

func (o *Ollama) Generate(ctx context.Context, messages []model.Message, results []model.RetrievalResult) (string, error) {
	var out ollamaChatResponse
	resp, err := o.rc.R().
		SetContext(ctx).
		SetBody(ollamaChatRequest{Model: o.model, Messages: buildWireMessages(messages, results), Stream: false}).
		SetResult(&out).
		Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("%w: ollama chat: %v", model.ErrBackendUnavailable, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: ollama chat status %d", model.ErrBackendUnavailable, resp.StatusCode())
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama chat error: %s", out.Error)
	}
	return out.Message.Content, nil
}

// GenerateStream opens an NDJSON chat stream. The connect timeout bounds
// response establishment only; chunk pacing is the caller's concern.
func (o *Ollama) GenerateStream(ctx context.Context, messages []model.Message, results []model.RetrievalResult) (*Stream, error) {
	resp, err := o.rc.R().
		SetContext(ctx).
		SetBody(ollamaChatRequest{Model: o.model, Messages: buildWireMessages(messages, results), Stream: true}).
		SetDoNotParseResponse(true).
		Post("/api/chat")
	if err != nil {
		return nil, fmt.Errorf("%w: ollama chat stream: %v", model.ErrBackendUnavailable, err)
	}
	if resp.IsError() {
		_ = resp.RawBody().Close()
		return nil, fmt.Errorf("%w: ollama chat stream status %d", model.ErrBackendUnavailable, resp.StatusCode())
	}

	stream, writer := NewPipe()
	go func() {
		body := resp.RawBody()
		defer body.Close()

		// A consumer Close must also tear down the HTTP stream, or the
		// scanner below would block on a stalled connection.
		go func() {
			<-writer.Done()
			o.log.Debug().Msg("chat stream abandoned by consumer; closing backend body")
			_ = body.Close()
		}()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var out ollamaChatResponse
			if err := json.Unmarshal(line, &out); err != nil {
				writer.Fail(fmt.Errorf("ollama stream decode: %w", err))
				return
			}
			if out.Error != "" {
				writer.Fail(fmt.Errorf("ollama stream error: %s", out.Error))
				return
			}
			if out.Message.Content != "" && !writer.Send(out.Message.Content) {
				return
			}
			if out.Done {
				writer.CloseSend()
				return
			}
		}
		if err := scanner.Err(); err != nil {
			writer.Fail(fmt.Errorf("ollama stream read: %w", err))
			return
		}
		writer.CloseSend()
	}()
	return stream, nil
}

// HealthPing checks the Ollama tags endpoint.
func (o *Ollama) HealthPing(ctx context.Context) error {
	resp, err := o.rc.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	return nil
}
