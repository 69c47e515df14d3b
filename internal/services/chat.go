// Package services holds the use-case layer between the HTTP handlers and
// the storage, retrieval and generation backends.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/chatstore"
	"github.com/contextforge/ragchat/internal/genai"
	"github.com/contextforge/ragchat/internal/metrics"
	"github.com/contextforge/ragchat/internal/model"
	"github.com/contextforge/ragchat/internal/stream"
	"github.com/contextforge/ragchat/internal/vectorindex"
)

// TurnContext is everything assembled for one chat turn: the full history
// including the just-appended user message, plus the retrieved documents.
type TurnContext struct {
	Messages []model.Message
	Results  []model.RetrievalResult
}

// ChatService orchestrates retrieval-augmented chat turns.
type ChatService struct {
	store      chatstore.Store
	index      vectorindex.Index
	gen        genai.Service
	streams    *stream.Adapter
	searchOpts vectorindex.SearchOptions
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewChatService wires the orchestrator. metrics may be nil.
func NewChatService(s chatstore.Store, idx vectorindex.Index, gen genai.Service, streams *stream.Adapter, opts vectorindex.SearchOptions, m *metrics.Metrics, log zerolog.Logger) *ChatService {
	return &ChatService{store: s, index: idx, gen: gen, streams: streams, searchOpts: opts, metrics: m, log: log}
}

// Conversation passthroughs. Handlers never touch the store directly.

func (s *ChatService) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	return s.store.Create(ctx, title)
}

func (s *ChatService) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	return s.store.Get(ctx, id)
}

func (s *ChatService) ListConversations(ctx context.Context, limit int) ([]*model.Conversation, error) {
	return s.store.List(ctx, limit)
}

func (s *ChatService) UpdateConversation(ctx context.Context, id string, req chatstore.UpdateRequest) (*model.Conversation, error) {
	return s.store.Update(ctx, id, req)
}

func (s *ChatService) DeleteConversation(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *ChatService) GetMessages(ctx context.Context, id string) ([]model.Message, error) {
	return s.store.GetMessages(ctx, id)
}

// AddMessage appends one message with an explicit role. The completion
// endpoints use AddMessageAndRetrieveContext instead; this is the plain
// transcript append.
func (s *ChatService) AddMessage(ctx context.Context, id string, role model.Role, content string) (*model.Message, error) {
	return s.store.AddMessage(ctx, id, role, content)
}

// AddMessageAndRetrieveContext appends content as a user message, then
// retrieves documents relevant to it. Retrieval failures degrade to an empty
// context so a broken index never blocks the conversation.
func (s *ChatService) AddMessageAndRetrieveContext(ctx context.Context, conversationID, content string) (*TurnContext, error) {
	if strings.TrimSpace(content) == "" {
		return nil, model.ErrValidation
	}
	if _, err := s.store.AddMessage(ctx, conversationID, model.RoleUser, content); err != nil {
		return nil, err
	}
	msgs, err := s.store.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	results, err := s.index.Search(ctx, content, s.searchOpts)
	if err != nil {
		s.log.Warn().Err(err).Str("conversationId", conversationID).Msg("retrieval failed; continuing without context")
		results = nil
	}
	return &TurnContext{Messages: msgs, Results: results}, nil
}

// GenerateChatResponse runs one blocking chat turn: append the user message,
// retrieve context, generate a complete reply and persist it as an assistant
// message.
func (s *ChatService) GenerateChatResponse(ctx context.Context, conversationID, content string) (*model.Message, error) {
	start := time.Now()
	tc, err := s.AddMessageAndRetrieveContext(ctx, conversationID, content)
	if err != nil {
		s.observeTurn("blocking", "error", start)
		return nil, err
	}

	reply, err := s.gen.Generate(ctx, tc.Messages, tc.Results)
	if err != nil {
		s.observeTurn("blocking", "error", start)
		return nil, err
	}
	msg, err := s.store.AddMessage(ctx, conversationID, model.RoleAssistant, reply)
	if err != nil {
		s.observeTurn("blocking", "error", start)
		return nil, err
	}
	s.observeTurn("blocking", "ok", start)
	return msg, nil
}

// StreamChatResponse runs one streaming chat turn. The returned Turn carries
// the assistant placeholder id and the ordered event channel; the adapter
// owns persistence of the accumulating content.
func (s *ChatService) StreamChatResponse(ctx context.Context, conversationID, content string) (*stream.Turn, error) {
	start := time.Now()
	tc, err := s.AddMessageAndRetrieveContext(ctx, conversationID, content)
	if err != nil {
		s.observeTurn("streaming", "error", start)
		return nil, err
	}

	src, err := s.gen.GenerateStream(ctx, tc.Messages, tc.Results)
	if err != nil {
		s.observeTurn("streaming", "error", start)
		return nil, err
	}
	turn, err := s.streams.Run(ctx, conversationID, src)
	if err != nil {
		s.observeTurn("streaming", "error", start)
		return nil, err
	}
	s.observeTurn("streaming", "ok", start)
	return turn, nil
}

// AddDocument indexes one document for later retrieval.
func (s *ChatService) AddDocument(ctx context.Context, content string, metadata map[string]interface{}) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", model.ErrValidation
	}
	id, err := s.index.Add(ctx, content, metadata)
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.DocumentsAddedTotal.Inc()
	}
	return id, nil
}

// SearchDocuments exposes raw similarity search. Zero limit and threshold
// fall back to the service-wide search options.
func (s *ChatService) SearchDocuments(ctx context.Context, query string, opts vectorindex.SearchOptions) ([]model.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, model.ErrValidation
	}
	if opts.Limit <= 0 {
		opts.Limit = s.searchOpts.Limit
	}
	if opts.Threshold <= 0 {
		opts.Threshold = s.searchOpts.Threshold
	}
	start := time.Now()
	results, err := s.index.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SearchRequestsTotal.Inc()
		s.metrics.SearchDuration.Observe(time.Since(start).Seconds())
		s.metrics.SearchResultsTotal.Add(float64(len(results)))
	}
	return results, nil
}

func (s *ChatService) observeTurn(mode, outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ChatTurnsTotal.WithLabelValues(mode, outcome).Inc()
	s.metrics.ChatTurnDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}
