package chatstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contextforge/ragchat/internal/model"
)

// MemoryStore is the in-memory Store implementation. It is a process-wide
// singleton for the server's lifetime; conversations do not survive restarts.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*model.Conversation
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[string]*model.Conversation)}
}

func (s *MemoryStore) Create(_ context.Context, title string) (*model.Conversation, error) {
	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  []model.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[conv.ID] = conv
	s.order = append(s.order, conv.ID)
	return cloneConversation(conv), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, model.ErrNotFound)
	}
	return cloneConversation(conv), nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Conversation, 0, len(s.order))
	for _, id := range s.order {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, cloneConversation(s.convs[id]))
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, req UpdateRequest) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, model.ErrNotFound)
	}
	if req.Title != nil {
		conv.Title = *req.Title
	}
	if req.Messages != nil {
		conv.Messages = make([]model.Message, len(req.Messages))
		copy(conv.Messages, req.Messages)
	}
	conv.UpdatedAt = time.Now().UTC()
	return cloneConversation(conv), nil
}

// Delete removes the conversation. Deleting an unknown id is a no-op.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.convs[id]; !ok {
		return nil
	}
	delete(s.convs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) AddMessage(_ context.Context, id string, role model.Role, content string) (*model.Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q: %w", role, model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, model.ErrNotFound)
	}
	msg := model.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = msg.CreatedAt
	return &msg, nil
}

func (s *MemoryStore) UpdateMessageContent(_ context.Context, id, messageID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return fmt.Errorf("conversation %s: %w", id, model.ErrNotFound)
	}
	for i := range conv.Messages {
		if conv.Messages[i].ID == messageID {
			conv.Messages[i].Content = content
			conv.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("message %s in conversation %s: %w", messageID, id, model.ErrNotFound)
}

func (s *MemoryStore) GetMessages(_ context.Context, id string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, model.ErrNotFound)
	}
	out := make([]model.Message, len(conv.Messages))
	copy(out, conv.Messages)
	return out, nil
}

// cloneConversation copies the aggregate so callers never alias the stored
// messages slice.
func cloneConversation(c *model.Conversation) *model.Conversation {
	out := *c
	out.Messages = make([]model.Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}
