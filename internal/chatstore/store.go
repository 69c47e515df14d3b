// Package chatstore owns conversation aggregates and message ordering.
package chatstore

import (
	"context"

	"github.com/contextforge/ragchat/internal/model"
)

// UpdateRequest carries the mutable fields of a conversation. Nil fields are
// left untouched; a non-nil Messages replaces the whole message array.
type UpdateRequest struct {
	Title    *string
	Messages []model.Message
}

// Store persists conversation aggregates. Operations on a single
// conversation are atomic: readers always observe a fully appended message
// array, and every mutation bumps UpdatedAt.
//
// Get, Update, AddMessage, UpdateMessageContent and GetMessages return
// model.ErrNotFound for unknown conversations. Delete is idempotent.
type Store interface {
	Create(ctx context.Context, title string) (*model.Conversation, error)
	Get(ctx context.Context, id string) (*model.Conversation, error)
	// List returns conversations in insertion order, truncated to limit when
	// limit > 0.
	List(ctx context.Context, limit int) ([]*model.Conversation, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*model.Conversation, error)
	Delete(ctx context.Context, id string) error
	AddMessage(ctx context.Context, id string, role model.Role, content string) (*model.Message, error)
	// UpdateMessageContent rewrites one message's content in place. Only the
	// streaming path uses this, to fill an assistant placeholder.
	UpdateMessageContent(ctx context.Context, id, messageID, content string) error
	GetMessages(ctx context.Context, id string) ([]model.Message, error)
}
