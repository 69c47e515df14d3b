package chatstore

import (
	"context"
	"errors"
	"testing"

	"github.com/contextforge/ragchat/internal/model"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	conv, err := s.Create(context.Background(), "Test")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("missing conversation id")
	}
	if conv.Title != "Test" {
		t.Fatalf("Title = %q", conv.Title)
	}
	if len(conv.Messages) != 0 {
		t.Fatalf("new conversation has %d messages", len(conv.Messages))
	}
	if !conv.CreatedAt.Equal(conv.UpdatedAt) {
		t.Fatal("CreatedAt != UpdatedAt on create")
	}

	got, err := s.Get(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != conv.ID {
		t.Fatalf("Get returned %q", got.ID)
	}
}

func TestMemoryStore_AppendOrdering(t *testing.T) {
	s := NewMemoryStore()
	conv, _ := s.Create(context.Background(), "ordering")

	contents := []string{"m1", "m2", "m3"}
	for _, c := range contents {
		if _, err := s.AddMessage(context.Background(), conv.ID, model.RoleUser, c); err != nil {
			t.Fatalf("AddMessage(%q): %v", c, err)
		}
	}

	msgs, err := s.GetMessages(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	for i, c := range contents {
		if msgs[i].Content != c {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Content, c)
		}
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()

	if _, err := s.AddMessage(context.Background(), "nonexistent-id", model.RoleUser, "hi"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("AddMessage err = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(context.Background(), "nonexistent-id"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetMessages(context.Background(), "nonexistent-id"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetMessages err = %v, want ErrNotFound", err)
	}
	if _, err := s.Update(context.Background(), "nonexistent-id", UpdateRequest{}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Update err = %v, want ErrNotFound", err)
	}
	// Delete of an unknown id is a no-op, not an error.
	if err := s.Delete(context.Background(), "nonexistent-id"); err != nil {
		t.Fatalf("Delete of unknown id: %v", err)
	}
}

func TestMemoryStore_InvalidRole(t *testing.T) {
	s := NewMemoryStore()
	conv, _ := s.Create(context.Background(), "roles")
	if _, err := s.AddMessage(context.Background(), conv.ID, model.Role("robot"), "hi"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestMemoryStore_ListInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		conv, _ := s.Create(context.Background(), title)
		ids = append(ids, conv.ID)
	}

	all, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, id := range ids {
		if all[i].ID != id {
			t.Errorf("all[%d] = %q, want %q", i, all[i].ID, id)
		}
	}

	two, err := s.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List(2): %v", err)
	}
	if len(two) != 2 || two[0].ID != ids[0] || two[1].ID != ids[1] {
		t.Fatalf("List(2) = %v", two)
	}
}

func TestMemoryStore_UpdateTitleAndMessages(t *testing.T) {
	s := NewMemoryStore()
	conv, _ := s.Create(context.Background(), "before")
	_, _ = s.AddMessage(context.Background(), conv.ID, model.RoleUser, "hi")

	title := "after"
	updated, err := s.Update(context.Background(), conv.ID, UpdateRequest{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "after" {
		t.Fatalf("Title = %q", updated.Title)
	}
	if len(updated.Messages) != 1 {
		t.Fatalf("title-only update touched messages: %d", len(updated.Messages))
	}
	if !updated.UpdatedAt.After(conv.UpdatedAt) && !updated.UpdatedAt.Equal(conv.UpdatedAt) {
		t.Fatal("UpdatedAt not bumped")
	}
}

func TestMemoryStore_UpdateMessageContent(t *testing.T) {
	s := NewMemoryStore()
	conv, _ := s.Create(context.Background(), "stream")
	msg, _ := s.AddMessage(context.Background(), conv.ID, model.RoleAssistant, "")

	if err := s.UpdateMessageContent(context.Background(), conv.ID, msg.ID, "partial text"); err != nil {
		t.Fatalf("UpdateMessageContent: %v", err)
	}
	msgs, _ := s.GetMessages(context.Background(), conv.ID)
	if msgs[0].Content != "partial text" {
		t.Fatalf("content = %q", msgs[0].Content)
	}

	err := s.UpdateMessageContent(context.Background(), conv.ID, "missing-message", "x")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ReadersGetCopies(t *testing.T) {
	s := NewMemoryStore()
	conv, _ := s.Create(context.Background(), "isolation")
	_, _ = s.AddMessage(context.Background(), conv.ID, model.RoleUser, "original")

	got, _ := s.Get(context.Background(), conv.ID)
	got.Messages[0].Content = "mutated by caller"
	got.Title = "mutated title"

	fresh, _ := s.Get(context.Background(), conv.ID)
	if fresh.Messages[0].Content != "original" {
		t.Fatal("caller mutation leaked into store")
	}
	if fresh.Title != "isolation" {
		t.Fatal("caller title mutation leaked into store")
	}
}

func TestMemoryStore_DeleteRemoves(t *testing.T) {
	s := NewMemoryStore()
	conv, _ := s.Create(context.Background(), "gone")
	if err := s.Delete(context.Background(), conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(context.Background(), conv.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
	all, _ := s.List(context.Background(), 0)
	if len(all) != 0 {
		t.Fatalf("List after delete = %d", len(all))
	}
}
