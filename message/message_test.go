package message

import (
	"testing"
	"time"
)

func TestNewMessage(t *testing.T) {
	msg := New(RoleUser, "hello")
	if msg.Role != RoleUser {
		t.Errorf("Expected role user, got %s", msg.Role)
	}
	if msg.Content != "hello" {
		t.Errorf("Expected content hello, got %s", msg.Content)
	}
	if msg.ID == "" {
		t.Error("Expected non-empty ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := New(RoleUser, "x").ID
		if _, ok := seen[id]; ok {
			t.Fatalf("Duplicate ID %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestCloneIndependence(t *testing.T) {
	msg := New(RoleAssistant, "original")
	cloned := Clone(msg)
	cloned.Content = "changed"
	if msg.Content != "original" {
		t.Errorf("Clone mutation leaked into original: %s", msg.Content)
	}
	if Clone(nil) != nil {
		t.Error("Expected nil clone of nil message")
	}
}

func TestSortChronological(t *testing.T) {
	base := time.Now()
	msgs := []*Message{
		{ID: "c", CreatedAt: base.Add(2 * time.Second)},
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Second)},
	}
	SortChronological(msgs)
	for i, want := range []string{"a", "b", "c"} {
		if msgs[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, msgs[i].ID)
		}
	}
}

func TestLastByRole(t *testing.T) {
	msgs := []*Message{
		New(RoleUser, "first"),
		New(RoleAssistant, "reply one"),
		New(RoleUser, "second"),
		New(RoleAssistant, "reply two"),
	}
	last := LastByRole(msgs, RoleAssistant)
	if last == nil || last.Content != "reply two" {
		t.Errorf("Expected reply two, got %+v", last)
	}
	if LastByRole(nil, RoleUser) != nil {
		t.Error("Expected nil for empty log")
	}
}

func TestUserContents(t *testing.T) {
	msgs := []*Message{
		New(RoleUser, "one"),
		New(RoleAssistant, "ignored"),
		New(RoleUser, "two"),
	}
	contents := UserContents(msgs)
	if len(contents) != 2 || contents[0] != "one" || contents[1] != "two" {
		t.Errorf("Unexpected user contents: %v", contents)
	}
}
