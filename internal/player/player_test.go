package player

import (
	"testing"

	"github.com/google/uuid"
)

func TestJoinLeavePrune(t *testing.T) {
	m := NewManager()
	a, b := uuid.New(), uuid.New()
	m.Join(a, "alice")
	m.Join(b, "bob")

	online := m.Online()
	if len(online) != 2 || online[0] != a || online[1] != b {
		t.Fatalf("unexpected online order %v", online)
	}

	if !m.Leave(a) {
		t.Fatalf("leave of an online player should report true")
	}
	if m.Leave(a) {
		t.Fatalf("second leave should report false")
	}
	if m.IsOnline(a) || m.Count() != 1 {
		t.Fatalf("alice should be offline")
	}
	if m.Name(a) != "alice" {
		t.Fatalf("offline player name should still resolve, got %q", m.Name(a))
	}

	m.Prune()
	if _, ok := m.Get(a); ok {
		t.Fatalf("prune should forget offline players")
	}
	if len(m.Name(a)) != 8 {
		t.Fatalf("unknown players should get a short id, got %q", m.Name(a))
	}
}

func TestRejoinKeepsOrder(t *testing.T) {
	m := NewManager()
	a, b := uuid.New(), uuid.New()
	m.Join(a, "alice")
	m.Join(b, "bob")
	m.Leave(a)
	m.Join(a, "alice2")

	online := m.Online()
	if len(online) != 2 || online[0] != a {
		t.Fatalf("rejoined player should keep join order, got %v", online)
	}
	p, ok := m.Lookup("alice2")
	if !ok || p.ID != a {
		t.Fatalf("lookup by new name failed")
	}
}
