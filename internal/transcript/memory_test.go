package transcript

import (
	"testing"

	"github.com/chatdeck/chatdeck/internal/domain"
)

func TestMemoryLogAppendOrder(t *testing.T) {
	log := NewMemoryLog()

	for _, body := range []string{"a", "b", "c"} {
		if err := log.Append(&domain.Message{SessionID: "s1", Role: domain.RoleUser, Body: body}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	log.Append(&domain.Message{SessionID: "s2", Role: domain.RoleUser, Body: "other"})

	messages, err := log.Messages("s1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages", len(messages))
	}
	for i, want := range []string{"a", "b", "c"} {
		if messages[i].Body != want {
			t.Errorf("message %d = %q", i, messages[i].Body)
		}
	}
	if messages[0].ID == "" {
		t.Error("Append should assign an ID")
	}
}

func TestMemoryLogSessions(t *testing.T) {
	log := NewMemoryLog()

	session := &domain.Session{}
	if err := log.CreateSession(session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.ID == "" {
		t.Fatal("CreateSession should assign an ID")
	}

	got, err := log.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil || got.ID != session.ID {
		t.Errorf("got %+v", got)
	}
	if missing, _ := log.GetSession("nope"); missing != nil {
		t.Errorf("unknown session should be nil, got %+v", missing)
	}
}

func TestMemoryLogClear(t *testing.T) {
	log := NewMemoryLog()
	log.Append(&domain.Message{SessionID: "s1", Body: "x"})
	log.Append(&domain.Message{SessionID: "s2", Body: "y"})

	if err := log.Clear("s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if messages, _ := log.Messages("s1"); len(messages) != 0 {
		t.Errorf("s1 not cleared")
	}
	if messages, _ := log.Messages("s2"); len(messages) != 1 {
		t.Errorf("clear must not touch other sessions")
	}
}
