package service

import (
	"errors"
	"testing"

	"github.com/puyokura/pictochat/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	svc := New(fs)
	if err := svc.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc
}

func mustRegister(t *testing.T, svc *Service, username, password string) {
	t.Helper()
	if _, err := svc.Register(username, password, ""); err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
}

// failStore fails every Set for keys in failKeys, otherwise behaves like
// MemStore. Used to exercise persistence-failure rollback.
type failStore struct {
	*MemStore
	failKeys map[string]bool
}

var errDiskFull = errors.New("disk full")

func (s *failStore) Set(key string, data []byte) error {
	if s.failKeys[key] {
		return errDiskFull
	}
	return s.MemStore.Set(key, data)
}

func TestLoadRestoresState(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	svc := New(fs)
	if err := svc.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	mustRegister(t, svc, "alice", "pw1")
	mustRegister(t, svc, "bob", "pw2")
	chatID, err := svc.GetOrCreateDirectChat("alice", "bob")
	if err != nil {
		t.Fatalf("GetOrCreateDirectChat: %v", err)
	}
	if err := svc.SendMessage(chatID, "alice", "hi", ""); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	// A fresh service over the same directory sees everything.
	reloaded := New(fs)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load (reload): %v", err)
	}
	if got := len(reloaded.Users()); got != 2 {
		t.Fatalf("got %d users after reload, want 2", got)
	}
	chat, err := reloaded.Chat(chatID)
	if err != nil {
		t.Fatalf("Chat after reload: %v", err)
	}
	if len(chat.Messages) != 1 || chat.Messages[0].Text != "hi" {
		t.Fatalf("unexpected messages after reload: %+v", chat.Messages)
	}
	cur := reloaded.CurrentUser()
	if cur == nil || cur.Username != "bob" {
		t.Fatalf("current user after reload = %+v, want bob", cur)
	}
}

func TestSeedCreatesDefaultAccounts(t *testing.T) {
	svc := newTestService(t)
	if err := svc.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	admin, err := svc.User("admin")
	if err != nil {
		t.Fatalf("User(admin): %v", err)
	}
	if admin.Type != model.TypeAdmin {
		t.Errorf("admin type = %q, want admin", admin.Type)
	}
	if _, err := svc.Login("user", "user"); err != nil {
		t.Errorf("Login(user, user): %v", err)
	}

	// Seeding again or over an existing registry does nothing.
	if err := svc.Seed(); err != nil {
		t.Fatalf("Seed (second): %v", err)
	}
	if got := len(svc.Users()); got != 2 {
		t.Errorf("got %d users after reseed, want 2", got)
	}
}
