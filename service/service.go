package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/puyokura/pictochat/model"

	"golang.org/x/crypto/bcrypt"
)

// Service owns the three persisted collections (users, chats, current
// session identity) and is the single writer for all of them. Every
// operation takes the service-wide lock for its whole read-modify-write
// sequence, and each collection is persisted as one whole blob.
type Service struct {
	mu      sync.RWMutex
	blob    BlobStore
	users   []*model.User
	chats   []*model.Chat
	current string // session identity, "" when logged out
}

func New(blob BlobStore) *Service {
	return &Service{blob: blob}
}

// Load reads the persisted collections into memory. Absent blobs mean
// empty collections and a logged-out session.
func (s *Service) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.blob.Get(blobUsers)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &s.users); err != nil {
			return fmt.Errorf("load users: %w", err)
		}
	}

	data, ok, err = s.blob.Get(blobChats)
	if err != nil {
		return fmt.Errorf("load chats: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &s.chats); err != nil {
			return fmt.Errorf("load chats: %w", err)
		}
	}

	data, ok, err = s.blob.Get(blobCurrent)
	if err != nil {
		return fmt.Errorf("load current user: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &s.current); err != nil {
			return fmt.Errorf("load current user: %w", err)
		}
	}
	return nil
}

// Seed creates the default admin/admin and user/user accounts when the
// registry is empty. Nobody is logged in afterwards.
func (s *Service) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) > 0 {
		return nil
	}
	for _, acc := range []struct {
		name string
		typ  model.UserType
	}{
		{"admin", model.TypeAdmin},
		{"user", model.TypeUser},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.name), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		s.users = append(s.users, &model.User{
			Username:     acc.name,
			PasswordHash: string(hash),
			Type:         acc.typ,
			Friends:      []string{},
			RequestsSent: []string{},
			RequestsRecv: []string{},
			Photos:       []string{},
		})
	}
	if err := s.saveUsersLocked(); err != nil {
		s.users = nil
		return err
	}
	return nil
}

// Save helpers. Must be called with the lock held. Each marshals its whole
// collection and replaces the blob in one write.

func (s *Service) saveUsersLocked() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	if err := s.blob.Set(blobUsers, data); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

func (s *Service) saveChatsLocked() error {
	data, err := json.MarshalIndent(s.chats, "", "  ")
	if err != nil {
		return fmt.Errorf("save chats: %w", err)
	}
	if err := s.blob.Set(blobChats, data); err != nil {
		return fmt.Errorf("save chats: %w", err)
	}
	return nil
}

func (s *Service) saveCurrentLocked() error {
	if s.current == "" {
		if err := s.blob.Delete(blobCurrent); err != nil {
			return fmt.Errorf("save current user: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(s.current)
	if err != nil {
		return fmt.Errorf("save current user: %w", err)
	}
	if err := s.blob.Set(blobCurrent, data); err != nil {
		return fmt.Errorf("save current user: %w", err)
	}
	return nil
}

func (s *Service) findUserLocked(username string) *model.User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *Service) findChatLocked(id string) *model.Chat {
	for _, c := range s.chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Deep copies. Cascading operations (rename, remove) mutate a clone and
// swap it in only after every blob write succeeded, so a persistence
// failure never leaves the in-memory state half-rewritten.

func cloneUsers(users []*model.User) []*model.User {
	out := make([]*model.User, 0, len(users))
	for _, u := range users {
		cp := *u
		cp.Friends = append([]string{}, u.Friends...)
		cp.RequestsSent = append([]string{}, u.RequestsSent...)
		cp.RequestsRecv = append([]string{}, u.RequestsRecv...)
		cp.Photos = append([]string{}, u.Photos...)
		if u.Location != nil {
			loc := *u.Location
			cp.Location = &loc
		}
		out = append(out, &cp)
	}
	return out
}

func cloneChats(chats []*model.Chat) []*model.Chat {
	out := make([]*model.Chat, 0, len(chats))
	for _, c := range chats {
		cp := *c
		cp.Participants = append([]string{}, c.Participants...)
		cp.Messages = append([]model.Message{}, c.Messages...)
		out = append(out, &cp)
	}
	return out
}
