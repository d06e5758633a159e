package service

import (
	"time"

	"github.com/puyokura/pictochat/model"

	"github.com/google/uuid"
)

// GetOrCreateDirectChat returns the id of the non-group chat whose
// participants are exactly {a,b}, creating and persisting it on first
// contact. The pair is unordered: swapping the arguments finds the same
// chat.
func (s *Service) GetOrCreateDirectChat(a, b string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directChatLocked(a, b)
}

func (s *Service) directChatLocked(a, b string) (string, error) {
	for _, c := range s.chats {
		if !c.IsGroup && len(c.Participants) == 2 && c.IsMember(a) && c.IsMember(b) {
			return c.ID, nil
		}
	}

	chat := &model.Chat{
		ID:           uuid.NewString(),
		Participants: []string{a, b},
		Messages:     []model.Message{},
	}
	s.chats = append(s.chats, chat)
	if err := s.saveChatsLocked(); err != nil {
		s.chats = s.chats[:len(s.chats)-1]
		return "", err
	}
	return chat.ID, nil
}

// CreateGroupChat always creates a new chat, whatever its membership
// overlaps with. Callers include themselves in participants.
func (s *Service) CreateGroupChat(participants []string, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		name = "Group"
	}
	chat := &model.Chat{
		ID:           uuid.NewString(),
		Name:         name,
		Participants: append([]string{}, participants...),
		IsGroup:      true,
		Messages:     []model.Message{},
	}
	s.chats = append(s.chats, chat)
	if err := s.saveChatsLocked(); err != nil {
		s.chats = s.chats[:len(s.chats)-1]
		return "", err
	}
	return chat.ID, nil
}

// SendMessage appends to the chat's log with the capture time as
// timestamp. Text and image may each be empty; keeping at least one
// non-empty is the caller's job.
func (s *Service) SendMessage(chatID, sender, text, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findChatLocked(chatID)
	if chat == nil {
		return ErrChatNotFound
	}
	chat.Messages = append(chat.Messages, model.Message{
		Sender:    sender,
		Text:      text,
		Image:     image,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err := s.saveChatsLocked(); err != nil {
		chat.Messages = chat.Messages[:len(chat.Messages)-1]
		return err
	}
	return nil
}

// Chat returns a single thread by id.
func (s *Service) Chat(chatID string) (*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat := s.findChatLocked(chatID)
	if chat == nil {
		return nil, ErrChatNotFound
	}
	cp := *chat
	return &cp, nil
}

// ChatsFor returns every chat the user participates in, in store order.
func (s *Service) ChatsFor(username string) []model.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Chat
	for _, c := range s.chats {
		if c.IsMember(username) {
			out = append(out, *c)
		}
	}
	return out
}

// GalleryImages collects the user's own photos plus every image attached
// to a message in any of their chats, de-duplicated by exact content,
// first occurrence first.
func (s *Service) GalleryImages(username string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var images []string
	seen := make(map[string]bool)
	if user := s.findUserLocked(username); user != nil {
		for _, p := range user.Photos {
			if !seen[p] {
				seen[p] = true
				images = append(images, p)
			}
		}
	}
	for _, c := range s.chats {
		if !c.IsMember(username) {
			continue
		}
		for _, m := range c.Messages {
			if m.Image != "" && !seen[m.Image] {
				seen[m.Image] = true
				images = append(images, m.Image)
			}
		}
	}
	return images
}
