package service

import (
	"github.com/puyokura/pictochat/model"

	"golang.org/x/crypto/bcrypt"
)

// UserUpdate carries the optional profile fields for UpdateUser. Nil means
// leave the field alone.
type UserUpdate struct {
	Username *string
	Password *string
	Type     *model.UserType
}

// Register creates a new account and logs it in. The type defaults to a
// regular user when typ is empty.
func (s *Service) Register(username, password string, typ model.UserType) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserLocked(username) != nil {
		return nil, ErrDuplicateUsername
	}
	if typ == "" {
		typ = model.TypeUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Type:         typ,
		Friends:      []string{},
		RequestsSent: []string{},
		RequestsRecv: []string{},
		Photos:       []string{},
	}
	s.users = append(s.users, newUser)

	if err := s.saveUsersLocked(); err != nil {
		s.users = s.users[:len(s.users)-1] // Rollback
		return nil, err
	}

	prev := s.current
	s.current = username
	if err := s.saveCurrentLocked(); err != nil {
		s.current = prev
		return nil, err
	}

	cp := *newUser
	return &cp, nil
}

// Login checks the credentials and sets the session identity on success.
func (s *Service) Login(username, password string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUserLocked(username)
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	prev := s.current
	s.current = username
	if err := s.saveCurrentLocked(); err != nil {
		s.current = prev
		return nil, err
	}

	cp := *user
	return &cp, nil
}

// Logout clears the session identity.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current
	s.current = ""
	if err := s.saveCurrentLocked(); err != nil {
		s.current = prev
		return err
	}
	return nil
}

// CurrentUser resolves the session identity against the live registry on
// every call, so profile edits are always reflected. Returns nil when
// logged out or when the identity no longer resolves.
func (s *Service) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == "" {
		return nil
	}
	user := s.findUserLocked(s.current)
	if user == nil {
		return nil
	}
	cp := *user
	return &cp
}

// Users returns a snapshot of every account.
func (s *Service) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

// User returns a single account by name.
func (s *Service) User(username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.findUserLocked(username)
	if user == nil {
		return nil, ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

// UpdateUser edits a profile. A username change is an atomic rename: every
// friend edge, pending request, chat participant, message sender and the
// session identity that referenced the old name is rewritten in the same
// logical transaction. The full rewrite is computed on a cloned snapshot
// and only swapped in once every blob write succeeded.
func (s *Service) UpdateUser(oldUsername string, upd UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserLocked(oldUsername) == nil {
		return ErrUserNotFound
	}

	newName := oldUsername
	if upd.Username != nil && *upd.Username != "" {
		newName = *upd.Username
	}
	renamed := newName != oldUsername
	if renamed && s.findUserLocked(newName) != nil {
		return ErrDuplicateUsername
	}

	users := cloneUsers(s.users)
	chats := s.chats
	current := s.current
	if renamed {
		chats = cloneChats(s.chats)
		current = applyRename(users, chats, current, oldUsername, newName)
	}

	target := findUser(users, newName)
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		target.PasswordHash = string(hash)
	}
	if upd.Type != nil {
		target.Type = *upd.Type
	}

	prevUsers, prevChats, prevCurrent := s.users, s.chats, s.current
	s.users, s.chats, s.current = users, chats, current

	if err := s.saveUsersLocked(); err != nil {
		s.users, s.chats, s.current = prevUsers, prevChats, prevCurrent
		return err
	}
	if renamed {
		if err := s.saveChatsLocked(); err != nil {
			return err
		}
		if current != prevCurrent {
			if err := s.saveCurrentLocked(); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveUser deletes an account and cascades: the name is stripped from
// every other user's friend and request sets and from every chat's
// participant list, and chats left with no participants are pruned.
// Removing an unknown name is a no-op. The primitive is unconditional;
// keeping admins from deleting themselves is the caller's job.
func (s *Service) RemoveUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserLocked(username) == nil {
		return nil
	}

	users, chats := applyRemove(cloneUsers(s.users), cloneChats(s.chats), username)

	prevUsers, prevChats := s.users, s.chats
	s.users, s.chats = users, chats

	if err := s.saveUsersLocked(); err != nil {
		s.users, s.chats = prevUsers, prevChats
		return err
	}
	return s.saveChatsLocked()
}

// SavePhoto appends a captured image to the user's photo collection.
func (s *Service) SavePhoto(username, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUserLocked(username)
	if user == nil {
		return ErrUserNotFound
	}
	user.Photos = append(user.Photos, image)
	if err := s.saveUsersLocked(); err != nil {
		user.Photos = user.Photos[:len(user.Photos)-1]
		return err
	}
	return nil
}

// UpdateLocation replaces the user's last known position.
func (s *Service) UpdateLocation(username string, lat, lng float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUserLocked(username)
	if user == nil {
		return ErrUserNotFound
	}
	prev := user.Location
	user.Location = &model.Location{Lat: lat, Lng: lng}
	if err := s.saveUsersLocked(); err != nil {
		user.Location = prev
		return err
	}
	return nil
}

func findUser(users []*model.User, username string) *model.User {
	for _, u := range users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// applyRename rewrites every occurrence of oldName to newName across the
// snapshot and returns the (possibly rewritten) session identity. Pure with
// respect to the service: it touches only the slices it is handed.
func applyRename(users []*model.User, chats []*model.Chat, current, oldName, newName string) string {
	for _, u := range users {
		if u.Username == oldName {
			u.Username = newName
		}
		renameAll(u.Friends, oldName, newName)
		renameAll(u.RequestsSent, oldName, newName)
		renameAll(u.RequestsRecv, oldName, newName)
	}
	for _, c := range chats {
		renameAll(c.Participants, oldName, newName)
		for i := range c.Messages {
			if c.Messages[i].Sender == oldName {
				c.Messages[i].Sender = newName
			}
		}
	}
	if current == oldName {
		return newName
	}
	return current
}

// applyRemove drops the user record, strips the name from every relation
// set and participant list, and prunes chats that end up empty.
func applyRemove(users []*model.User, chats []*model.Chat, username string) ([]*model.User, []*model.Chat) {
	keptUsers := users[:0]
	for _, u := range users {
		if u.Username == username {
			continue
		}
		u.Friends = removeAll(u.Friends, username)
		u.RequestsSent = removeAll(u.RequestsSent, username)
		u.RequestsRecv = removeAll(u.RequestsRecv, username)
		keptUsers = append(keptUsers, u)
	}

	keptChats := chats[:0]
	for _, c := range chats {
		c.Participants = removeAll(c.Participants, username)
		if len(c.Participants) == 0 {
			continue
		}
		keptChats = append(keptChats, c)
	}
	return keptUsers, keptChats
}

func renameAll(names []string, oldName, newName string) {
	for i, n := range names {
		if n == oldName {
			names[i] = newName
		}
	}
}

func removeAll(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
