package service

// pairState is the relation between an unordered pair of users. The
// persisted form is the two redundant per-user sets; this is the one place
// that folds them back into a single value so every transition check reads
// the same way.
type pairState int

const (
	pairNone pairState = iota
	pairPending
	pairFriends
)

// pairStateLocked returns the state for {a,b} and, for pairPending, the
// username that sent the request.
func (s *Service) pairStateLocked(a, b string) (pairState, string) {
	ua := s.findUserLocked(a)
	if ua == nil {
		return pairNone, ""
	}
	if contains(ua.Friends, b) {
		return pairFriends, ""
	}
	if contains(ua.RequestsSent, b) {
		return pairPending, a
	}
	if contains(ua.RequestsRecv, b) {
		return pairPending, b
	}
	return pairNone, ""
}

// SendFriendRequest records a pending from→to edge on both endpoints.
// Fails when the pair is the same user, already friends, or already has a
// pending request in either direction.
func (s *Service) SendFriendRequest(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == to {
		return ErrInvalidRequest
	}
	sender := s.findUserLocked(from)
	target := s.findUserLocked(to)
	if sender == nil || target == nil {
		return ErrUserNotFound
	}
	if state, _ := s.pairStateLocked(from, to); state != pairNone {
		return ErrInvalidRequest
	}

	sender.RequestsSent = append(sender.RequestsSent, to)
	target.RequestsRecv = append(target.RequestsRecv, from)
	if err := s.saveUsersLocked(); err != nil {
		sender.RequestsSent = sender.RequestsSent[:len(sender.RequestsSent)-1]
		target.RequestsRecv = target.RequestsRecv[:len(target.RequestsRecv)-1]
		return err
	}
	return nil
}

// AcceptFriendRequest turns a pending requester→current edge into a
// symmetric friendship and returns the id of the direct chat for the pair,
// creating it when it does not exist yet. Accepting with no pending edge is
// a silent no-op (duplicate UI triggers), returning an empty id.
func (s *Service) AcceptFriendRequest(current, requester string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUserLocked(current)
	friend := s.findUserLocked(requester)
	if user == nil || friend == nil {
		return "", ErrUserNotFound
	}
	state, from := s.pairStateLocked(current, requester)
	if state != pairPending || from != requester {
		return "", nil
	}

	user.RequestsRecv = removeAll(user.RequestsRecv, requester)
	friend.RequestsSent = removeAll(friend.RequestsSent, current)
	user.Friends = append(user.Friends, requester)
	friend.Friends = append(friend.Friends, current)
	if err := s.saveUsersLocked(); err != nil {
		return "", err
	}

	return s.directChatLocked(current, requester)
}

// RejectFriendRequest drops the pending requester→current edge from both
// sides without creating friendship or a chat. No-op when nothing is
// pending.
func (s *Service) RejectFriendRequest(current, requester string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUserLocked(current)
	friend := s.findUserLocked(requester)
	if user == nil || friend == nil {
		return ErrUserNotFound
	}
	state, from := s.pairStateLocked(current, requester)
	if state != pairPending || from != requester {
		return nil
	}

	user.RequestsRecv = removeAll(user.RequestsRecv, requester)
	friend.RequestsSent = removeAll(friend.RequestsSent, current)
	return s.saveUsersLocked()
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
