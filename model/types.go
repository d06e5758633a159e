package model

// UserType distinguishes admin accounts from regular ones.
type UserType string

const (
	TypeAdmin UserType = "admin"
	TypeUser  UserType = "user"
)

// Location is a last-known position. Last write wins, no history.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// User is an account record. The username is the primary key; every
// cross-reference (friend edges, pending requests, chat participants,
// message senders) stores it by name, so renames must rewrite all of them.
type User struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"password_hash"` // Stored as bcrypt hash
	Type         UserType `json:"type"`
	Friends      []string `json:"friends"`
	RequestsSent []string `json:"friend_requests_sent"`
	RequestsRecv []string `json:"friend_requests_received"`
	Photos       []string `json:"photos"` // Encoded image blobs, capture order

	Location *Location `json:"location,omitempty"`
}

// Message is one chat entry. Append-only; never edited or removed.
// Timestamp is the RFC 3339 capture time and is informational only;
// log order is authoritative.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Image     string `json:"image,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Chat is a conversation thread. Direct chats (IsGroup false) hold exactly
// two participants and are unique per unordered pair; group chats have no
// uniqueness constraint.
type Chat struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Participants []string  `json:"participants"`
	IsGroup      bool      `json:"is_group"`
	Messages     []Message `json:"messages"`
}

// IsMember reports whether username participates in the chat.
func (c *Chat) IsMember(username string) bool {
	for _, p := range c.Participants {
		if p == username {
			return true
		}
	}
	return false
}
