package service

import (
	"errors"
	"testing"

	"github.com/puyokura/pictochat/model"
)

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	mustRegister(t, svc, "alice", "pw1")

	if _, err := svc.Register("alice", "other", ""); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("Register duplicate: err = %v, want ErrDuplicateUsername", err)
	}
	if got := len(svc.Users()); got != 1 {
		t.Fatalf("got %d users, want 1", got)
	}
}

func TestRegisterPersistFailureRollsBack(t *testing.T) {
	svc := New(&failStore{MemStore: NewMemStore(), failKeys: map[string]bool{blobUsers: true}})

	if _, err := svc.Register("alice", "pw1", ""); !errors.Is(err, errDiskFull) {
		t.Fatalf("Register: err = %v, want disk full", err)
	}
	if got := len(svc.Users()); got != 0 {
		t.Fatalf("got %d users after failed register, want 0", got)
	}
	if svc.CurrentUser() != nil {
		t.Fatal("current user set after failed register")
	}
}

func TestLoginCredentials(t *testing.T) {
	svc := newTestService(t)
	mustRegister(t, svc, "alice", "pw1")
	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := svc.Login("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("nobody", "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login unknown user: err = %v, want ErrInvalidCredentials", err)
	}
	if svc.CurrentUser() != nil {
		t.Fatal("current user set after failed logins")
	}

	user, err := svc.Login("alice", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("logged in as %q, want alice", user.Username)
	}
	cur := svc.CurrentUser()
	if cur == nil || cur.Username != "alice" {
		t.Fatalf("current user = %+v, want alice", cur)
	}
}

func TestCurrentUserIsLiveLookup(t *testing.T) {
	svc := newTestService(t)
	mustRegister(t, svc, "alice", "pw1")

	typ := model.TypeAdmin
	if err := svc.UpdateUser("alice", UserUpdate{Type: &typ}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	cur := svc.CurrentUser()
	if cur == nil || cur.Type != model.TypeAdmin {
		t.Fatalf("current user = %+v, want live admin record", cur)
	}

	if err := svc.RemoveUser("alice"); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	if svc.CurrentUser() != nil {
		t.Fatal("current user resolved after its record was removed")
	}
}

func TestRenamePropagatesEverywhere(t *testing.T) {
	svc := newTestService(t)
	mustRegister(t, svc, "alice", "pw1")
	mustRegister(t, svc, "bob", "pw2")
	mustRegister(t, svc, "carol", "pw3")

	// bob is friends with alice, has a pending request to carol, and has
	// sent a message in the direct chat.
	if err := svc.SendFriendRequest("alice", "bob"); err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	chatID, err := svc.AcceptFriendRequest("bob", "alice")
	if err != nil {
		t.Fatalf("AcceptFriendRequest: %v", err)
	}
	if err := svc.SendFriendRequest("bob", "carol"); err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	if err := svc.SendMessage(chatID, "bob", "hello", ""); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := svc.Login("bob", "pw2"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	newName := "bobby"
	if err := svc.UpdateUser("bob", UserUpdate{Username: &newName}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	if _, err := svc.User("bob"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("User(bob) after rename: err = %v, want ErrUserNotFound", err)
	}
	alice, err := svc.User("alice")
	if err != nil {
		t.Fatalf("User(alice): %v", err)
	}
	if !contains(alice.Friends, "bobby") || contains(alice.Friends, "bob") {
		t.Errorf("alice.Friends = %v, want bobby only", alice.Friends)
	}
	carol, err := svc.User("carol")
	if err != nil {
		t.Fatalf("User(carol): %v", err)
	}
	if !contains(carol.RequestsRecv, "bobby") || contains(carol.RequestsRecv, "bob") {
		t.Errorf("carol.RequestsRecv = %v, want bobby only", carol.RequestsRecv)
	}

	chat, err := svc.Chat(chatID)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !chat.IsMember("bobby") || chat.IsMember("bob") {
		t.Errorf("chat participants = %v, want bobby only", chat.Participants)
	}
	if chat.Messages[0].Sender != "bobby" {
		t.Errorf("message sender = %q, want bobby", chat.Messages[0].Sender)
	}

	cur := svc.CurrentUser()
	if cur == nil || cur.Username != "bobby" {
		t.Fatalf("current user = %+v, want bobby", cur)
	}
}

func TestRenameToTakenUsernameFailsWithoutSideEffects(t *testing.T) {
	svc := newTestService(t)
	mustRegister(t, svc, "alice", "pw1")
	mustRegister(t, svc, "bob", "pw2")

	taken := "alice"
	if err := svc.UpdateUser("bob", UserUpdate{Username: &taken}); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("UpdateUser: err = %v, want ErrDuplicateUsername", err)
	}
	if _, err := svc.User("bob"); err != nil {
		t.Errorf("bob gone after failed rename: %v", err)
	}
}

func TestUpdatePasswordAndType(t *testing.T) {
	svc := newTestService(t)
	mustRegister(t, svc, "alice", "pw1")

	pw := "pw2"
	typ := model.TypeAdmin
	if err := svc.UpdateUser("alice", UserUpdate{Password: &pw, Type: &typ}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	if _, err := svc.Login("alice", "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still accepted: err = %v", err)
	}
	user, err := svc.Login("alice", "pw2")
	if err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
	if user.Type != model.TypeAdmin {
		t.Errorf("type = %q, want admin", user.Type)
	}
}

func TestRemoveUserCascades(t *testing.T) {
	svc := newTestService(t)
	mustRegister(t, svc, "alice", "pw1")
	mustRegister(t, svc, "bob", "pw2")
	mustRegister(t, svc, "carol", "pw3")

	if err := svc.SendFriendRequest("alice", "bob"); err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	directID, err := svc.AcceptFriendRequest("bob", "alice")
	if err != nil {
		t.Fatalf("AcceptFriendRequest: %v", err)
	}
	if err := svc.SendFriendRequest("bob", "carol"); err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	groupID, err := svc.CreateGroupChat([]string{"alice", "bob", "carol"}, "trio")
	if err != nil {
		t.Fatalf("CreateGroupChat: %v", err)
	}

	if err := svc.RemoveUser("bob"); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}

	if _, err := svc.User("bob"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("User(bob): err = %v, want ErrUserNotFound", err)
	}
	alice, _ := svc.User("alice")
	if contains(alice.Friends, "bob") {
		t.Errorf("alice.Friends still has bob: %v", alice.Friends)
	}
	carol, _ := svc.User("carol")
	if contains(carol.RequestsRecv, "bob") {
		t.Errorf("carol.RequestsRecv still has bob: %v", carol.RequestsRecv)
	}

	// The two-person direct chat kept its other participant.
	direct, err := svc.Chat(directID)
	if err != nil {
		t.Fatalf("Chat(direct): %v", err)
	}
	if len(direct.Participants) != 1 || direct.Participants[0] != "alice" {
		t.Errorf("direct participants = %v, want [alice]", direct.Participants)
	}
	group, err := svc.Chat(groupID)
	if err != nil {
		t.Fatalf("Chat(group): %v", err)
	}
	if group.IsMember("bob") || len(group.Participants) != 2 {
		t.Errorf("group participants = %v, want alice and carol", group.Participants)
	}

	// Removing an unknown user is a no-op.
	if err := svc.RemoveUser("bob"); err != nil {
		t.Errorf("RemoveUser (again): %v", err)
	}
}

func TestRemoveLastParticipantPrunesChat(t *testing.T) {
	svc := newTestService(t)
	mustRegister(t, svc, "alice", "pw1")
	mustRegister(t, svc, "bob", "pw2")
	chatID, err := svc.GetOrCreateDirectChat("alice", "bob")
	if err != nil {
		t.Fatalf("GetOrCreateDirectChat: %v", err)
	}

	if err := svc.RemoveUser("alice"); err != nil {
		t.Fatalf("RemoveUser(alice): %v", err)
	}
	if err := svc.RemoveUser("bob"); err != nil {
		t.Fatalf("RemoveUser(bob): %v", err)
	}
	if _, err := svc.Chat(chatID); !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("Chat after both removed: err = %v, want ErrChatNotFound", err)
	}
}

func TestSavePhotoAndLocation(t *testing.T) {
	svc := newTestService(t)
	mustRegister(t, svc, "alice", "pw1")

	if err := svc.SavePhoto("nobody", "img"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SavePhoto unknown user: err = %v, want ErrUserNotFound", err)
	}
	if err := svc.SavePhoto("alice", "img-1"); err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}
	if err := svc.SavePhoto("alice", "img-2"); err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}

	if err := svc.UpdateLocation("alice", 38.39, -0.51); err != nil {
		t.Fatalf("UpdateLocation: %v", err)
	}
	if err := svc.UpdateLocation("alice", 40.42, -3.70); err != nil {
		t.Fatalf("UpdateLocation: %v", err)
	}

	alice, err := svc.User("alice")
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if len(alice.Photos) != 2 || alice.Photos[0] != "img-1" {
		t.Errorf("photos = %v, want capture order", alice.Photos)
	}
	if alice.Location == nil || alice.Location.Lat != 40.42 {
		t.Errorf("location = %+v, want last write", alice.Location)
	}
}
