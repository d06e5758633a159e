package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/puyokura/pictochat/model"
	"github.com/puyokura/pictochat/service"
)

type view int

const (
	viewLogin view = iota
	viewRegister
	viewChats
	viewFriends
	viewUsers
	viewGallery
	viewChat
)

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#505050"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	tabActive   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFDF5")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	tabIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB454"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	imageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	adminStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

// friendEntry is one row of the friends tab: either a pending incoming
// request or an established friend.
type friendEntry struct {
	name    string
	pending bool
}

type modelState struct {
	svc *service.Service

	view     view
	username textinput.Model
	password textinput.Model
	input    textinput.Model
	viewport viewport.Model

	chats   []model.Chat
	friends []friendEntry
	users   []model.User
	gallery []string
	cursor  int
	chatID  string

	status string
	width  int
	height int
	ready  bool
}

func initialModel(svc *service.Service) modelState {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 24
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 64
	password.Width = 24
	password.EchoMode = textinput.EchoPassword

	input := textinput.New()
	input.Placeholder = "Type a message, or /help"
	input.CharLimit = 256
	input.Width = 20

	return modelState{
		svc:      svc,
		view:     viewLogin,
		username: username,
		password: password,
		input:    input,
	}
}

func (m modelState) Init() tea.Cmd {
	return textinput.Blink
}

// me returns the session identity, resolved live so profile edits (and
// renames) are always reflected.
func (m modelState) me() *model.User {
	return m.svc.CurrentUser()
}

func (m modelState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		footerHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.SetContent("")
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.input.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.view {
		case viewLogin, viewRegister:
			return m.updateAuth(msg)
		case viewChat:
			return m.updateChat(msg)
		default:
			return m.updateTabs(msg)
		}
	}
	return m, nil
}

func (m modelState) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyUp, tea.KeyDown:
		if m.username.Focused() {
			m.username.Blur()
			m.password.Focus()
		} else {
			m.password.Blur()
			m.username.Focus()
		}
		return m, nil

	case tea.KeyCtrlR:
		m.view = viewRegister
		m.status = ""
		return m, nil

	case tea.KeyCtrlL:
		m.view = viewLogin
		m.status = ""
		return m, nil

	case tea.KeyEnter:
		name := strings.TrimSpace(m.username.Value())
		pass := m.password.Value()
		if name == "" || pass == "" {
			m.status = "Username and password are required."
			return m, nil
		}
		if m.view == viewLogin {
			if _, err := m.svc.Login(name, pass); err != nil {
				m.status = "Login failed: " + err.Error()
				log.Printf("Login failed for %s: %v", name, err)
				return m, nil
			}
			log.Printf("User logged in: %s", name)
		} else {
			if _, err := m.svc.Register(name, pass, ""); err != nil {
				m.status = "Registration failed: " + err.Error()
				return m, nil
			}
			log.Printf("User registered: %s", name)
		}
		m.username.SetValue("")
		m.password.SetValue("")
		m.password.Blur()
		m.username.Focus()
		m.status = ""
		return m.goTab(viewChats)
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// goTab switches to a list tab and reloads its data from the service.
func (m modelState) goTab(v view) (tea.Model, tea.Cmd) {
	m.view = v
	m.cursor = 0
	m.refresh()
	return m, nil
}

func (m *modelState) refresh() {
	me := m.me()
	if me == nil {
		return
	}
	switch m.view {
	case viewChats:
		m.chats = m.svc.ChatsFor(me.Username)
	case viewFriends:
		m.friends = m.friends[:0]
		for _, name := range me.RequestsRecv {
			m.friends = append(m.friends, friendEntry{name: name, pending: true})
		}
		for _, name := range me.Friends {
			m.friends = append(m.friends, friendEntry{name: name})
		}
	case viewUsers:
		m.users = m.users[:0]
		for _, u := range m.svc.Users() {
			if u.Username != me.Username {
				m.users = append(m.users, u)
			}
		}
	case viewGallery:
		m.gallery = m.svc.GalleryImages(me.Username)
	}
	if m.cursor >= m.listLen() {
		m.cursor = 0
	}
}

func (m modelState) listLen() int {
	switch m.view {
	case viewChats:
		return len(m.chats)
	case viewFriends:
		return len(m.friends)
	case viewUsers:
		return len(m.users)
	case viewGallery:
		return len(m.gallery)
	}
	return 0
}

func (m modelState) updateTabs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	me := m.me()
	if me == nil {
		return m.logout()
	}

	switch msg.String() {
	case "1":
		return m.goTab(viewChats)
	case "2":
		return m.goTab(viewFriends)
	case "3":
		return m.goTab(viewUsers)
	case "4":
		return m.goTab(viewGallery)

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}

	case "ctrl+o":
		if err := m.svc.Logout(); err != nil {
			m.status = "Logout failed: " + err.Error()
			return m, nil
		}
		return m.logout()

	case "enter":
		switch m.view {
		case viewChats:
			if m.cursor < len(m.chats) {
				return m.openChat(m.chats[m.cursor].ID)
			}
		case viewFriends:
			if m.cursor < len(m.friends) && !m.friends[m.cursor].pending {
				id, err := m.svc.GetOrCreateDirectChat(me.Username, m.friends[m.cursor].name)
				if err != nil {
					m.status = err.Error()
					return m, nil
				}
				return m.openChat(id)
			}
		}

	case "a":
		if m.view == viewFriends && m.cursor < len(m.friends) && m.friends[m.cursor].pending {
			name := m.friends[m.cursor].name
			if _, err := m.svc.AcceptFriendRequest(me.Username, name); err != nil {
				m.status = err.Error()
			} else {
				m.status = "You are now friends with " + name
				log.Printf("%s accepted friend request from %s", me.Username, name)
			}
			m.refresh()
		}
	case "r":
		if m.view == viewFriends && m.cursor < len(m.friends) && m.friends[m.cursor].pending {
			name := m.friends[m.cursor].name
			if err := m.svc.RejectFriendRequest(me.Username, name); err != nil {
				m.status = err.Error()
			} else {
				m.status = "Rejected request from " + name
			}
			m.refresh()
		}

	case "f":
		if m.view == viewUsers && m.cursor < len(m.users) {
			name := m.users[m.cursor].Username
			if err := m.svc.SendFriendRequest(me.Username, name); err != nil {
				m.status = "Request failed: " + err.Error()
			} else {
				m.status = "Friend request sent to " + name
			}
			m.refresh()
		}
	case "d":
		if m.view == viewUsers && m.cursor < len(m.users) {
			if me.Type != model.TypeAdmin {
				m.status = "Only admins can remove users."
				return m, nil
			}
			name := m.users[m.cursor].Username
			if err := m.svc.RemoveUser(name); err != nil {
				m.status = "Remove failed: " + err.Error()
			} else {
				m.status = "Removed " + name
				log.Printf("Admin %s removed user %s", me.Username, name)
			}
			m.refresh()
		}
	}
	return m, nil
}

func (m modelState) logout() (tea.Model, tea.Cmd) {
	m.view = viewLogin
	m.status = ""
	m.chatID = ""
	m.input.Blur()
	m.username.Focus()
	return m, textinput.Blink
}

func (m modelState) openChat(id string) (tea.Model, tea.Cmd) {
	m.chatID = id
	m.view = viewChat
	m.status = ""
	m.input.Focus()
	m.renderChatLog()
	return m, textinput.Blink
}

func (m modelState) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		return m.goTab(viewChats)

	case tea.KeyEnter:
		content := m.input.Value()
		if content == "" {
			return m, nil
		}
		m.input.SetValue("")

		if strings.HasPrefix(content, "/") {
			return m.handleCommand(content)
		}

		me := m.me()
		if me == nil {
			return m.logout()
		}
		if err := m.svc.SendMessage(m.chatID, me.Username, content, ""); err != nil {
			m.status = "Send failed: " + err.Error()
			return m, nil
		}
		m.renderChatLog()
		return m, nil
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.input, tiCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *modelState) renderChatLog() {
	chat, err := m.svc.Chat(m.chatID)
	if err != nil {
		m.viewport.SetContent(statusStyle.Render(err.Error()))
		return
	}
	lines := make([]string, 0, len(chat.Messages))
	for _, msg := range chat.Messages {
		lines = append(lines, formatMessage(msg))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

func formatMessage(msg model.Message) string {
	// Format: │ Time  │ Sender       │ Message
	timeStr := "--:--"
	if t, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
		timeStr = t.Local().Format("15:04")
	}

	sender := msg.Sender
	if sender == "" {
		sender = "Unknown"
	}
	if len(sender) > 12 {
		sender = sender[:12]
	}
	sender = fmt.Sprintf("%-12s", sender)

	text := msg.Text
	if msg.Image != "" {
		marker := imageStyle.Render("[image]")
		if text == "" {
			text = marker
		} else {
			text += " " + marker
		}
	}

	vLine := borderStyle.Render("│")
	return fmt.Sprintf("%s %s %s %s %s %s", vLine, timeStr, vLine, sender, vLine, text)
}

func (m modelState) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	switch m.view {
	case viewLogin, viewRegister:
		return m.viewAuth()
	case viewChat:
		return m.viewChatScreen()
	default:
		return m.viewTabs()
	}
}

func (m modelState) viewAuth() string {
	title := "Log in"
	help := "enter: log in • ctrl+r: register • ctrl+c: quit"
	if m.view == viewRegister {
		title = "Create account"
		help = "enter: register • ctrl+l: back to login • ctrl+c: quit"
	}

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("PictoChat — "+title) + "\n\n")
	b.WriteString("  " + m.username.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n\n")
	if m.status != "" {
		b.WriteString("  " + statusStyle.Render(m.status) + "\n\n")
	}
	b.WriteString("  " + helpStyle.Render(help))
	return b.String()
}

func (m modelState) tabBar() string {
	names := []string{"1 Chats", "2 Friends", "3 Users", "4 Gallery"}
	tabs := []view{viewChats, viewFriends, viewUsers, viewGallery}
	parts := make([]string, len(names))
	for i, name := range names {
		if m.view == tabs[i] {
			parts[i] = tabActive.Render(name)
		} else {
			parts[i] = tabIdle.Render(name)
		}
	}
	return strings.Join(parts, " ")
}

func (m modelState) chatLabel(c model.Chat) string {
	if c.IsGroup {
		return fmt.Sprintf("%s (%d members)", c.Name, len(c.Participants))
	}
	me := m.me()
	for _, p := range c.Participants {
		if me == nil || p != me.Username {
			return p
		}
	}
	return "(empty)"
}

func (m modelState) viewTabs() string {
	var lines []string
	switch m.view {
	case viewChats:
		for _, c := range m.chats {
			label := m.chatLabel(c)
			if n := len(c.Messages); n > 0 {
				label += helpStyle.Render(fmt.Sprintf("  %d messages", n))
			}
			lines = append(lines, label)
		}
	case viewFriends:
		for _, f := range m.friends {
			if f.pending {
				lines = append(lines, f.name+" "+statusStyle.Render("(wants to be friends)"))
			} else {
				lines = append(lines, f.name)
			}
		}
	case viewUsers:
		for _, u := range m.users {
			label := u.Username
			if u.Type == model.TypeAdmin {
				label += " " + adminStyle.Render("[admin]")
			}
			lines = append(lines, label)
		}
	case viewGallery:
		for _, img := range m.gallery {
			if len(img) > 40 {
				img = img[:40] + "…"
			}
			lines = append(lines, imageStyle.Render("[image] ")+img)
		}
	}

	var b strings.Builder
	b.WriteString(m.tabBar() + "\n\n")
	if len(lines) == 0 {
		b.WriteString("  " + helpStyle.Render("(nothing here yet)") + "\n")
	}
	for i, line := range lines {
		cursor := "  "
		if i == m.cursor {
			cursor = titleStyle.Render("> ")
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render(m.tabHelp()))
	return b.String()
}

func (m modelState) tabHelp() string {
	switch m.view {
	case viewFriends:
		return "a: accept • r: reject • enter: open chat • 1-4: tabs • ctrl+o: log out • ctrl+c: quit"
	case viewUsers:
		return "f: send friend request • d: remove (admin) • 1-4: tabs • ctrl+o: log out • ctrl+c: quit"
	case viewGallery:
		return "1-4: tabs • ctrl+o: log out • ctrl+c: quit"
	default:
		return "enter: open chat • 1-4: tabs • ctrl+o: log out • ctrl+c: quit"
	}
}

func (m modelState) viewChatScreen() string {
	chat, err := m.svc.Chat(m.chatID)
	header := titleStyle.Render("PictoChat")
	if err == nil {
		header = titleStyle.Render(m.chatLabel(*chat))
	}
	status := m.status
	if status == "" {
		status = helpStyle.Render("esc: back • /help for commands")
	} else {
		status = statusStyle.Render(status)
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		borderStyle.Render(strings.Repeat("─", max(m.viewport.Width, 1))),
		m.input.View(),
		status,
	)
}
