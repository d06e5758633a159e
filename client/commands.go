package main

import (
	"log"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/puyokura/pictochat/model"
	"github.com/puyokura/pictochat/service"
)

const helpText = "Commands: /photo <data> • /location <lat> <lng> • /group <name> <user...> • /rename <old> <new> • /passwd <pass> • /logout • /help"

// handleCommand runs a slash command typed into the chat input. /photo and
// /location stand in for the camera and geolocation capture layer.
func (m modelState) handleCommand(cmdLine string) (tea.Model, tea.Cmd) {
	me := m.me()
	if me == nil {
		return m.logout()
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return m, nil
	}
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/help":
		m.status = helpText

	case "/logout":
		if err := m.svc.Logout(); err != nil {
			m.status = "Logout failed: " + err.Error()
			return m, nil
		}
		log.Printf("User logged out: %s", me.Username)
		return m.logout()

	case "/photo":
		if len(args) != 1 {
			m.status = "Usage: /photo <data>"
			return m, nil
		}
		image := args[0]
		if err := m.svc.SavePhoto(me.Username, image); err != nil {
			m.status = "Photo failed: " + err.Error()
			return m, nil
		}
		if err := m.svc.SendMessage(m.chatID, me.Username, "", image); err != nil {
			m.status = "Send failed: " + err.Error()
			return m, nil
		}
		m.renderChatLog()

	case "/location":
		if len(args) != 2 {
			m.status = "Usage: /location <lat> <lng>"
			return m, nil
		}
		lat, errLat := strconv.ParseFloat(args[0], 64)
		lng, errLng := strconv.ParseFloat(args[1], 64)
		if errLat != nil || errLng != nil {
			m.status = "Usage: /location <lat> <lng>"
			return m, nil
		}
		if err := m.svc.UpdateLocation(me.Username, lat, lng); err != nil {
			m.status = "Location failed: " + err.Error()
			return m, nil
		}
		m.status = "Location updated."

	case "/group":
		if len(args) < 2 {
			m.status = "Usage: /group <name> <user...>"
			return m, nil
		}
		participants := append([]string{me.Username}, args[1:]...)
		id, err := m.svc.CreateGroupChat(participants, args[0])
		if err != nil {
			m.status = "Group failed: " + err.Error()
			return m, nil
		}
		log.Printf("%s created group %s with %v", me.Username, args[0], args[1:])
		return m.openChat(id)

	case "/rename":
		if me.Type != model.TypeAdmin {
			m.status = "Only admins can rename users."
			return m, nil
		}
		if len(args) != 2 {
			m.status = "Usage: /rename <old> <new>"
			return m, nil
		}
		newName := args[1]
		if err := m.svc.UpdateUser(args[0], service.UserUpdate{Username: &newName}); err != nil {
			m.status = "Rename failed: " + err.Error()
			return m, nil
		}
		log.Printf("Admin %s renamed %s to %s", me.Username, args[0], newName)
		m.status = "Renamed " + args[0] + " to " + newName
		m.renderChatLog()

	case "/passwd":
		if len(args) != 1 {
			m.status = "Usage: /passwd <pass>"
			return m, nil
		}
		pass := args[0]
		if err := m.svc.UpdateUser(me.Username, service.UserUpdate{Password: &pass}); err != nil {
			m.status = "Password change failed: " + err.Error()
			return m, nil
		}
		m.status = "Password updated."

	default:
		m.status = "Unknown command: " + cmd
	}
	return m, nil
}
