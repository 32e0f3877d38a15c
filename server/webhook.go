// server/webhook.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/wfunc/drawbot/game"
	"github.com/wfunc/drawbot/logger"
	"github.com/wfunc/drawbot/telegram"
)

const (
	msgGreetPrivate = "Hi, <b>%s</b>! Add me to the group and we'll play a game."
	msgGreetGroup   = "Hi, <b>%s</b>! Send /game to create new game"
)

// handleWebhook receives Telegram updates. Always answers 200: a
// non-2xx makes Telegram redeliver, and a failed command is not worth
// replaying.
func (s *GameServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.apiSecretToken != "" &&
		r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != s.apiSecretToken {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch {
	case update.Message != nil:
		s.dispatchMessage(update.Message)
	case update.MyChatMember != nil:
		s.dispatchMembership(update.MyChatMember)
	}

	w.WriteHeader(http.StatusOK)
}

func (s *GameServer) dispatchMessage(msg *telegram.Message) {
	if msg.From == nil || msg.Text == "" || msg.Chat.Type == "channel" {
		return
	}

	if !s.users.Authorize(msg.From.ID) {
		return
	}
	if !s.throttle.Allow(msg.From.ID) {
		return
	}

	command := parseCommand(msg.Text)

	if msg.Chat.Type == "private" {
		if command == "start" {
			s.notify(msg.Chat.ID, fmt.Sprintf(msgGreetPrivate, msg.From.FirstName))
		}
		return
	}
	if !telegram.IsGroup(msg.Chat.Type) {
		return
	}

	switch command {
	case "start":
		s.notify(msg.Chat.ID, fmt.Sprintf(msgGreetGroup, msg.From.FirstName))
	case "game":
		if _, err := s.coordinator.CreateGame(msg.Chat.ID, msg.From.ID, msg.From.FullName()); err != nil &&
			!errors.Is(err, game.ErrGameAlreadyRunning) {
			logger.Log.Errorf("Creating game in room %d failed: %v", msg.Chat.ID, err)
		}
	case "cancel":
		status, err := s.bot.ChatMemberStatus(msg.Chat.ID, msg.From.ID)
		if err != nil {
			logger.Log.Warnf("Member lookup for cancel in room %d failed: %v", msg.Chat.ID, err)
		}
		if err := s.coordinator.CancelGame(msg.Chat.ID, msg.From.ID, telegram.IsAdmin(status)); err != nil &&
			!errors.Is(err, game.ErrNotAllowed) {
			logger.Log.Errorf("Cancelling game in room %d failed: %v", msg.Chat.ID, err)
		}
	default:
		if strings.HasPrefix(msg.Text, "/") {
			return
		}
		if err := s.coordinator.CheckWord(msg.Chat.ID, msg.MessageID, msg.From.ID, msg.Text); err != nil {
			logger.Log.Errorf("Checking word in room %d failed: %v", msg.Chat.ID, err)
		}
	}
}

func (s *GameServer) dispatchMembership(ev *telegram.ChatMemberUpdated) {
	if !telegram.IsGroup(ev.Chat.Type) {
		return
	}

	wasMember := memberish(ev.OldChatMember.Status)
	isMember := memberish(ev.NewChatMember.Status)

	switch {
	case wasMember && !isMember:
		if err := s.coordinator.DeleteGame(ev.Chat.ID); err != nil {
			logger.Log.Errorf("Deleting games of room %d failed: %v", ev.Chat.ID, err)
		}
	case !wasMember && isMember:
		s.notify(ev.Chat.ID, fmt.Sprintf(msgGreetGroup, ev.Chat.Title))
	}
}

func memberish(status string) bool {
	return status != telegram.StatusLeft && status != telegram.StatusKicked && status != ""
}

func (s *GameServer) notify(chatID int64, text string) {
	if err := s.bot.Notify(chatID, 0, text); err != nil {
		logger.Log.Debugf("Greeting for chat %d failed: %v", chatID, err)
	}
}

// parseCommand extracts the bare command name from "/cmd" or
// "/cmd@BotName", or returns "" for plain text.
func parseCommand(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	command := strings.Fields(text)[0][1:]
	if at := strings.IndexByte(command, '@'); at >= 0 {
		command = command[:at]
	}
	return command
}
