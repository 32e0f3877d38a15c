// telegram/bot.go
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Bot is a thin Bot API client covering the handful of methods the
// game needs: announcing games, editing the announcement as the canvas
// changes, courtesy messages and admin lookups.
type Bot struct {
	token      string
	apiBase    string
	httpClient *http.Client
}

func NewBot(token, apiBase string) *Bot {
	return &Bot{
		token:   token,
		apiBase: apiBase,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Token returns the bot token. The init-data verifier derives its
// secret from it.
func (b *Bot) Token() string {
	return b.token
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type sentMessage struct {
	MessageID int64 `json:"message_id"`
}

// Announce posts the game announcement photo with the "Start drawing"
// button and returns the message id of the announcement.
func (b *Bot) Announce(roomID int64, image []byte, caption, actionText, actionURL string) (int64, error) {
	fields := map[string]string{
		"chat_id":      strconv.FormatInt(roomID, 10),
		"caption":      caption,
		"parse_mode":   "HTML",
		"reply_markup": buttonMarkup(actionText, actionURL),
	}

	result, err := b.callMultipart("sendPhoto", fields, "photo", "canvas.png", image)
	if err != nil {
		return 0, err
	}

	var msg sentMessage
	if err := json.Unmarshal(result, &msg); err != nil {
		return 0, fmt.Errorf("decoding sendPhoto result: %w", err)
	}
	return msg.MessageID, nil
}

// EditAnnouncement swaps the announcement photo in place. Fails when
// the message can no longer be edited; the caller falls back to a
// fresh Announce.
func (b *Bot) EditAnnouncement(roomID, messageID int64, image []byte, caption, actionText, actionURL string) error {
	media, err := json.Marshal(map[string]string{
		"type":       "photo",
		"media":      "attach://canvas",
		"caption":    caption,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	fields := map[string]string{
		"chat_id":      strconv.FormatInt(roomID, 10),
		"message_id":   strconv.FormatInt(messageID, 10),
		"media":        string(media),
		"reply_markup": buttonMarkup(actionText, actionURL),
	}

	_, err = b.callMultipart("editMessageMedia", fields, "canvas", "canvas.png", image)
	return err
}

// Notify sends a plain text message, optionally replying to another
// message. Callers treat failures as best-effort.
func (b *Bot) Notify(roomID, replyTo int64, text string) error {
	fields := map[string]string{
		"chat_id":    strconv.FormatInt(roomID, 10),
		"text":       text,
		"parse_mode": "HTML",
	}
	if replyTo != 0 {
		fields["reply_to_message_id"] = strconv.FormatInt(replyTo, 10)
	}

	_, err := b.callMultipart("sendMessage", fields, "", "", nil)
	return err
}

// ChatMemberStatus returns the membership status of a user in a chat.
func (b *Bot) ChatMemberStatus(chatID, userID int64) (string, error) {
	fields := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
		"user_id": strconv.FormatInt(userID, 10),
	}

	result, err := b.callMultipart("getChatMember", fields, "", "", nil)
	if err != nil {
		return "", err
	}

	var member ChatMember
	if err := json.Unmarshal(result, &member); err != nil {
		return "", fmt.Errorf("decoding getChatMember result: %w", err)
	}
	return member.Status, nil
}

// SetWebhook points Telegram at our webhook endpoint.
func (b *Bot) SetWebhook(url, secretToken string) error {
	fields := map[string]string{
		"url": url,
	}
	if secretToken != "" {
		fields["secret_token"] = secretToken
	}

	_, err := b.callMultipart("setWebhook", fields, "", "", nil)
	return err
}

func buttonMarkup(text, url string) string {
	markup := InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: text, URL: url}},
		},
	}
	data, _ := json.Marshal(markup)
	return string(data)
}

// callMultipart posts a Bot API method as multipart/form-data, with an
// optional file part, and unwraps the response envelope.
func (b *Bot) callMultipart(method string, fields map[string]string, fileField, fileName string, file []byte) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}

	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(file); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/bot%s/%s", b.apiBase, b.token, method)
	resp, err := b.httpClient.Post(url, writer.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}
	if !envelope.OK {
		return nil, &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
	}
	return envelope.Result, nil
}
