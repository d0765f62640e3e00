// Package notify delivers reminder texts to a chat through the Telegram Bot API.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"gitlab.com/dirk.krummacker/people-notebook/internal/config"
)

// DefaultTimeout bounds a single delivery.
const DefaultTimeout = 10 * time.Second

// Sender delivers an already formatted text to a preconfigured destination.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// APIError is returned when Telegram answers with a non-2xx status or with "ok": false.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("telegram: status=%d description=%s", e.StatusCode, e.Description)
}

// apiResponse is the envelope of every Bot API answer.
type apiResponse struct {
	Ok          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Telegram sends messages with HTML formatting to one chat.
type Telegram struct {
	client *resty.Client
	token  string
	chatID string
}

// NewTelegram creates a sender for the bot token and chat id. baseURL is the Bot API endpoint,
// normally https://api.telegram.org.
func NewTelegram(baseURL string, token string, chatID string) *Telegram {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(DefaultTimeout)
	return &Telegram{client: client, token: token, chatID: chatID}
}

// FromConfig creates the Telegram sender. The second return value is false if the bot token or
// the chat id is missing, in which case reminders are disabled.
func FromConfig(cfg *config.Config) (*Telegram, bool) {
	if !cfg.RemindersEnabled() {
		return nil, false
	}
	return NewTelegram(cfg.TelegramAPIURL, strings.TrimSpace(cfg.TelegramBotToken), strings.TrimSpace(cfg.TelegramChatID)), true
}

// Send posts the text to the chat with parse_mode HTML.
func (t *Telegram) Send(ctx context.Context, text string) error {
	var result, failure apiResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    t.chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		SetResult(&result).
		SetError(&failure).
		Post("/bot" + t.token + "/sendMessage")
	if err != nil {
		// the request URL contains the bot token
		return fmt.Errorf("telegram: send message: %s", strings.ReplaceAll(err.Error(), t.token, "<token>"))
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Description: failure.Description}
	}
	if !result.Ok {
		return &APIError{StatusCode: resp.StatusCode(), Description: result.Description}
	}
	return nil
}
