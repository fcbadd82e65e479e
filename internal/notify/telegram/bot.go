// Package telegram delivers OTP codes to an operator chat through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify"
)

const defaultTimeout = 15 * time.Second

// BotNotifier posts each code to a chat (optionally a forum topic) with sendMessage.
type BotNotifier struct {
	Token      string
	ChatID     string
	ThreadID   int
	BaseURL    string
	Location   *time.Location
	HTTPClient *http.Client
}

// NewBotNotifier returns a notifier for the given bot token and chat. threadID 0 posts to the main chat.
// loc controls how the expiry clock time is rendered; nil means UTC.
func NewBotNotifier(token, chatID string, threadID int, baseURL string, loc *time.Location) *BotNotifier {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BotNotifier{
		Token:      token,
		ChatID:     chatID,
		ThreadID:   threadID,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Location:   loc,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type sendMessageRequest struct {
	ChatID          string `json:"chat_id"`
	Text            string `json:"text"`
	ParseMode       string `json:"parse_mode"`
	MessageThreadID int    `json:"message_thread_id,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends the code message. A non-ok API response is an error.
func (b *BotNotifier) Notify(ctx context.Context, msg notify.Message) error {
	if b.Token == "" || b.ChatID == "" {
		return errors.New("telegram: bot token and chat id must be configured")
	}
	raw, err := json.Marshal(sendMessageRequest{
		ChatID:          b.ChatID,
		Text:            FormatMessage(msg, b.Location),
		ParseMode:       "HTML",
		MessageThreadID: b.ThreadID,
	})
	if err != nil {
		return err
	}
	endpoint := b.BaseURL + "/bot" + b.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of the error.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("telegram: sendMessage: %w", uerr.Err)
		}
		return errors.New("telegram: sendMessage failed")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ar apiResponse
	_ = json.Unmarshal(body, &ar)
	if resp.StatusCode != http.StatusOK || !ar.OK {
		return fmt.Errorf("telegram: sendMessage status=%d description=%q", resp.StatusCode, ar.Description)
	}
	return nil
}

// FormatMessage renders the operator-facing HTML message with phone, code and expiry time (HH:MM in loc).
func FormatMessage(msg notify.Message, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var sb strings.Builder
	sb.WriteString("🔔 <b>Telefon raqami uchun tasdiqlash kodi:</b>\n\n")
	fmt.Fprintf(&sb, "📞 <b>Telefon:</b> <code>%s</code>\n", html.EscapeString(msg.Phone))
	fmt.Fprintf(&sb, "🔓 <b>Kod:</b> <code>%s</code>\n", html.EscapeString(msg.Code))
	fmt.Fprintf(&sb, "⏳ <b>Yaroqlilik muddati:</b> <code>%s</code>\n\n", msg.ExpiresAt.In(loc).Format("15:04"))
	sb.WriteString("ℹ️ Iltimos, kodni hech kim bilan ulashmang!")
	return sb.String()
}
