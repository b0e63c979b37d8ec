package surface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// maxTelegramText is the Bot API limit for a single text message.
const maxTelegramText = 4096

// TelegramChannel mirrors surface events to a Telegram chat.
type TelegramChannel struct {
	bot    *tele.Bot
	chatID int64
}

// NewTelegramChannel creates a TelegramChannel. The bot is built offline so
// construction performs no network call.
func NewTelegramChannel(token string, chatID int64, timeout time.Duration) (*TelegramChannel, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	b, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramChannel{bot: b, chatID: chatID}, nil
}

// Name returns the channel identifier.
func (c *TelegramChannel) Name() string { return "telegram" }

// Send posts subject and body as one plain-text message.
func (c *TelegramChannel) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chat := &tele.Chat{ID: c.chatID}
	if _, err := c.bot.Send(chat, telegramText(subject, body), &tele.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// telegramText joins subject and body, dropping the body when it repeats the
// subject, and truncates to the Bot API limit.
func telegramText(subject, body string) string {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)

	text := subject
	switch {
	case subject == "":
		text = body
	case body != "" && body != subject:
		text = subject + "\n\n" + body
	}

	if r := []rune(text); len(r) > maxTelegramText {
		text = string(r[:maxTelegramText-1]) + "…"
	}
	return text
}
