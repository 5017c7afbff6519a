package notifications

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	telegramMessageLimit = 4096
	telegramTimeout      = 15 * time.Second
)

// Telegram sends the plain-text rendering through a Telegram bot.
type Telegram struct {
	token    string
	chatID   string
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// TelegramOption configures a Telegram channel.
type TelegramOption func(*Telegram)

// WithTelegramEndpoint overrides the Bot API endpoint format, which must contain
// two %s verbs for the token and method.
func WithTelegramEndpoint(endpoint string) TelegramOption {
	return func(t *Telegram) {
		if endpoint != "" {
			t.endpoint = endpoint
		}
	}
}

// WithTelegramHTTPClient overrides the HTTP client used for Bot API calls.
func WithTelegramHTTPClient(client *http.Client) TelegramOption {
	return func(t *Telegram) {
		if client != nil {
			t.client = client
		}
	}
}

// NewTelegram constructs a Telegram channel. The bot is authorized lazily on
// the first send.
func NewTelegram(token, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		token:    token,
		chatID:   strings.TrimSpace(chatID),
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: telegramTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements Channel.
func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) botAPI() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.token, t.endpoint, t.client)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	t.bot = bot
	return bot, nil
}

// Send implements Channel.
func (t *Telegram) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(t.chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", t.chatID, err)
	}
	bot, err := t.botAPI()
	if err != nil {
		return err
	}
	text := truncateRunes(msg.Title+"\n\n"+msg.PlainText, telegramMessageLimit)
	out := tgbotapi.NewMessage(chatID, text)
	out.DisableWebPagePreview = true
	if _, err := bot.Send(out); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
