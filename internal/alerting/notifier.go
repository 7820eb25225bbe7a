package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Message is a rendered alert ready for delivery.
type Message struct {
	Text    string
	TxCount int
}

// Notifier delivers alerts to a destination.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// APIError is a rejected Telegram request.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram api error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("telegram api error (%d): %s", e.StatusCode, e.Description)
}

// TelegramOptions parameterise the Telegram notifier.
type TelegramOptions struct {
	BotToken  string
	ChatID    string
	BaseURL   string
	ParseMode string
	Timeout   time.Duration
}

// TelegramNotifier posts messages through the Bot API.
type TelegramNotifier struct {
	opts    TelegramOptions
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewTelegramNotifier builds a Telegram notifier.
func NewTelegramNotifier(opts TelegramOptions, logger zerolog.Logger) *TelegramNotifier {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		opts:    opts,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls sendMessage with the configured parse mode.
func (n *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	payload := sendMessageRequest{
		ChatID:    n.opts.ChatID,
		Text:      msg.Text,
		ParseMode: n.opts.ParseMode,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.opts.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the token
		return fmt.Errorf("send telegram request: %w", redactToken(err, n.opts.BotToken))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read telegram response: %w", err)
	}

	var result sendMessageResponse
	decodeErr := json.Unmarshal(raw, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Description: result.Description}
	}
	if decodeErr == nil && !result.OK {
		return &APIError{StatusCode: resp.StatusCode, Description: result.Description}
	}

	n.logger.Debug().Int("transactions", msg.TxCount).Msg("telegram sendMessage accepted")
	return nil
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.cause }

func redactToken(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<redacted>"), cause: err}
}

var _ Notifier = (*TelegramNotifier)(nil)
