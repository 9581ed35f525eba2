package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/colabah/style-dna-service/config"
	"github.com/colabah/style-dna-service/pkg/logger"
)

// Notifier sends ops alerts for failures that never fail the request itself
// (upstream outages, invite email failures). All methods are nil-safe, so a
// notifier without credentials degrades to a no-op.
type Notifier interface {
	Alert(value string)
	AlertError(value string)
}

type telegramNotifier struct {
	token  string
	chatID string
	client *http.Client
	log    *logger.Logger
}

type telegramRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

const (
	iconInfo  = "ℹ️"
	iconError = "❌"
)

// NewTelegramNotifier creates a Telegram alert notifier, or nil when the bot
// credentials are not configured.
func NewTelegramNotifier(cfg config.TelegramConfig, log *logger.Logger) Notifier {
	if cfg.Token == "" || cfg.ChatID == "" {
		log.Warn("Telegram credentials missing, ops alerts disabled")
		return nil
	}
	return &telegramNotifier{
		token:  cfg.Token,
		chatID: cfg.ChatID,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Alert sends an informational alert
func (t *telegramNotifier) Alert(value string) {
	if t == nil {
		return
	}
	_ = t.sendRequest(formatMessage(iconInfo, "INFO", value))
}

// AlertError sends an error alert
func (t *telegramNotifier) AlertError(value string) {
	if t == nil {
		return
	}
	_ = t.sendRequest(formatMessage(iconError, "ERROR", value))
}

func formatMessage(icon, level, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		v = "-"
	}
	return fmt.Sprintf("%s %s: %s", icon, level, v)
}

func (t *telegramNotifier) sendRequest(value string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)

	reqBody := telegramRequest{
		ChatID: t.chatID,
		Text:   value,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	resp, err := t.client.Post(url, "application/json", bytes.NewReader(bodyBytes))
	if err != nil {
		t.log.Warn("Failed to send Telegram alert: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.log.Warn("Telegram alert rejected: status %d, body %s", resp.StatusCode, string(body))
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}

	return nil
}
