// Package notify delivers scan results over email and Telegram. Channels
// fail independently: one channel's delivery error never blocks the other
// or the analysis result itself.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/smtp"
	"net/url"
	"os"
	"strings"
	"time"

	"swingbot/internal/interfaces"
	"swingbot/internal/logger"
	"swingbot/internal/store"
	"swingbot/internal/types"
)

const emailSubject = "SwingBot analysis done"

type Service struct {
	cfg          *store.Config
	httpClient   *http.Client
	telegramBase string
}

var _ interfaces.Notifier = (*Service)(nil)

// Option configures the notifier
type Option func(*Service)

// WithTelegramBase overrides the Telegram API base URL (used by tests)
func WithTelegramBase(base string) Option {
	return func(s *Service) {
		s.telegramBase = base
	}
}

func New(cfg *store.Config, opts ...Option) *Service {
	s := &Service{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		telegramBase: "https://api.telegram.org",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalysisDone formats and delivers the scan's top picks on every enabled
// channel. Fire-and-forget: failures are logged per channel.
func (s *Service) AnalysisDone(ctx context.Context, top []types.Prediction) {
	msg := FormatMessage(top)

	if err := s.sendEmail(emailSubject, msg); err != nil {
		logger.ErrorWithErr(ctx, "Email notification failed", err)
	}
	if err := s.sendTelegram(ctx, msg); err != nil {
		logger.ErrorWithErr(ctx, "Telegram notification failed", err)
	}
}

// FormatMessage renders the notification body for a pick list.
func FormatMessage(top []types.Prediction) string {
	if len(top) == 0 {
		return "SwingBot: analysis completed. No stocks matched criteria."
	}
	lines := []string{"SwingBot: latest top candidates:"}
	for _, p := range top {
		lines = append(lines, fmt.Sprintf(
			"%s: 15d %.2f%%, 30d %.2f%%, 60d %.2f%%, 90d %.2f%%, Tgt90 ₹%.2f, SL ₹%.2f",
			p.Symbol, p.Upside15d, p.Upside30d, p.Upside60d, p.Upside90d,
			p.Target90d, p.StopLoss,
		))
	}
	return strings.Join(lines, "\n")
}

// sendEmail delivers over SMTP with implicit TLS. The account password comes
// from the environment, never the config file.
func (s *Service) sendEmail(subject, body string) error {
	cfg := s.cfg.Notify.Email
	if !cfg.Enabled {
		return nil
	}
	password := os.Getenv("EMAIL_PASSWORD")
	if cfg.Sender == "" || cfg.Recipient == "" || password == "" {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPServer, cfg.SMTPPort)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.SMTPServer})
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}

	client, err := smtp.NewClient(conn, cfg.SMTPServer)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client failed: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", cfg.Sender, password, cfg.SMTPServer)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(cfg.Sender); err != nil {
		return err
	}
	if err := client.Rcpt(cfg.Recipient); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Subject: %s\r\n\r\n%s", subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (s *Service) sendTelegram(ctx context.Context, message string) error {
	cfg := s.cfg.Notify.Telegram
	if !cfg.Enabled {
		return nil
	}
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" || cfg.ChatID == "" {
		return nil
	}

	params := url.Values{}
	params.Set("chat_id", cfg.ChatID)
	params.Set("text", message)
	reqURL := fmt.Sprintf("%s/bot%s/sendMessage?%s", s.telegramBase, token, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
