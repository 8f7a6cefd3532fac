// Package mailer sends transactional notification email. The Sender
// abstraction has three backends: the Resend HTTP API (default), plain SMTP,
// and a disabled mode that logs the intended payload instead of sending.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"stemgharbiya/siteapi/internal/config"
)

// Mail is one outbound message. The HTML body must already have all user
// content escaped; see templates.go.
type Mail struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Mail) error
}

// NewSender builds the Sender selected by mail.provider.
func NewSender(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Provider {
	case "resend":
		return newResendSender(cfg, logger), nil
	case "smtp":
		return newSMTPSender(cfg)
	case "disabled":
		return &disabledSender{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

type resendSender struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
	logger   *zap.Logger
}

func newResendSender(cfg config.MailConfig, logger *zap.Logger) *resendSender {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return &resendSender{
		endpoint: cfg.Resend.Endpoint,
		apiKey:   cfg.Resend.APIKey,
		from:     from,
		client:   &http.Client{Timeout: cfg.Resend.Timeout},
		logger:   logger,
	}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *resendSender) Send(ctx context.Context, m Mail) error {
	body, err := json.Marshal(resendPayload{
		From:    s.from,
		To:      []string{m.To},
		Subject: m.Subject,
		HTML:    m.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Keep the provider body out of the returned error; log it instead.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		s.logger.Error("resend rejected send",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}
	return nil
}

// disabledSender logs what would have been sent and reports success.
type disabledSender struct {
	logger *zap.Logger
}

func (s *disabledSender) Send(_ context.Context, m Mail) error {
	s.logger.Info("mail sending disabled, dropping message",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.Int("html_bytes", len(m.HTML)),
	)
	return nil
}
