package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"stemgharbiya/siteapi/internal/config"
)

type smtpSender struct {
	cfg  config.SMTPConfig
	from string
	name string
}

func newSMTPSender(cfg config.MailConfig) (Sender, error) {
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.SMTP.Port <= 0 {
		return nil, fmt.Errorf("smtp port must be greater than 0")
	}
	if _, err := mail.ParseAddress(cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("invalid mail from_email: %w", err)
	}
	return &smtpSender{cfg: cfg.SMTP, from: cfg.FromEmail, name: cfg.FromName}, nil
}

func (s *smtpSender) Send(_ context.Context, m Mail) error {
	to := strings.TrimSpace(m.To)
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}
	defer client.Close()

	if s.cfg.UseSTARTTLS {
		ok, _ := client.Extension("STARTTLS")
		if !ok {
			return fmt.Errorf("smtp server does not support STARTTLS")
		}
		if err := client.StartTLS(&tls.Config{
			ServerName:         s.cfg.Host,
			InsecureSkipVerify: s.cfg.SkipTLSVerify,
		}); err != nil {
			return fmt.Errorf("starttls failed: %w", err)
		}
	}

	if strings.TrimSpace(s.cfg.Username) != "" {
		ok, _ := client.Extension("AUTH")
		if !ok {
			return fmt.Errorf("smtp server does not support AUTH")
		}
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}

	fromHeader := s.from
	if strings.TrimSpace(s.name) != "" {
		fromHeader = (&mail.Address{Name: s.name, Address: s.from}).String()
	}
	subjectHeader := mime.QEncoding.Encode("UTF-8", m.Subject)
	msg := strings.Builder{}
	msg.WriteString("From: " + fromHeader + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subjectHeader + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(m.HTML)

	if _, err := writer.Write([]byte(msg.String())); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write smtp body failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close smtp writer failed: %w", err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("smtp quit failed: %w", err)
	}
	return nil
}
