// Package notification provides concrete implementations for outbound
// message delivery.
package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"fundoo/config"
	"fundoo/internal/domain/service"
)

const (
	otpSubject   = "Verify Your Email - Fundoo Notes"
	resetSubject = "Password Reset - Fundoo Notes"
)

// smtpMailer implements the Mailer interface over a plain SMTP relay.
type smtpMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	logger   *slog.Logger
}

// NewSMTPMailer is the constructor for smtpMailer.
func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) (service.Mailer, error) {
	if cfg.SMTP == nil || cfg.SMTP.Host == "" {
		return nil, errors.New("smtp configuration is missing")
	}

	return &smtpMailer{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		from:     cfg.SMTP.From,
		fromName: cfg.SMTP.FromName,
		logger:   logger,
	}, nil
}

// SendOtp sends the email-verification code to a freshly registered address.
func (m *smtpMailer) SendOtp(ctx context.Context, email, name, code string) error {
	body := fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #1976D2;">Hello %s,</h2>
    <p>Thank you for registering with Fundoo Notes!</p>
    <p>Your OTP for email verification is:</p>
    <div style="background-color: #f5f5f5; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">%s</div>
    <p style="color: #666;">This OTP will expire in 10 minutes.</p>
    <p style="color: #666;">If you didn't request this, please ignore this email.</p>
    <br/>
    <p>Best regards,<br/><strong>Fundoo Notes Team</strong></p>
  </div>
</body>
</html>`, name, code)

	if err := m.send(ctx, email, otpSubject, body); err != nil {
		return errors.Wrap(err, "failed to send verification email")
	}

	m.logger.Info("OTP email sent", slog.String("email", email))

	return nil
}

// SendPasswordReset sends the reset token to an existing account's address.
func (m *smtpMailer) SendPasswordReset(ctx context.Context, email, name, token string) error {
	body := fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #1976D2;">Password Reset Request</h2>
    <p>Hello %s, you requested to reset your password.</p>
    <p>Your reset token is:</p>
    <div style="background-color: #f5f5f5; padding: 15px; word-break: break-all; font-family: monospace; margin: 20px 0;">%s</div>
    <p style="color: #666;">This token will expire in 15 minutes.</p>
    <p style="color: #666;">If you didn't request this, please ignore this email.</p>
    <br/>
    <p>Best regards,<br/><strong>Fundoo Notes Team</strong></p>
  </div>
</body>
</html>`, name, token)

	if err := m.send(ctx, email, resetSubject, body); err != nil {
		return errors.Wrap(err, "failed to send password reset email")
	}

	m.logger.Info("Password reset email sent", slog.String("email", email))

	return nil
}

// send assembles a MIME message and pushes it through the relay. The context
// deadline, when present, bounds the whole SMTP conversation via the
// connection deadline.
func (m *smtpMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))

	var msg strings.Builder
	msg.WriteString("From: " + m.fromName + " <" + m.from + ">\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "failed to dial smtp relay")
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()

			return errors.Wrap(err, "failed to set smtp deadline")
		}
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()

		return errors.Wrap(err, "failed to start smtp session")
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return errors.Wrap(err, "failed to start tls")
		}
	}

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return errors.Wrap(err, "smtp authentication failed")
		}
	}

	if err := client.Mail(m.from); err != nil {
		return errors.Wrap(err, "smtp MAIL command failed")
	}
	if err := client.Rcpt(to); err != nil {
		return errors.Wrap(err, "smtp RCPT command failed")
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "smtp DATA command failed")
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		return errors.Wrap(err, "failed to write smtp message")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "failed to finish smtp message")
	}

	return client.Quit()
}
