// Package mail delivers signup verification codes.
package mail

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/hongminglow/account-be/internal/logger"
)

const subject = "[회원가입] 이메일 인증번호"

// SMTPSender sends codes through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a sender for host:port. Auth is skipped when username is empty.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		auth:     auth,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

// SendVerificationCode mails code to email.
func (s *SMTPSender) SendVerificationCode(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(email, "\r\n") {
		return fmt.Errorf("invalid recipient %q", email)
	}
	msg := buildMessage(s.from, email, code)
	if err := s.sendMail(s.addr, s.auth, s.from, []string{email}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", s.addr, err)
	}
	return nil
}

func buildMessage(from, to, code string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("인증번호: " + code + "\r\n")
	return []byte(b.String())
}

// LogSender writes codes to the application log instead of mailing them.
// Only meant for local development.
type LogSender struct {
	logger *logger.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendVerificationCode logs the code.
func (s *LogSender) SendVerificationCode(_ context.Context, email, code string) error {
	s.logger.Info("mail: verification code (log sender)", "email", email, "code", code)
	return nil
}
