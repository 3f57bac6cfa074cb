package mail

import (
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/notification/domain/model"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPSender struct {
	cfg  Config
	send sendFunc
}

var _ model.NotificationSender = (*SMTPSender)(nil)

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTPSender) Send(recipient, subject, body string) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, s.cfg.From, []string{recipient}, buildMessage(s.cfg.From, recipient, subject, body)); err != nil {
		return errors.Wrap(err, "send mail")
	}
	log.WithFields(log.Fields{"to": recipient, "subject": subject}).Info("mail sent")
	return nil
}

// LogSender stands in for SMTP when no mail server is configured.
type LogSender struct{}

func (LogSender) Send(recipient, subject, body string) error {
	log.WithFields(log.Fields{"to": recipient, "subject": subject, "body": body}).Info("mail not sent, no smtp host configured")
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
