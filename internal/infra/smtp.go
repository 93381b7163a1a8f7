package infra

import (
	"fmt"
	"net/smtp"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends plain-text notifications, optionally with one attachment.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configurado reports whether an SMTP host was set.
func (m *Mailer) Configurado() bool { return m != nil && m.host != "" }

// Enviar mails subject/body to every address in to. attachPath may be empty.
func (m *Mailer) Enviar(to []string, subject, body, attachPath string) error {
	if !m.Configurado() {
		return fmt.Errorf("mailer: SMTP_HOST no configurado")
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	if attachPath != "" {
		if _, err := e.AttachFile(attachPath); err != nil {
			return fmt.Errorf("mailer: attach file: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
