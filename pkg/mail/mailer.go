package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names understood by the mailer.
const (
	TemplateConfirmEmail  = "confirm_email.html"
	TemplateResetPassword = "reset_password.html"
)

// Message is a templated HTML email.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Sender delivers templated mail. Delivery is best-effort; callers decide
// whether a failure is fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds mail transport configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseSSL   bool
}

type smtpSender struct {
	dialer    *gomail.Dialer
	from      string
	templates *template.Template
}

// NewSMTPSender creates an SMTP-backed Sender with the embedded templates parsed.
func NewSMTPSender(cfg SMTPConfig) (Sender, error) {
	tmpl, err := template.New("mail").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.UseSSL

	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}

	return &smtpSender{
		dialer:    dialer,
		from:      from,
		templates: tmpl,
	}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	body, err := Render(s.templates, msg.Template, msg.Data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", body)

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

// Render executes a named template against data.
func Render(t *template.Template, name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// ParseTemplates exposes the embedded template set, used by tests and by
// senders that render without delivering.
func ParseTemplates() (*template.Template, error) {
	return template.New("mail").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/*.html")
}
