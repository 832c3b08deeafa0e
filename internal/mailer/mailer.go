// Package mailer renders notification emails and sends them over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"gotrip/internal/models"
)

var (
	ErrNotConfigured   = errors.New("smtp is not configured")
	ErrUnknownTemplate = errors.New("no email template for subject")
	ErrNoRecipients    = errors.New("notification has no recipients")
)

type Config struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	StaffEmail    string
	PublicBaseURL string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	cfg       Config
	send      sendFunc
	templates map[string]compiled
}

type compiled struct {
	subject *texttemplate.Template
	body    *template.Template
}

// Message is a rendered email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

type view struct {
	models.Notification
	BaseURL string
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"deref": func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	},
}

func New(cfg Config) (*Mailer, error) {
	m := &Mailer{
		cfg:       cfg,
		send:      smtp.SendMail,
		templates: make(map[string]compiled, len(catalog)),
	}

	for subject, t := range catalog {
		subj, err := texttemplate.New(subject).Parse(t.subject)
		if err != nil {
			return nil, fmt.Errorf("parse subject template %s: %w", subject, err)
		}
		body, err := template.New(subject).Funcs(funcs).Parse(layout + bookingSummary + tripPlanSummary +
			`{{define "content"}}` + t.content + `{{end}}`)
		if err != nil {
			return nil, fmt.Errorf("parse body template %s: %w", subject, err)
		}
		m.templates[subject] = compiled{subject: subj, body: body}
	}

	return m, nil
}

// Configured reports whether an SMTP host is set.
func (m *Mailer) Configured() bool {
	return m.cfg.Host != ""
}

// StaffEmail is the inbox receiving staff-facing notifications.
func (m *Mailer) StaffEmail() string {
	return m.cfg.StaffEmail
}

// Render produces the email for a notification. Notifications without
// recipients go to the staff inbox.
func (m *Mailer) Render(n models.Notification) (*Message, error) {
	t, ok := m.templates[n.Subject]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, n.Subject)
	}

	to := n.To
	if len(to) == 0 && m.cfg.StaffEmail != "" {
		to = []string{m.cfg.StaffEmail}
	}
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}

	v := view{Notification: n, BaseURL: strings.TrimRight(m.cfg.PublicBaseURL, "/")}

	var subject bytes.Buffer
	if err := t.subject.Execute(&subject, v); err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	var body bytes.Buffer
	if err := t.body.ExecuteTemplate(&body, "layout", v); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	return &Message{
		To:      to,
		Subject: sanitizeHeader(subject.String()),
		HTML:    body.String(),
	}, nil
}

// Send delivers a rendered message.
func (m *Mailer) Send(ctx context.Context, msg *Message) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, msg.To, m.compose(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	slog.Info("Email sent", "subject", msg.Subject, "recipients", len(msg.To))
	return nil
}

// Deliver renders and sends, making the Mailer usable as a notification sink.
func (m *Mailer) Deliver(ctx context.Context, n models.Notification) error {
	msg, err := m.Render(n)
	if err != nil {
		return err
	}
	return m.Send(ctx, msg)
}

func (m *Mailer) compose(msg *Message) []byte {
	headers := [][2]string{
		{"From", fmt.Sprintf("GoTrip <%s>", m.cfg.From)},
		{"To", strings.Join(msg.To, ", ")},
		{"Subject", msg.Subject},
		{"Date", time.Now().UTC().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"X-Mailer", "GoTrip-Mailer"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h[0])
		b.WriteString(": ")
		b.WriteString(h[1])
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
