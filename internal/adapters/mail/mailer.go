// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/platform/config"
	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

const (
	quoteSubject         = "Vaša ponuda #%d"
	quoteAttachment      = "Ponuda-%d.pdf"
	passwordResetSubject = "Resetiranje lozinke"
	defaultRecipientName = "Korisniče"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config configures the mailer.
type Config struct {
	SMTP config.MailConfig

	// ResetTTL is shown in password reset messages.
	ResetTTL time.Duration

	// Sender overrides the SMTP dialer built from SMTP.
	Sender Sender

	Logger *slog.Logger
}

// Mailer implements ports.Mailer with gomail and embedded HTML templates.
type Mailer struct {
	sender    Sender
	from      string
	publicURL string
	resetTTL  time.Duration
	templates *template.Template
	logger    *slog.Logger
}

var _ ports.Mailer = (*Mailer)(nil)

// New creates a mailer. Templates are parsed eagerly so a broken template
// fails at startup.
func New(cfg Config) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing mail templates: %w", err)
	}

	sender := cfg.Sender
	if sender == nil {
		sender = gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Mailer{
		sender:    sender,
		from:      cfg.SMTP.From,
		publicURL: strings.TrimSuffix(cfg.SMTP.PublicURL, "/"),
		resetTTL:  cfg.ResetTTL,
		templates: tmpl,
		logger:    logger.With(slog.String("component", "mail.Mailer")),
	}, nil
}

// SendQuote emails a rendered quote with the PDF attached.
func (m *Mailer) SendQuote(ctx context.Context, msg ports.QuoteEmail) error {
	if strings.TrimSpace(msg.RecipientEmail) == "" {
		return domain.NewValidationError("recipientEmail", "is required")
	}

	body, err := m.render("quote.html", map[string]any{
		"QuoteID":       msg.QuoteID,
		"RecipientName": recipientName(msg.RecipientName),
		"DownloadURL":   m.publicURL + "/api/quotes/" + strconv.FormatUint(uint64(msg.QuoteID), 10) + "/pdf",
	})
	if err != nil {
		return err
	}

	message := m.newMessage(msg.RecipientEmail, fmt.Sprintf(quoteSubject, msg.QuoteID), body)
	pdf := msg.PDF
	message.Attach(fmt.Sprintf(quoteAttachment, msg.QuoteID),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}),
	)

	return m.send(ctx, message, "quote", slog.Uint64("quote_id", uint64(msg.QuoteID)))
}

// SendPasswordReset emails a link carrying the reset token.
func (m *Mailer) SendPasswordReset(ctx context.Context, msg ports.PasswordResetEmail) error {
	if strings.TrimSpace(msg.RecipientEmail) == "" {
		return domain.NewValidationError("email", "is required")
	}

	body, err := m.render("password_reset.html", map[string]any{
		"RecipientName": recipientName(msg.RecipientName),
		"ResetURL":      m.publicURL + "/reset-password?token=" + url.QueryEscape(msg.Token),
		"ValidFor":      validFor(m.resetTTL),
	})
	if err != nil {
		return err
	}

	return m.send(ctx, m.newMessage(msg.RecipientEmail, passwordResetSubject, body), "password_reset")
}

func (m *Mailer) newMessage(to, subject, htmlBody string) *gomail.Message {
	message := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", htmlBody)
	return message
}

func (m *Mailer) render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// send delivers the message. gomail has no context support, so cancellation
// is only observed before dialing; the dialer bounds the connect itself.
func (m *Mailer) send(ctx context.Context, message *gomail.Message, kind string, attrs ...any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sending %s email: %w", kind, err)
	}

	start := time.Now()
	if err := m.sender.DialAndSend(message); err != nil {
		logging.FromContext(ctx).Error("email delivery failed",
			append(attrs, slog.String("kind", kind), slog.String("error", err.Error()))...)
		return domain.NewInternalError("send email", "email could not be sent")
	}

	m.logger.InfoContext(ctx, "email sent",
		append(attrs, slog.String("kind", kind), slog.Duration("duration", time.Since(start)))...)
	return nil
}

func recipientName(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return defaultRecipientName
}

func validFor(ttl time.Duration) string {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return strconv.Itoa(int(ttl.Minutes())) + " minuta"
}
