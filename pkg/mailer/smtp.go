package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/launchflow/launchflow/pkg/eventbus"
	"github.com/launchflow/launchflow/pkg/events"
	"github.com/launchflow/launchflow/pkg/protocol"
	"k8s.io/utils/clock"
)

var ErrInvalidRecipient = errors.New("invalid email recipient")

// SendFunc has the signature of smtp.SendMail.
type SendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SMTPDeliverer consumes email.requested events and sends them over SMTP.
type SMTPDeliverer struct {
	config    SMTPConfig
	templates map[string]Template
	send      SendFunc
	clock     clock.PassiveClock
	logger    *slog.Logger
}

type DelivererOption func(*SMTPDeliverer)

// WithSendFunc replaces smtp.SendMail.
func WithSendFunc(send SendFunc) DelivererOption {
	return func(d *SMTPDeliverer) { d.send = send }
}

func WithTemplates(templates map[string]Template) DelivererOption {
	return func(d *SMTPDeliverer) { d.templates = templates }
}

func WithClock(clk clock.PassiveClock) DelivererOption {
	return func(d *SMTPDeliverer) { d.clock = clk }
}

func NewSMTPDeliverer(config SMTPConfig, logger *slog.Logger, opts ...DelivererOption) *SMTPDeliverer {
	deliverer := &SMTPDeliverer{
		config:    config,
		templates: DefaultTemplates(),
		send:      smtp.SendMail,
		clock:     clock.RealClock{},
		logger:    logger.With("module", "smtp_deliverer"),
	}

	for _, opt := range opts {
		opt(deliverer)
	}

	return deliverer
}

// Register subscribes the deliverer to email.requested events.
func (d *SMTPDeliverer) Register(subscriber eventbus.EventSubscriber) error {
	return subscriber.Handle(events.EmailRequestedEvent, d.handle)
}

func (d *SMTPDeliverer) handle(ctx context.Context, event any) error {
	requested, ok := event.(*events.EmailRequested)
	if !ok {
		d.logger.ErrorContext(ctx, "Unexpected event", "event", fmt.Sprintf("%T", event))

		return nil
	}

	err := d.Deliver(ctx, requested.Message)
	if errors.Is(err, ErrInvalidRecipient) {
		// Redelivery cannot fix the address.
		d.logger.WarnContext(ctx, "Dropping email", "error", err)

		return nil
	}

	return err
}

// Deliver renders and sends one message.
func (d *SMTPDeliverer) Deliver(ctx context.Context, message protocol.EmailMessage) error {
	to, err := mail.ParseAddress(message.To)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidRecipient, message.To, err)
	}

	subject, body := Render(d.templates, message)

	var auth smtp.Auth
	if d.config.Username != "" {
		auth = smtp.PlainAuth("", d.config.Username, d.config.Password, d.config.Host)
	}

	err = d.send(d.config.addr(), auth, d.config.From, []string{to.Address}, d.compose(to, subject, body))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	d.logger.InfoContext(ctx, "Email sent", "template", message.Template)

	return nil
}

func (d *SMTPDeliverer) compose(to *mail.Address, subject, body string) []byte {
	var msg bytes.Buffer

	fmt.Fprintf(&msg, "From: %s\r\n", d.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to.String())
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", d.clock.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return msg.Bytes()
}
