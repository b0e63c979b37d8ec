package surface

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds connection parameters for the email channel.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	To         string // comma-separated
	Encryption string // "none", "starttls", "ssl_tls"
}

// SMTPChannel mirrors surface events by email using go-mail.
type SMTPChannel struct {
	config SMTPConfig
}

// NewSMTPChannel creates an SMTPChannel.
func NewSMTPChannel(config SMTPConfig) *SMTPChannel {
	return &SMTPChannel{config: config}
}

// Name returns the channel identifier.
func (c *SMTPChannel) Name() string { return "smtp" }

// Send delivers one message with a plain-text body and an HTML alternative.
func (c *SMTPChannel) Send(ctx context.Context, subject, body string) error {
	m, err := c.buildMessage(subject, body)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(c.config.Port),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(c.config.Encryption)),
	}
	if c.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.config.Username),
			mail.WithPassword(c.config.Password),
		)
	}
	if c.config.Encryption == "ssl_tls" {
		opts = append(opts, mail.WithSSL())
	}

	client, err := mail.NewClient(c.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (c *SMTPChannel) buildMessage(subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(c.config.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}

	recipients := 0
	for _, r := range strings.Split(c.config.To, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if err := m.AddTo(r); err != nil {
			return nil, fmt.Errorf("invalid recipient %q: %w", r, err)
		}
		recipients++
	}
	if recipients == 0 {
		return nil, fmt.Errorf("no recipients configured")
	}

	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	if html := RenderAlert(subject, body); html != "" {
		m.AddAlternativeString(mail.TypeTextHTML, html)
	}
	return m, nil
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
