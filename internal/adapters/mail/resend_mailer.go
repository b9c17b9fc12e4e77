package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/resend/resend-go/v2"
)

var _ domain.Mailer = (*ResendMailer)(nil)

const magicLinkSubject = "Sign in to Penny Challenge"

var magicLinkTemplate = template.Must(template.New("magic_link").Parse(`<!doctype html>
<html>
  <body style="font-family: sans-serif; color: #1f2937;">
    <h2>Sign in to Penny Challenge</h2>
    <p>Click the button below to sign in. The link works once and expires in 24 hours.</p>
    <p><a href="{{.Link}}" style="display: inline-block; padding: 10px 18px; background: #16a34a; color: #fff; border-radius: 6px; text-decoration: none;">Sign in</a></p>
    <p style="font-size: 12px; color: #6b7280;">If you did not request this email you can ignore it.</p>
  </body>
</html>`))

func renderMagicLink(link string) (string, error) {
	var buf bytes.Buffer
	if err := magicLinkTemplate.Execute(&buf, struct{ Link string }{link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) SendMagicLink(ctx context.Context, to, link string) error {
	html, err := renderMagicLink(link)
	if err != nil {
		return fmt.Errorf("mail: render magic link: %w", err)
	}

	_, err = m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: magicLinkSubject,
		Html:    html,
		Text:    "Sign in to Penny Challenge: " + link,
	})
	if err != nil {
		return fmt.Errorf("mail: resend send: %w", err)
	}
	return nil
}
