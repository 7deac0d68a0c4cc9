package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"
)

// Resend sends through the Resend API.
type Resend struct {
	client *resend.Client
	from   string
}

func NewResend(apiKey, from string) *Resend {
	return &Resend{client: resend.NewClient(apiKey), from: from}
}

// SetBaseURL overrides the API endpoint; used by tests.
func (r *Resend) SetBaseURL(u *url.URL) {
	r.client.BaseURL = u
}

func (r *Resend) Send(ctx context.Context, to, subject, text, html string) error {
	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
		Html:    html,
	}
	if _, err := r.client.Emails.SendWithContext(ctx, params); err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			return fmt.Errorf("email rate limit exceeded (resets in %s seconds): %w", rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}
	return nil
}
