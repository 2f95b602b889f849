package notify

import (
	"context"

	"github.com/parish/sacristy/ratelimit"
)

// Throttled wraps a SlackNotifier and EmailSender with a shared rate
// limiter so a conflict-heavy generation run (one Slack post and one
// email per affected coordinator) can't hammer either provider. It reuses
// ratelimit.RateLimiter's exponential-backoff-on-429 behavior verbatim —
// Slack and Resend both rate-limit the same way the sync pipeline's
// upstream API did.
type Throttled struct {
	slack   *SlackNotifier
	email   EmailSender
	limiter *ratelimit.RateLimiter
}

// NewThrottled wraps slack and email with a rate limiter using cfg, or
// ratelimit.DefaultConfig() if cfg is nil.
func NewThrottled(slack *SlackNotifier, email EmailSender, cfg *ratelimit.Config) *Throttled {
	return &Throttled{
		slack:   slack,
		email:   email,
		limiter: ratelimit.NewRateLimiter(cfg),
	}
}

// NotifyConflicts posts to Slack under the rate limiter.
func (t *Throttled) NotifyConflicts(ctx context.Context, scheduleName string, conflictLines []string) error {
	return t.limiter.ExecuteWithRetry(ctx, func() error {
		return t.slack.NotifyConflicts(ctx, scheduleName, conflictLines)
	})
}

// NotifyFairnessDigest posts to Slack under the rate limiter.
func (t *Throttled) NotifyFairnessDigest(ctx context.Context, year int, summary string) error {
	return t.limiter.ExecuteWithRetry(ctx, func() error {
		return t.slack.NotifyFairnessDigest(ctx, year, summary)
	})
}

// SendEmail sends one email under the rate limiter.
func (t *Throttled) SendEmail(ctx context.Context, to, subject, body string) error {
	return t.limiter.ExecuteWithRetry(ctx, func() error {
		return t.email.Send(ctx, to, subject, body)
	})
}
