// Package notify sends conflict and fairness-digest notifications out of
// the generation pipeline, over Slack and email.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goslack "github.com/slack-go/slack"
)

// SlackNotifier posts schedule notifications to a single configured
// channel. If botToken is empty it is a noop, logging instead — the same
// pattern the teacher's pack uses so local dev never needs real
// credentials.
type SlackNotifier struct {
	client  *goslack.Client
	channel string
	logger  *slog.Logger
}

// NewSlackNotifier builds a SlackNotifier. botToken == "" yields a noop
// notifier.
func NewSlackNotifier(botToken, channel string, logger *slog.Logger) *SlackNotifier {
	var client *goslack.Client
	if botToken != "" {
		client = goslack.New(botToken)
	}
	return &SlackNotifier{client: client, channel: channel, logger: logger}
}

// IsEnabled reports whether this notifier will actually post to Slack.
func (n *SlackNotifier) IsEnabled() bool {
	return n.client != nil && n.channel != ""
}

// NotifyConflicts posts a summary of a generate() run's unresolved
// InsufficientPeople conflicts (spec §7), one line per slot.
func (n *SlackNotifier) NotifyConflicts(ctx context.Context, scheduleName string, conflictLines []string) error {
	if !n.IsEnabled() {
		n.logger.Debug("slack notifier disabled, skipping conflict notification",
			"schedule", scheduleName, "conflicts", len(conflictLines))
		return nil
	}
	if len(conflictLines) == 0 {
		return nil
	}

	text := fmt.Sprintf("*%s* has %d unfilled slot(s):\n%s",
		scheduleName, len(conflictLines), strings.Join(conflictLines, "\n"))

	_, _, err := n.client.PostMessageContext(ctx, n.channel, goslack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting conflict notification to slack: %w", err)
	}
	return nil
}

// NotifyFairnessDigest posts the monthly fairness digest (spec SPEC_FULL §4
// supplemented feature): a short summary of which persons are most and
// least utilized this year, so coordinators can intervene without opening
// the app.
func (n *SlackNotifier) NotifyFairnessDigest(ctx context.Context, year int, summary string) error {
	if !n.IsEnabled() {
		n.logger.Debug("slack notifier disabled, skipping fairness digest", "year", year)
		return nil
	}
	text := fmt.Sprintf("*Fairness digest %d*\n%s", year, summary)
	_, _, err := n.client.PostMessageContext(ctx, n.channel, goslack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting fairness digest to slack: %w", err)
	}
	return nil
}
