// Package notify dispatches lead notifications to the enabled chat channels
// without blocking the request that captured the lead.
package notify

import (
	"context"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/notifier"
)

// Channel is a notification destination. Implementations must be safe for
// concurrent use and respect ctx cancellation.
type Channel interface {
	// Name is the lowercase identifier used in logs and metric labels.
	Name() string
	IsEnabled() bool
	NotifyLead(ctx context.Context, lead *entity.Enrollment) error
	NotifyDigest(ctx context.Context, digest notifier.Digest) error
	// CircuitOpen reports whether the channel is currently short-circuited.
	CircuitOpen() bool
}

type circuitReporter interface {
	CircuitOpen() bool
}

// webhookChannel adapts a notifier.Notifier to Channel.
type webhookChannel struct {
	name     string
	enabled  bool
	notifier notifier.Notifier
}

// NewSlackChannel returns the Slack channel. A disabled config yields a
// channel backed by a NoOpNotifier.
func NewSlackChannel(cfg notifier.SlackConfig) Channel {
	if !cfg.Enabled {
		return &webhookChannel{name: "slack", notifier: notifier.NewNoOpNotifier()}
	}
	return &webhookChannel{name: "slack", enabled: true, notifier: notifier.NewSlackNotifier(cfg)}
}

// NewDiscordChannel returns the Discord channel. A disabled config yields a
// channel backed by a NoOpNotifier.
func NewDiscordChannel(cfg notifier.DiscordConfig) Channel {
	if !cfg.Enabled {
		return &webhookChannel{name: "discord", notifier: notifier.NewNoOpNotifier()}
	}
	return &webhookChannel{name: "discord", enabled: true, notifier: notifier.NewDiscordNotifier(cfg)}
}

func (c *webhookChannel) Name() string    { return c.name }
func (c *webhookChannel) IsEnabled() bool { return c.enabled }

func (c *webhookChannel) NotifyLead(ctx context.Context, lead *entity.Enrollment) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	return c.notifier.NotifyLead(ctx, lead)
}

func (c *webhookChannel) NotifyDigest(ctx context.Context, digest notifier.Digest) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	return c.notifier.NotifyDigest(ctx, digest)
}

func (c *webhookChannel) CircuitOpen() bool {
	if r, ok := c.notifier.(circuitReporter); ok {
		return r.CircuitOpen()
	}
	return false
}
