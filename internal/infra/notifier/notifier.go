// Package notifier delivers lead notifications to the team's chat webhooks
// (Slack, Discord). Each notifier rate limits, retries and circuit-breaks its
// own webhook so a failing channel never slows down the enrollment form.
package notifier

import (
	"context"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
)

// Notifier sends lead notifications to one channel.
type Notifier interface {
	// NotifyLead announces a newly captured enrollment or demo booking.
	NotifyLead(ctx context.Context, lead *entity.Enrollment) error

	// NotifyDigest posts the periodic lead summary.
	NotifyDigest(ctx context.Context, digest Digest) error
}

// Digest is the lead summary posted by the worker's daily job.
type Digest struct {
	Since   time.Time
	Until   time.Time
	Summary entity.LeadSummary
}
