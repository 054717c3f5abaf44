package notifier

import (
	"context"
	"errors"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
)

// ErrInvalidLead is returned for a nil lead.
var ErrInvalidLead = errors.New("notifier: invalid lead")

// NoOpNotifier discards every notification. It stands in for a disabled
// channel so callers never check for nil.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) NotifyLead(context.Context, *entity.Enrollment) error { return nil }

func (n *NoOpNotifier) NotifyDigest(context.Context, Digest) error { return nil }
