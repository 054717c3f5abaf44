package notify

import "errors"

var (
	// ErrChannelDisabled is returned when a disabled channel is asked to send.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrNotificationDropped marks a notification dropped because no worker
	// slot freed up in time.
	ErrNotificationDropped = errors.New("notification dropped due to pool saturation")
)
