package transport

import "context"

type ChatTarget struct {
	ChatID   int64
	ThreadID int
}

type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender is the outbound-only surface consumed by the notifier.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}

// Adapter is a chat-platform connection with a lifecycle.
type Adapter interface {
	Sender

	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Ready is closed once, after the initial connection is established.
	Ready() <-chan struct{}
}
