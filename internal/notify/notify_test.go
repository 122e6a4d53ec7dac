package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"invbot/internal/inventory"
	"invbot/internal/transport"
	"invbot/pkg/logx"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendText(_ context.Context, _ transport.ChatTarget, text string, _ *transport.SendOptions) (transport.MessageRef, error) {
	if f.err != nil {
		return transport.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	return transport.MessageRef{MessageID: len(f.sent)}, nil
}

func TestFormatDiff(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		diff inventory.Diff
		want string
	}{
		{
			name: "added and removed",
			diff: inventory.Diff{
				Added:   []inventory.Delta{{Name: "AWP | Asiimov", Count: 1}, {Name: "Chroma Case", Count: 2}},
				Removed: []inventory.Delta{{Name: "AK-47 | Redline", Count: 1}},
			},
			want: "Inventory change for acct\nAdded: AWP | Asiimov x1, Chroma Case x2\nRemoved: AK-47 | Redline x1",
		},
		{
			name: "added only omits removed line",
			diff: inventory.Diff{Added: []inventory.Delta{{Name: "Chroma Case", Count: 3}}},
			want: "Inventory change for acct\nAdded: Chroma Case x3",
		},
		{
			name: "removed only omits added line",
			diff: inventory.Diff{Removed: []inventory.Delta{{Name: "Chroma Case", Count: 1}}},
			want: "Inventory change for acct\nRemoved: Chroma Case x1",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDiff("acct", tt.diff)
			if got != tt.want {
				t.Fatalf("FormatDiff = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotifySends(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{}
	s := New(sender, transport.ChatTarget{ChatID: 42}, logx.Nop())

	d := inventory.Diff{Added: []inventory.Delta{{Name: "Chroma Case", Count: 1}}}
	s.Notify(context.Background(), "76561198000000001", d)

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d messages, want 1", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0], "76561198000000001") {
		t.Fatalf("message %q does not name the account", sender.sent[0])
	}
}

func TestNotifySkipsEmptyDiff(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{}
	s := New(sender, transport.ChatTarget{ChatID: 42}, logx.Nop())

	s.Notify(context.Background(), "acct", inventory.Diff{})
	if len(sender.sent) != 0 {
		t.Fatalf("empty diff must not send, got %v", sender.sent)
	}
}

func TestNotifyDeliveryFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	sender := &fakeSender{err: errors.New("chat not found")}
	s := New(sender, transport.ChatTarget{ChatID: 42}, logx.Nop())

	// Must not panic or propagate: delivery failure is non-fatal per call.
	d := inventory.Diff{Removed: []inventory.Delta{{Name: "Chroma Case", Count: 1}}}
	s.Notify(context.Background(), "acct", d)
}
