package notify

import (
	"context"
	"strconv"
	"strings"

	"invbot/internal/inventory"
	"invbot/internal/transport"
	"invbot/pkg/logx"
)

// Service turns a diff into a chat message and hands it to the sink.
// Delivery failure (chat not resolvable, not postable, transient API error)
// is logged and swallowed: it must never affect state updates or the
// remaining accounts in a sweep.
type Service struct {
	sender transport.Sender
	target transport.ChatTarget
	log    logx.Logger
}

func New(sender transport.Sender, target transport.ChatTarget, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{sender: sender, target: target, log: log}
}

func (s *Service) Notify(ctx context.Context, account string, d inventory.Diff) {
	if d.Empty() {
		return
	}
	text := FormatDiff(account, d)
	opt := &transport.SendOptions{DisablePreview: true}
	if _, err := s.sender.SendText(ctx, s.target, text, opt); err != nil {
		s.log.Warn("notification send failed",
			logx.String("account", account),
			logx.Int64("chat_id", s.target.ChatID),
			logx.Err(err))
		return
	}
	s.log.Debug("notification sent",
		logx.String("account", account),
		logx.Int("added", len(d.Added)),
		logx.Int("removed", len(d.Removed)))
}

// FormatDiff renders additions first, then removals, each entry as
// "<name> x<count>". A section with no entries is omitted entirely. The
// account id is always present so multi-account deployments stay readable.
func FormatDiff(account string, d inventory.Diff) string {
	var b strings.Builder
	b.WriteString("Inventory change for ")
	b.WriteString(account)
	if len(d.Added) > 0 {
		b.WriteString("\nAdded: ")
		b.WriteString(joinDeltas(d.Added))
	}
	if len(d.Removed) > 0 {
		b.WriteString("\nRemoved: ")
		b.WriteString(joinDeltas(d.Removed))
	}
	return b.String()
}

func joinDeltas(ds []inventory.Delta) string {
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		parts = append(parts, d.Name+" x"+strconv.Itoa(d.Count))
	}
	return strings.Join(parts, ", ")
}
