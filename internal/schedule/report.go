package schedule

import (
	"log/slog"
	"time"
)

// Sender delivers formatted messages, e.g. the Telegram bot.
type Sender interface {
	Send(messages []string) error
}

// Report formats the selection and sends it to the sender's recipients.
func (s *Schedule) Report(sender Sender, sel Selection, now time.Time) error {
	slog.Info("executing games report", "preset", sel.Preset, "hide_full", sel.HideFull)

	messages := s.Format(sel, now)
	if err := sender.Send(messages); err != nil {
		slog.Error("unable to send report", "err", err)
		return err
	}

	slog.Info("report sent", "messages_count", len(messages))
	return nil
}
