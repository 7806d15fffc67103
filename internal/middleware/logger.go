package middleware

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Logger returns a middleware that logs incoming updates and handler errors.
func Logger(logger *slog.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			args := []any{"update_id", c.Update().ID}
			if sender := c.Sender(); sender != nil {
				args = append(args, "sender_id", sender.ID, "username", sender.Username)
			}
			if text := c.Text(); text != "" {
				args = append(args, "text", text)
			}
			logger.Debug("update received", args...)

			err := next(c)
			args = append(args, "duration", time.Since(start))
			if err != nil {
				logger.Error("update handling failed", append(args, "err", err)...)
				return err
			}
			logger.Debug("update handled", args...)
			return nil
		}
	}
}
