package handler

import (
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

func NewStartHandler() tele.HandlerFunc {
	help := NewHelpHandler()
	return func(c tele.Context) error {
		slog.Info("got command /start", "from", formatHumanName(c.Sender()), "chat", formatHumanName(c.Chat()))
		if c.Sender() != nil && c.Sender().FirstName != "" {
			if err := c.Send(fmt.Sprintf("Привет, %s!", c.Sender().FirstName)); err != nil {
				return err
			}
		}
		return help(c)
	}
}
