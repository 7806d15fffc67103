package handler

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const gamesUsage = `Использование: /games [период] [full]

Период: <b>today</b> (сегодня), <b>week</b> (неделя), <b>weekend</b> (выходные) или <b>all</b> (все).
По умолчанию игры без свободных мест скрыты, <b>full</b> показывает и их.`

const commonHelp = `Этот бот умеет высылать список игр клуба, на которые можно записаться.

Команды:

/games — список игр, на которые можно записаться
/games week — игры на этой неделе
/games weekend full — игры ближайших выходных, включая заполненные
/help — эта справка`

func NewHelpHandler() tele.HandlerFunc {
	return func(c tele.Context) error {
		slog.Info("got command /help", "from", formatHumanName(c.Sender()), "chat", formatHumanName(c.Chat()))
		// Only in private chats
		if private, err := isPrivate(c); err != nil {
			return err
		} else if !private {
			return c.Reply(privateOnly)
		}
		return c.Send(commonHelp)
	}
}
