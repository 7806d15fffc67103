package notifier

import (
	"log/slog"

	"github.com/kettari/games-bot/internal/entity"
)

// MessageDispatcher delivers notifications, e.g. the Telegram bot.
type MessageDispatcher interface {
	Send(notification []string) error
}

var headlines = map[Event]string{
	EventNew:            "🆕 Новая игра в расписании",
	EventBecomeJoinable: "🔓 Освободились места",
	EventCancelled:      "❌ Игра пропала из расписания",
}

// MessageObserver sends one message per session change of its event.
type MessageObserver struct {
	bot   MessageDispatcher
	event Event
}

func NewGameObserver(bot MessageDispatcher) *MessageObserver {
	return &MessageObserver{bot: bot, event: EventNew}
}

func BecomeJoinableGameObserver(bot MessageDispatcher) *MessageObserver {
	return &MessageObserver{bot: bot, event: EventBecomeJoinable}
}

func CancelledGameObserver(bot MessageDispatcher) *MessageObserver {
	return &MessageObserver{bot: bot, event: EventCancelled}
}

func (o *MessageObserver) Update(session *entity.Session, event Event) {
	if event != o.event {
		return
	}
	slog.Info("game event fired", "event", event, "session_id", session.ID)
	if err := o.bot.Send([]string{FormatChange(session, event)}); err != nil {
		slog.Error("game event error", "event", event, "error", err)
	}
}

// FormatChange renders a change notification as Telegram HTML.
func FormatChange(session *entity.Session, event Event) string {
	return "<b>" + headlines[event] + "</b>\n" + session.DayHeader() + "\n" + session.Format()
}
