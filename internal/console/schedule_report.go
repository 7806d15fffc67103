package console

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kettari/games-bot/internal/bot"
	"github.com/kettari/games-bot/internal/config"
)

type ScheduleReportCommand struct {
}

func NewScheduleReportCommand() *ScheduleReportCommand {
	cmd := ScheduleReportCommand{}
	return &cmd
}

func (cmd *ScheduleReportCommand) Name() string {
	return "schedule:report"
}

func (cmd *ScheduleReportCommand) Description() string {
	return "sends the schedule to the notification chats: schedule:report [preset] [full]"
}

func (cmd *ScheduleReportCommand) Run(args []string) error {
	conf := config.GetConfig()
	if err := conf.RequireBot(); err != nil {
		return err
	}
	if conf.NotificationChatID == "" {
		return errors.New("notification chats not found in the environment (BOT_NOTIFICATION_CHAT_ID)")
	}
	sel, err := parseSelection(args, conf.HideFull)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	env, err := newEnvironment(ctx, conf)
	if err != nil {
		return err
	}
	defer env.Close()
	defer env.flushMetrics()

	s, err := env.loader.Current(ctx)
	if err != nil {
		return err
	}

	b, err := bot.CreateBot(conf.BotToken, conf.NotificationChatID)
	if err != nil {
		return err
	}
	if err = s.Report(b, sel, time.Now()); err != nil {
		return err
	}
	slog.Info("schedule reported", "sessions_count", len(s.Sessions))
	return nil
}
