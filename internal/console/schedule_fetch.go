package console

import (
	"context"
	"log/slog"
	"time"

	"github.com/kettari/games-bot/internal/bot"
	"github.com/kettari/games-bot/internal/config"
	"github.com/kettari/games-bot/internal/entity"
	"github.com/kettari/games-bot/internal/notifier"
	"github.com/kettari/games-bot/internal/schedule"
)

const fetchTimeout = 2 * time.Minute

type ScheduleFetchCommand struct {
}

func NewScheduleFetchCommand() *ScheduleFetchCommand {
	cmd := ScheduleFetchCommand{}
	return &cmd
}

func (cmd *ScheduleFetchCommand) Name() string {
	return "schedule:fetch"
}

func (cmd *ScheduleFetchCommand) Description() string {
	return "fetches the listing page, stores the sessions and notifies about changes"
}

func (cmd *ScheduleFetchCommand) Run([]string) error {
	slog.Info("fetching schedule")
	conf := config.GetConfig()

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	env, err := newEnvironment(ctx, conf)
	if err != nil {
		return err
	}
	defer env.Close()
	defer env.flushMetrics()

	previous := env.previousSnapshot(ctx)

	s, err := env.loader.Load(ctx)
	if err != nil {
		return err
	}
	if s.Degraded {
		slog.Warn("listing page failed, stored results kept", "source", s.Source, "fetched_at", s.FetchedAt)
		return nil
	}
	slog.Info("schedule fetched", "sessions_count", len(s.Sessions), "source", s.Source)

	if !conf.NotifyChanges || previous == nil {
		return nil
	}
	return notifyChanges(conf, previous, s)
}

// previousSnapshot returns nil when there is nothing to compare with.
func (env *environment) previousSnapshot(ctx context.Context) []entity.Session {
	if env.snapshots == nil {
		return nil
	}
	sessions, _, err := env.snapshots.LoadSnapshot(ctx)
	if err != nil {
		slog.Debug("no previous snapshot", "err", err)
		return nil
	}
	return sessions
}

func notifyChanges(conf *config.Config, previous []entity.Session, s *schedule.Schedule) error {
	changes := notifier.Diff(previous, s.Sessions, time.Now())
	if len(changes) == 0 {
		return nil
	}
	if err := conf.RequireBot(); err != nil {
		return err
	}
	b, err := bot.CreateBot(conf.BotToken, conf.NotificationChatID)
	if err != nil {
		return err
	}

	var subject notifier.Subject
	subject.Register(notifier.NewGameObserver(b))
	subject.Register(notifier.BecomeJoinableGameObserver(b))
	subject.Register(notifier.CancelledGameObserver(b))
	subject.Notify(changes)

	slog.Info("schedule changes notified", "changes_count", len(changes))
	return nil
}
