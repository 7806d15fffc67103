package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/kettari/games-bot/internal/schedule"
)

const gamesTimeout = 45 * time.Second

// ScheduleSource returns the current schedule, usually a [schedule.Loader].
type ScheduleSource interface {
	Current(ctx context.Context) (*schedule.Schedule, error)
}

var showFullArgs = map[string]bool{"full": true, "полные": true, "все-места": true}

// parseGamesArgs reads "/games [preset] [full]". Without "full" the default
// hide-full policy applies.
func parseGamesArgs(args []string, hideFull bool) (schedule.Selection, error) {
	sel := schedule.Selection{Preset: schedule.PresetAll, HideFull: hideFull}
	presetSeen := false
	for _, arg := range args {
		arg = strings.ToLower(strings.TrimSpace(arg))
		if arg == "" {
			continue
		}
		if showFullArgs[arg] {
			sel.HideFull = false
			continue
		}
		if presetSeen {
			return sel, fmt.Errorf("%w: %q", schedule.ErrUnknownPreset, arg)
		}
		preset, err := schedule.ParsePreset(arg)
		if err != nil {
			return sel, err
		}
		sel.Preset = preset
		presetSeen = true
	}
	return sel, nil
}

func NewGamesHandler(source ScheduleSource, hideFull bool) tele.HandlerFunc {
	return func(c tele.Context) error {
		slog.Info("got command /games", "from", formatHumanName(c.Sender()), "chat", formatHumanName(c.Chat()), "args", c.Args())
		// Only in private chats
		if private, err := isPrivate(c); err != nil {
			return err
		} else if !private {
			return c.Reply(privateOnly)
		}

		sel, err := parseGamesArgs(c.Args(), hideFull)
		if errors.Is(err, schedule.ErrUnknownPreset) {
			return c.Send(gamesUsage, tele.ModeHTML)
		}

		ctx, cancel := context.WithTimeout(context.Background(), gamesTimeout)
		defer cancel()
		s, err := source.Current(ctx)
		if err != nil {
			slog.Error("unable to load schedule", "err", err)
			return c.Send("Не удалось получить расписание, попробуйте позже.")
		}

		for _, msg := range s.Format(sel, time.Now()) {
			if err = c.Send(msg, &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true}); err != nil {
				return err
			}
		}
		return nil
	}
}
