package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kettari/games-bot/internal/config"
	"github.com/kettari/games-bot/internal/schedule"
)

type ScheduleShowCommand struct {
	out io.Writer
}

func NewScheduleShowCommand() *ScheduleShowCommand {
	return &ScheduleShowCommand{out: os.Stdout}
}

func (cmd *ScheduleShowCommand) Name() string {
	return "schedule:show"
}

func (cmd *ScheduleShowCommand) Description() string {
	return "prints the current schedule: schedule:show [all|today|week|weekend] [full]"
}

func (cmd *ScheduleShowCommand) Run(args []string) error {
	conf := config.GetConfig()
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
	for _, msg := range s.Format(sel, time.Now()) {
		fmt.Fprintln(cmd.out, msg)
	}
	return nil
}

// parseSelection reads "[preset] [full]" console arguments.
func parseSelection(args []string, hideFull bool) (schedule.Selection, error) {
	sel := schedule.Selection{Preset: schedule.PresetAll, HideFull: hideFull}
	for _, arg := range args {
		if strings.EqualFold(arg, "full") {
			sel.HideFull = false
			continue
		}
		preset, err := schedule.ParsePreset(arg)
		if err != nil {
			return sel, err
		}
		sel.Preset = preset
	}
	return sel, nil
}
