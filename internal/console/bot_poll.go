package console

import (
	"context"
	"log/slog"
	"os"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/kettari/games-bot/internal/config"
	"github.com/kettari/games-bot/internal/handler"
	"github.com/kettari/games-bot/internal/middleware"
)

const pollTimeout = 58

type BotPollCommand struct {
}

func NewBotPollCommand() *BotPollCommand {
	cmd := BotPollCommand{}
	return &cmd
}

func (cmd *BotPollCommand) Name() string {
	return "bot:poll"
}

func (cmd *BotPollCommand) Description() string {
	return "polls Telegram Bot API for messages and processes them"
}

func (cmd *BotPollCommand) Run([]string) error {
	conf := config.GetConfig()
	if err := conf.RequireBot(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	env, err := newEnvironment(ctx, conf)
	cancel()
	if err != nil {
		return err
	}
	defer env.Close()
	defer env.flushMetrics()

	slog.Info("starting the bot")
	pref := tele.Settings{
		Token:  conf.BotToken,
		Poller: &tele.LongPoller{Timeout: 1 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		slog.Error("unable to create bot processor object", "error", err)
		return err
	}
	b.Use(middleware.Logger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(conf)}))))

	// List bot commands
	b.Handle("/help", handler.NewHelpHandler())
	b.Handle("/start", handler.NewStartHandler())
	b.Handle("/games", handler.NewGamesHandler(env.loader, conf.HideFull))

	// Gracefully shutdown the bot after timeout
	go stopPoll(b)
	// Start poll
	b.Start()

	slog.Info("bot stopped, exiting")

	return nil
}

func logLevel(conf *config.Config) slog.Level {
	if conf.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// stopPoll after timeout
func stopPoll(bot *tele.Bot) {
	stop := time.After(pollTimeout * time.Second)
	slog.Info("timeout for shutdown started", "timeout_seconds", pollTimeout)
	<-stop
	slog.Info("stopping the poll")
	bot.Stop()
}
