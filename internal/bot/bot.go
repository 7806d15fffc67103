package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

type Bot struct {
	bot         *tele.Bot
	destination []Recipient
}

type Recipient struct {
	User     tele.User
	ThreadID int
}

// CreateBot returns a [Bot] that sends reports to the recipients
//   - recipients is a string "chat_id1,thread_id1;chat_id2,thread_id2", thread is optional
func CreateBot(token, recipients string) (*Bot, error) {
	return newBot(tele.Settings{Token: token}, recipients)
}

func newBot(pref tele.Settings, recipients string) (*Bot, error) {
	destination, err := prepareDestination(recipients)
	if err != nil {
		return nil, err
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		slog.Error("unable to create bot processor object", "error", err)
		return nil, err
	}
	return &Bot{
		bot:         b,
		destination: destination,
	}, nil
}

// prepareDestination parses the recipients setting into [gopkg.in/telebot.v4.User] values
func prepareDestination(recipients string) ([]Recipient, error) {
	result := make([]Recipient, 0)
	for _, pair := range strings.Split(recipients, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		dst := strings.Split(pair, ",")
		chatID, err := strconv.ParseInt(strings.TrimSpace(dst[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id in %q: %w", pair, err)
		}
		threadID := 0
		if len(dst) > 1 && strings.TrimSpace(dst[1]) != "" {
			if threadID, err = strconv.Atoi(strings.TrimSpace(dst[1])); err != nil {
				return nil, fmt.Errorf("invalid thread id in %q: %w", pair, err)
			}
		}
		result = append(result, Recipient{User: tele.User{ID: chatID}, ThreadID: threadID})
	}
	slog.Debug("recipients prepared", "recipients", result)
	return result, nil
}

// Send notification to all prepared recipients
func (b *Bot) Send(notification []string) (err error) {
	for _, dest := range b.destination {
		for _, txt := range notification {
			if _, err = b.bot.Send(&dest.User, txt, &tele.SendOptions{
				ParseMode: tele.ModeHTML, ThreadID: dest.ThreadID, DisableWebPagePreview: true}); err != nil {
				slog.Error("failed to send notification", "chat_id", dest.User.ID, "thread_id", dest.ThreadID, "error", err)
				return err
			}
		}
		slog.Debug("notification sent", "chat_id", dest.User.ID, "thread_id", dest.ThreadID, "parts_count", len(notification))
	}
	return nil
}
