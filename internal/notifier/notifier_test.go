package notifier

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kettari/games-bot/internal/entity"
)

var now = time.Date(2025, 10, 6, 12, 0, 0, 0, entity.Moscow)

func session(id string, day int, free *int) entity.Session {
	return entity.Session{
		ID:        id,
		Date:      time.Date(2025, 10, day, 19, 0, 0, 0, entity.Moscow).UTC(),
		Title:     "Игра " + id,
		SpotsFree: free,
	}
}

func TestDiff(t *testing.T) {
	previous := []entity.Session{
		session("kept", 8, entity.IntPtr(2)),
		session("freed", 9, entity.IntPtr(0)),
		session("gone", 10, nil),
		session("past", 5, nil),
		session("filled", 11, entity.IntPtr(1)),
	}
	current := []entity.Session{
		session("kept", 8, entity.IntPtr(1)),
		session("freed", 9, entity.IntPtr(1)),
		session("fresh", 12, nil),
		session("filled", 11, entity.IntPtr(0)),
		session("fresh-past", 4, nil),
	}

	got := Diff(previous, current, now)
	want := map[string]Event{"freed": EventBecomeJoinable, "fresh": EventNew, "gone": EventCancelled}
	if len(got) != len(want) {
		t.Fatalf("Diff() = %+v, want %d changes", got, len(want))
	}
	for _, c := range got {
		if want[c.Session.ID] != c.Event {
			t.Errorf("Diff() reported %s as %s", c.Session.ID, c.Event)
		}
	}
}

func TestDiff_FirstRun(t *testing.T) {
	got := Diff(nil, []entity.Session{session("a", 8, nil), session("b", 9, nil)}, now)
	if len(got) != 2 || got[0].Event != EventNew {
		t.Errorf("Diff(nil, ...) = %+v", got)
	}
}

type recordingDispatcher struct {
	sent []string
	err  error
}

func (r *recordingDispatcher) Send(notification []string) error {
	r.sent = append(r.sent, notification...)
	return r.err
}

func TestSubject_Notify(t *testing.T) {
	bot := &recordingDispatcher{}
	var s Subject
	s.Register(NewGameObserver(bot))
	s.Register(BecomeJoinableGameObserver(bot))
	s.Register(CancelledGameObserver(bot))

	s.Notify([]Change{
		{Session: session("a", 8, nil), Event: EventNew},
		{Session: session("b", 9, entity.IntPtr(1)), Event: EventBecomeJoinable},
	})

	if len(bot.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(bot.sent))
	}
	if !strings.Contains(bot.sent[0], "Новая игра") || !strings.Contains(bot.sent[0], "Игра a") {
		t.Errorf("new game message = %q", bot.sent[0])
	}
	if !strings.Contains(bot.sent[1], "Освободились места") || !strings.Contains(bot.sent[1], "<b>ЧЕТВЕРГ</b> (09.10)") {
		t.Errorf("joinable message = %q", bot.sent[1])
	}
}

func TestMessageObserver_SendError(t *testing.T) {
	bot := &recordingDispatcher{err: errors.New("telegram down")}
	o := CancelledGameObserver(bot)
	s := session("a", 8, nil)
	o.Update(&s, EventCancelled)
	if len(bot.sent) != 1 {
		t.Errorf("sent %d messages, want 1", len(bot.sent))
	}
}
