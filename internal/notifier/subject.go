package notifier

import (
	"log/slog"
	"time"

	"github.com/kettari/games-bot/internal/entity"
)

type Event string

const (
	EventNew            Event = "new"
	EventBecomeJoinable Event = "become_joinable"
	EventCancelled      Event = "cancelled"
)

type Observer interface {
	Update(session *entity.Session, event Event)
}

// Change is one session that differs between two result sets.
type Change struct {
	Session entity.Session
	Event   Event
}

// Subject fans changes out to the registered observers.
type Subject struct {
	observers []Observer
}

func (s *Subject) Register(observer Observer) {
	s.observers = append(s.observers, observer)
}

func (s *Subject) Notify(changes []Change) {
	for i := range changes {
		s.notifyAll(&changes[i].Session, changes[i].Event)
	}
}

func (s *Subject) notifyAll(session *entity.Session, event Event) {
	for _, o := range s.observers {
		o.Update(session, event)
	}
}

// Diff compares the previous result set with the current one. Only sessions
// that have not started yet are reported:
//   - new: present now, absent before
//   - become_joinable: was full, has seats now
//   - cancelled: present before, absent now
func Diff(previous, current []entity.Session, now time.Time) []Change {
	before := make(map[string]entity.Session, len(previous))
	for _, s := range previous {
		before[s.ID] = s
	}
	seen := make(map[string]bool, len(current))

	var changes []Change
	for _, s := range current {
		seen[s.ID] = true
		if !s.Date.After(now) {
			continue
		}
		old, ok := before[s.ID]
		switch {
		case !ok:
			changes = append(changes, Change{Session: s, Event: EventNew})
		case old.Full() && !s.Full():
			changes = append(changes, Change{Session: s, Event: EventBecomeJoinable})
		}
	}
	for _, s := range previous {
		if !seen[s.ID] && s.Date.After(now) {
			changes = append(changes, Change{Session: s, Event: EventCancelled})
		}
	}
	slog.Debug("schedule changes detected", "changes_count", len(changes))
	return changes
}
