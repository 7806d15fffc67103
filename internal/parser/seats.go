package parser

import "strings"

// SeatSignal names the rule that decided availability.
type SeatSignal string

const (
	SeatsTableFull  SeatSignal = "table_full"
	SeatsRecruiting SeatSignal = "recruiting"
	SeatsNone       SeatSignal = "no_seats"
	SeatsRemaining  SeatSignal = "remaining"
	SeatsRatio      SeatSignal = "ratio"
	SeatsUnknown    SeatSignal = "unknown"
)

// Seats is the recognized availability. Nil counts are unknown.
type Seats struct {
	Total  *int
	Free   *int
	Signal SeatSignal
}

func seats(total, free *int, signal SeatSignal) Seats {
	return Seats{Total: total, Free: free, Signal: signal}
}

func intPtr(v int) *int { return &v }

// RecognizeSeats maps availability phrases to free/total counts. The first rule that
// matches wins; with no signal the session is assumed to have one free seat.
//
// "за столом N мест" means the table is being recruited: total N, at least one free.
func (p *Profile) RecognizeSeats(text string) Seats {
	c := p.compiled
	text = strings.TrimSpace(text)
	if text == "" {
		return seats(nil, intPtr(1), SeatsUnknown)
	}
	if c.seatsFull.MatchString(text) {
		return seats(nil, intPtr(0), SeatsTableFull)
	}
	if m := c.seatsRecruiting.FindStringSubmatch(text); m != nil {
		if n := atoi(m[1]); n >= 0 {
			return seats(intPtr(n), intPtr(1), SeatsRecruiting)
		}
	}
	if c.seatsNone.MatchString(text) {
		return seats(nil, intPtr(0), SeatsNone)
	}
	if m := c.seatsRemaining.FindStringSubmatch(text); m != nil {
		free := atoi(m[1])
		var total *int
		if len(m) > 2 && m[2] != "" {
			total = intPtr(atoi(m[2]))
		}
		return seats(total, intPtr(free), SeatsRemaining)
	}
	if m := c.seatsRatio.FindStringSubmatch(text); m != nil {
		taken, total := atoi(m[1]), atoi(m[2])
		return seats(intPtr(total), intPtr(max(total-taken, 0)), SeatsRatio)
	}
	return seats(nil, intPtr(1), SeatsUnknown)
}

// recognizeSeatsScoped prefers a dedicated seats element and falls back to the whole
// candidate text when the element carries no signal.
func (p *Profile) recognizeSeatsScoped(scoped, text string) Seats {
	if scoped != "" {
		if s := p.RecognizeSeats(scoped); s.Signal != SeatsUnknown {
			return s
		}
	}
	return p.RecognizeSeats(text)
}
