// Package availability answers whether live support is open at a given time
// and renders the status shown on every page.
package availability

import "time"

// Support is open every weekend day, and on weekdays from 18:00 until midnight.
const (
	openHour  = 18
	closeHour = 24

	// Schedule is the human readable opening schedule.
	Schedule = "Mon–Fri 18:00–24:00 & Weekend"
)

// Clock returns the current instant.
type Clock func() time.Time

// Status is the availability payload rendered into pages.
type Status struct {
	IsAvailable      bool   `json:"is_available"`
	Schedule         string `json:"schedule"`
	StatusText       string `json:"status_text"`
	StatusColor      string `json:"status_color"`
	StatusBg         string `json:"status_bg"`
	StatusBorder     string `json:"status_border"`
	StatusBullet     string `json:"status_bullet"`
	StatusBulletPing string `json:"status_bullet_ping"`
	StatusTextColor  string `json:"status_text_color"`
}

// IsAvailableAt reports whether support is open at t, read in t's own location.
// Saturday and Sunday are open all day; Monday to Friday only in [18:00, 24:00).
func IsAvailableAt(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	h := t.Hour()
	return h >= openHour && h < closeHour
}

// Engine evaluates availability against a clock in the business time zone.
type Engine struct {
	loc    *time.Location
	clock  Clock
	labels labels
}

// NewEngine creates an Engine. A nil location means UTC and a nil clock means time.Now.
// locale selects the status labels ("en" or "it"); unknown locales fall back to "en".
func NewEngine(loc *time.Location, clock Clock, locale string) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	return &Engine{loc: loc, clock: clock, labels: labelsFor(locale)}
}

// IsAvailable reports availability at now, or at the given instant when one is supplied.
func (e *Engine) IsAvailable(at ...time.Time) bool {
	return IsAvailableAt(e.localTime(at...))
}

// Status builds the status payload for now, or for the given instant.
func (e *Engine) Status(at ...time.Time) Status {
	return e.render(IsAvailableAt(e.localTime(at...)))
}

func (e *Engine) localTime(at ...time.Time) time.Time {
	if len(at) > 0 {
		return at[0].In(e.loc)
	}
	return e.clock().In(e.loc)
}

func (e *Engine) render(open bool) Status {
	s := Status{IsAvailable: open, Schedule: Schedule}
	if open {
		s.StatusText = e.labels.open
		s.StatusColor = "green"
		s.StatusBg = "bg-green-500/10"
		s.StatusBorder = "border-green-500/20"
		s.StatusBullet = "bg-green-500"
		s.StatusBulletPing = "bg-green-400"
		s.StatusTextColor = "text-green-400"
		return s
	}
	s.StatusText = e.labels.closed
	s.StatusColor = "red"
	s.StatusBg = "bg-red-500/10"
	s.StatusBorder = "border-red-500/20"
	s.StatusBullet = "bg-red-500"
	s.StatusBulletPing = "bg-red-400"
	s.StatusTextColor = "text-red-400"
	return s
}

type labels struct {
	open   string
	closed string
}

func labelsFor(locale string) labels {
	if locale == "it" {
		return labels{open: "Disponibile Ora", closed: "Attualmente Chiuso"}
	}
	return labels{open: "Available Now", closed: "Currently Closed"}
}
