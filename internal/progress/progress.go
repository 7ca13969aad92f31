// Package progress carries percent and message events from a running
// detection or extraction unit to whoever is watching it.
package progress

import (
	"math"
	"sync"
)

// Reporter receives progress events. Percent is in [0, 100].
type Reporter interface {
	Progress(percent float64)
	Message(msg string)
}

// Funcs adapts two optional callbacks to a Reporter.
type Funcs struct {
	OnProgress func(percent float64)
	OnMessage  func(msg string)
}

func (f Funcs) Progress(percent float64) {
	if f.OnProgress != nil {
		f.OnProgress(percent)
	}
}

func (f Funcs) Message(msg string) {
	if f.OnMessage != nil {
		f.OnMessage(msg)
	}
}

// Discard drops every event.
var Discard Reporter = Funcs{}

// OrDiscard returns r, or Discard when r is nil.
func OrDiscard(r Reporter) Reporter {
	if r == nil {
		return Discard
	}
	return r
}

// Monotonic forwards percents clamped to [0, 100] and never lower than the
// last one forwarded. Repeated values are dropped.
type Monotonic struct {
	next Reporter

	mu   sync.Mutex
	last float64
	sent bool
}

func NewMonotonic(next Reporter) *Monotonic {
	return &Monotonic{next: OrDiscard(next)}
}

func (m *Monotonic) Progress(percent float64) {
	if math.IsNaN(percent) {
		return
	}
	percent = math.Max(0, math.Min(100, percent))

	m.mu.Lock()
	if m.sent && percent <= m.last {
		m.mu.Unlock()
		return
	}
	m.last = percent
	m.sent = true
	m.mu.Unlock()

	m.next.Progress(percent)
}

func (m *Monotonic) Message(msg string) {
	m.next.Message(msg)
}

// Percent returns done/total as a percentage rounded to two decimals.
func Percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(done)*10000/float64(total)) / 100
}

// Span maps the [0, 100] percents of one stage onto [from, to] of next, so
// several stages can share a single progress bar.
func Span(next Reporter, from, to float64) Reporter {
	next = OrDiscard(next)
	return Funcs{
		OnProgress: func(percent float64) {
			next.Progress(from + (to-from)*percent/100)
		},
		OnMessage: next.Message,
	}
}
