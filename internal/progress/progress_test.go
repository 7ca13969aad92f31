package progress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	percents []float64
	messages []string
}

func (r *recorder) Progress(p float64) { r.percents = append(r.percents, p) }
func (r *recorder) Message(m string)   { r.messages = append(r.messages, m) }

func TestMonotonic(t *testing.T) {
	rec := &recorder{}
	m := NewMonotonic(rec)

	for _, p := range []float64{0, 10, 10, 5, 50, -3, 120, 99, math.NaN()} {
		m.Progress(p)
	}
	m.Message("done")

	assert.Equal(t, []float64{0, 10, 50, 100}, rec.percents)
	assert.Equal(t, []string{"done"}, rec.messages)
}

func TestFuncsNil(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Progress(10)
		Discard.Message("x")
		OrDiscard(nil).Message("y")
	})
}

func TestFuncs(t *testing.T) {
	var got float64
	var msg string
	r := Funcs{
		OnProgress: func(p float64) { got = p },
		OnMessage:  func(m string) { msg = m },
	}
	r.Progress(42)
	r.Message("hello")
	assert.Equal(t, 42.0, got)
	assert.Equal(t, "hello", msg)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(1, 0))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 100.0, Percent(3, 3))
}

func TestSpan(t *testing.T) {
	rec := &recorder{}
	detect := Span(rec, 0, 80)
	extract := Span(rec, 80, 100)

	detect.Progress(0)
	detect.Progress(50)
	detect.Progress(100)
	extract.Progress(50)
	extract.Message("done")

	assert.Equal(t, []float64{0, 40, 80, 90}, rec.percents)
	assert.Equal(t, []string{"done"}, rec.messages)
}
