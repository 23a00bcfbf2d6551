package clock

import "time"

// Clock is the sole time input to expansion and classification. Everything
// downstream is pure given Now().
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant. Test fixtures and deterministic
// reclassification use it.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

func At(t time.Time) Fixed { return Fixed{T: t} }
