package models

import "time"

// Window is the half-open telemetry interval [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// TelemetryWindow returns the previous calendar day as seen in loc at asOf:
// [yesterday 00:00, today 00:00). Calendar arithmetic keeps DST days whole.
func TelemetryWindow(asOf time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	local := asOf.In(loc)
	to := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{From: to.AddDate(0, 0, -1), To: to}
}
