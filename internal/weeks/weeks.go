// Package weeks computes the Monday-anchored reporting weeks the portal is
// partitioned by, and their Korean display labels.
package weeks

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// IDLayout formats a week id: the date of its Monday.
const IDLayout = "2006-01-02"

var ordinals = []string{"첫째", "둘째", "셋째", "넷째", "다섯째"}

// Week is one reporting period, Monday 00:00 through Sunday.
type Week struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Calendar produces weeks in a fixed time zone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar loads the named zone, e.g. "Asia/Seoul".
func NewCalendar(zone string) (*Calendar, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return &Calendar{loc: loc, now: time.Now}, nil
}

// Location is the calendar's zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now is the current instant in the calendar's zone.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// StartOfWeek returns the Monday 00:00 on or before t, in t's location.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// Label renders a week as "2024 3월 첫째주". The ordinal counts Mondays of
// the Monday's own month.
func Label(monday time.Time) string {
	y, m, _ := monday.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, monday.Location())
	toMonday := (8 - int(first.Weekday())) % 7
	firstMonday := first.AddDate(0, 0, toMonday)

	ordinal := 1
	if diff := daysBetween(firstMonday, monday); diff >= 0 {
		ordinal = diff/7 + 1
	}
	return fmt.Sprintf("%d %d월 %s주", y, int(m), ordinalName(ordinal))
}

func ordinalName(n int) string {
	if n >= 1 && n <= len(ordinals) {
		return ordinals[n-1]
	}
	return fmt.Sprintf("%d째", n)
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// Of builds the week that starts on monday.
func Of(monday time.Time) Week {
	start := StartOfWeek(monday)
	return Week{
		ID:    start.Format(IDLayout),
		Label: Label(start),
		Start: start,
		End:   start.AddDate(0, 0, 6),
	}
}

// Rolling returns the n most recent weeks, newest first, as of t.
func Rolling(t time.Time, n int) []Week {
	out := make([]Week, 0, n)
	cur := StartOfWeek(t)
	for i := 0; i < n; i++ {
		out = append(out, Of(cur))
		cur = cur.AddDate(0, 0, -7)
	}
	return out
}

// Rolling returns the n most recent weeks as of the calendar's now.
func (c *Calendar) Rolling(n int) []Week {
	return Rolling(c.Now(), n)
}

// Parse validates a week id and returns its week. The id must be a Monday.
func (c *Calendar) Parse(id string) (Week, error) {
	return Parse(id, c.loc)
}

// Parse validates a week id in loc.
func Parse(id string, loc *time.Location) (Week, error) {
	d, err := time.ParseInLocation(IDLayout, id, loc)
	if err != nil {
		return Week{}, fmt.Errorf("invalid week id %q: %w", id, err)
	}
	if d.Weekday() != time.Monday {
		return Week{}, fmt.Errorf("invalid week id %q: not a Monday", id)
	}
	return Of(d), nil
}

// IDs lists the ids of ws in order.
func IDs(ws []Week) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.ID)
	}
	return out
}
