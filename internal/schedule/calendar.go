package schedule

import (
	"slices"
	"time"

	scheduleerrors "go-staffops/internal/schedule/errors"
)

const dayLayout = "2006-01-02"

// Window is the visible range: a single day, or a whole month.
type Window struct {
	day   time.Time
	year  int
	month time.Month
}

func DayWindow(d time.Time) Window {
	return Window{day: DateOnly(d)}
}

func MonthWindow(year int, month time.Month) (Window, error) {
	if month < time.January || month > time.December || year < 1 {
		return Window{}, scheduleerrors.ErrInvalidWindow
	}
	return Window{year: year, month: month}, nil
}

func (w Window) IsDay() bool { return !w.day.IsZero() }

func (w Window) IsZero() bool { return w.day.IsZero() && w.month == 0 }

func (w Window) Day() time.Time { return w.day }

// Bounds is the first and last date of the view: the day itself, or the
// first and last day of the month.
func (w Window) Bounds() (time.Time, time.Time) {
	if w.IsDay() {
		return w.day, w.day
	}
	first := time.Date(w.year, w.month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// FetchRange is the inclusive range of records needed to fill the view. A
// day view reaches the whole Sunday-Saturday week because its shifts are
// placed on this week's matching weekday.
func (w Window) FetchRange() (time.Time, time.Time) {
	if w.IsDay() {
		start := w.day.AddDate(0, 0, -int(w.day.Weekday()))
		return start, start.AddDate(0, 0, 6)
	}
	return w.Bounds()
}

func (w Window) Contains(d time.Time) bool {
	from, to := w.FetchRange()
	d = DateOnly(d)
	return !d.Before(from) && !d.After(to)
}

func (w Window) String() string {
	if w.IsDay() {
		return DayKey(w.day)
	}
	if w.IsZero() {
		return ""
	}
	return time.Date(w.year, w.month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// ExpandDates maps weekdays onto concrete dates of the window. The result
// is sorted ascending and has no duplicates.
func ExpandDates(weekdays []time.Weekday, w Window) []time.Time {
	if len(weekdays) == 0 || w.IsZero() {
		return []time.Time{}
	}

	if w.IsDay() {
		dates := make([]time.Time, 0, len(weekdays))
		for _, wd := range weekdays {
			d := w.day.AddDate(0, 0, int(wd)-int(w.day.Weekday()))
			if !slices.ContainsFunc(dates, d.Equal) {
				dates = append(dates, d)
			}
		}
		slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
		return dates
	}

	first, last := w.Bounds()
	dates := make([]time.Time, 0, 31)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if slices.Contains(weekdays, d.Weekday()) {
			dates = append(dates, d)
		}
	}
	return dates
}

// DateOnly drops the time of day, keeping the calendar date as seen in the
// value's own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

func DayKey(t time.Time) string {
	return DateOnly(t).Format(dayLayout)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, scheduleerrors.ErrInvalidDate
	}
	return t, nil
}
