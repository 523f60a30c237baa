package window

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is one calendar month of statement data.
type Window struct {
	Year  int
	Month time.Month
}

// Of returns the window containing t.
func Of(t time.Time) Window {
	return Window{Year: t.Year(), Month: t.Month()}
}

// String returns the window as "2023-05".
func (w Window) String() string {
	return fmt.Sprintf("%04d-%02d", w.Year, int(w.Month))
}

// MM returns the two-digit month, e.g. "05".
func (w Window) MM() string {
	return fmt.Sprintf("%02d", int(w.Month))
}

// YY returns the two-digit year, e.g. "23".
func (w Window) YY() string {
	return fmt.Sprintf("%02d", w.Year%100)
}

// Prev returns the window one month earlier.
func (w Window) Prev() Window {
	if w.Month == time.January {
		return Window{Year: w.Year - 1, Month: time.December}
	}
	return Window{Year: w.Year, Month: w.Month - 1}
}

// After reports whether w is strictly later than o.
func (w Window) After(o Window) bool {
	if w.Year != o.Year {
		return w.Year > o.Year
	}
	return w.Month > o.Month
}

// IsCurrent reports whether w is the month containing today.
func (w Window) IsCurrent(today time.Time) bool {
	return w == Of(today)
}

// Range returns every window from today's month back to, but not including,
// the epoch's month. Newest first; contiguous with no duplicates. Returns nil
// when today is not after the epoch month.
func Range(today, epoch time.Time) []Window {
	stop := Of(epoch)
	var windows []Window
	for w := Of(today); w.After(stop); w = w.Prev() {
		windows = append(windows, w)
	}
	return windows
}

// Parse parses "2023-05" into a Window.
func Parse(s string) (Window, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("invalid window format: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("invalid year in window %q: %w", s, err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("invalid month in window %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return Window{}, fmt.Errorf("month out of range in window %q", s)
	}

	return Window{Year: year, Month: time.Month(month)}, nil
}
