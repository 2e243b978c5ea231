// Package schedule decides whether a group's block currently applies and
// provides the normalization rules for schedule edits. Everything here is
// pure: the caller supplies the instant, no clocks or stores are touched.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vinayskanse/blocky/internal/domain"
)

// DaysOfWeek is the canonical weekday vocabulary in display order.
var DaysOfWeek = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var dayIndex = map[string]int{
	"Mon": 0, "Tue": 1, "Wed": 2, "Thu": 3, "Fri": 4, "Sat": 5, "Sun": 6,
}

// weekdayName maps a time.Weekday into the canonical vocabulary.
func weekdayName(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "Mon"
	case time.Tuesday:
		return "Tue"
	case time.Wednesday:
		return "Wed"
	case time.Thursday:
		return "Thu"
	case time.Friday:
		return "Fri"
	case time.Saturday:
		return "Sat"
	default:
		return "Sun"
	}
}

// yesterdayName returns the canonical name of the day before d.
func yesterdayName(d time.Weekday) string {
	return weekdayName((d + 6) % 7)
}

// ParseClock parses a "HH:MM" (or "H:MM") 24-hour time-of-day string into
// minutes since midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return hour*60 + minute, nil
}

// IsCleared reports whether s is absent or the canonical cleared sentinel
// (empty days, empty start and end). The UI clears a schedule by writing the
// sentinel rather than removing it, so both forms must read the same.
func IsCleared(s *domain.Schedule) bool {
	return s == nil || (len(s.Days) == 0 && s.Start == "" && s.End == "")
}

// ClearSchedule returns the canonical cleared sentinel. Writing it is the
// only way to remove an existing schedule.
func ClearSchedule() domain.Schedule {
	return domain.Schedule{Days: []string{}, Start: "", End: ""}
}

// IsActiveNow reports whether g's block should be enforced at the given
// instant.
//
// A disabled group is never active. An enabled group without a schedule (or
// with the cleared sentinel) is always active. Otherwise the window
// [start, end) applies on every selected weekday; when start > end the
// window runs over midnight and the weekday check uses the day the window
// started, so a Fri 22:00-06:00 window is still active at Sat 05:00.
// A zero-width window (start == end, both set) is never active.
// Malformed times make the schedule never active.
func IsActiveNow(g domain.Group, now time.Time) bool {
	if !g.Enabled {
		return false
	}
	if IsCleared(g.Schedule) {
		return true
	}

	s := g.Schedule
	start, err := ParseClock(s.Start)
	if err != nil {
		return false
	}
	end, err := ParseClock(s.End)
	if err != nil {
		return false
	}
	if start == end {
		return false
	}

	tod := now.Hour()*60 + now.Minute()
	today := containsDay(s.Days, weekdayName(now.Weekday()))

	if start < end {
		return today && tod >= start && tod < end
	}

	// Over-midnight window: either today's portion after start, or the tail
	// of yesterday's window before end.
	yesterday := containsDay(s.Days, yesterdayName(now.Weekday()))
	return (today && tod >= start) || (yesterday && tod < end)
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if strings.TrimSpace(d) == day {
			return true
		}
	}
	return false
}

// ToggleDay returns days with day added if absent or removed if present.
// The result is in canonical Mon→Sun order regardless of input order.
func ToggleDay(days []string, day string) []string {
	out := make([]string, 0, len(days)+1)
	found := false
	for _, d := range days {
		if d == day {
			found = true
			continue
		}
		out = append(out, d)
	}
	if !found {
		out = append(out, day)
	}
	SortDays(out)
	return out
}

// SortDays sorts days in place into canonical Mon→Sun order. Unknown tokens
// sort after known ones, keeping their relative order stable.
func SortDays(days []string) {
	sort.SliceStable(days, func(i, j int) bool {
		ii, iok := dayIndex[days[i]]
		ji, jok := dayIndex[days[j]]
		if iok != jok {
			return iok
		}
		return ii < ji
	})
}

// NormalizeDomainText turns the one-domain-per-line edit text into a domain
// list: lines are trimmed and blanks dropped, first-seen order preserved.
// Duplicates are kept; the backend is the deduplication authority.
func NormalizeDomainText(text string) []string {
	domains := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		domains = append(domains, line)
	}
	return domains
}

// ActiveDomains returns the sorted union of domains across all groups active
// at the given instant. Domains are trimmed and lowercased so that casing
// differences between groups collapse to one entry.
func ActiveDomains(groups []domain.Group, now time.Time) []string {
	set := make(map[string]struct{})
	for _, g := range groups {
		if !IsActiveNow(g, now) {
			continue
		}
		for _, d := range g.Domains {
			d = strings.ToLower(strings.TrimSpace(d))
			if d == "" {
				continue
			}
			set[d] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
