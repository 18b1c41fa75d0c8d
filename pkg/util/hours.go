package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/viraleats/viraleats-backend/internal/app/model"
)

var timeOfDayRe = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)\s*$`)

// IsOpenNow reports whether a restaurant is open at the given instant
// according to its day-keyed hours map. Unknown, unparseable or "Closed"
// entries count as closed; only an explicit match counts as open.
//
// Overnight ranges like "6pm-2am" spill into the following day, so a
// restaurant with {friday: "6pm-2am"} is open on Saturday at 01:00.
func IsOpenNow(hours model.HoursMap, now time.Time) bool {
	if len(hours) == 0 {
		return false
	}

	minutes := now.Hour()*60 + now.Minute()
	today := weekdayKey(now.Weekday())
	yesterday := weekdayKey(now.Weekday() - 1)

	if open, close, ok := parseHoursRange(hours[today]); ok {
		if open <= close {
			if minutes >= open && minutes < close {
				return true
			}
		} else if minutes >= open {
			// Overnight range, the pre-midnight part.
			return true
		}
	}

	// Post-midnight tail of yesterday's overnight range.
	if open, close, ok := parseHoursRange(hours[yesterday]); ok {
		if open > close && minutes < close {
			return true
		}
	}

	return false
}

func weekdayKey(d time.Weekday) string {
	// time.Weekday is cyclic; -1 from Sunday must wrap to Saturday.
	if d < 0 {
		d += 7
	}
	return strings.ToLower(d.String())
}

// parseHoursRange parses a free-text range like "10am-10pm" or
// "10:30am-9:30pm" into open/close minutes since midnight.
func parseHoursRange(s string) (open, close int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "closed") {
		return 0, 0, false
	}

	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	open, ok = parseTimeOfDay(parts[0])
	if !ok {
		return 0, 0, false
	}
	close, ok = parseTimeOfDay(parts[1])
	if !ok {
		return 0, 0, false
	}
	return open, close, true
}

func parseTimeOfDay(s string) (int, bool) {
	m := timeOfDayRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, false
	}

	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return 0, false
		}
	}

	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(m[3], "pm") {
		hour += 12
	}

	return hour*60 + minute, true
}
