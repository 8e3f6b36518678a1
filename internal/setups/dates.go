package setups

import (
	"strconv"
	"strings"
	"time"
)

// Alert dates sit in the message header ("A+ Trade Setups - Oct 15"), so only
// the opening lines are scanned.
const maxDateScanLines = 3

// DetectDate finds the calendar date an alert applies to by scanning its
// first non-empty lines. Falls back to ref, or today when ref is zero. The
// result is normalized to midnight UTC.
func DetectDate(text string, ref time.Time) time.Time {
	if ref.IsZero() {
		ref = time.Now()
	}
	ref = midnightUTC(ref)

	scanned := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		scanned++
		if scanned > maxDateScanLines {
			break
		}
		if d, ok := dateFromLine(line, ref); ok {
			return d
		}
	}
	return ref
}

func dateFromLine(line string, ref time.Time) (time.Time, bool) {
	if m := isoDateRe.FindStringSubmatch(line); m != nil {
		if d, ok := calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return d, true
		}
	}

	if m := monthDateRe.FindStringSubmatch(line); m != nil {
		year := ref.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
		if d, ok := calendarDate(year, monthIndex[strings.ToLower(m[1])], atoi(m[2])); ok {
			return d, true
		}
	}

	if m := slashDateRe.FindStringSubmatchIndex(line); m != nil {
		// "9/21 EMA" is an indicator reference, not a date.
		if !indicatorRefRe.MatchString(line[m[1]:]) {
			year := ref.Year()
			if m[6] >= 0 {
				year = atoi(line[m[6]:m[7]])
				if year < 100 {
					year += 2000
				}
			}
			if d, ok := calendarDate(year, atoi(line[m[2]:m[3]]), atoi(line[m[4]:m[5]])); ok {
				return d, true
			}
		}
	}

	return time.Time{}, false
}

// calendarDate validates components by round-tripping through time.Date,
// which rejects overflow like February 31st.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
