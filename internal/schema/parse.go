package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateOnly truncates a time to local midnight. All date comparisons in the
// query engine are date-only.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var plusDaysRe = regexp.MustCompile(`^\+(\d+)d$`)

// ParseDateLiteral resolves a date literal relative to now. Supported forms:
// today, tomorrow, yesterday, yyyy-mm-dd, +<n>d, and weekday names (next
// occurrence, never today itself).
func ParseDateLiteral(raw string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	today := DateOnly(now)

	switch s {
	case "":
		return time.Time{}, fmt.Errorf("empty date literal")
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if m := plusDaysRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day offset %q", raw)
		}
		return today.AddDate(0, 0, n), nil
	}

	if wd, ok := weekdays[s]; ok {
		delta := (int(wd) - int(today.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return today.AddDate(0, 0, delta), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date literal %q", raw)
}

// ParseDateRange resolves a "start..end" literal, both ends inclusive. A bare
// literal yields a single-day range.
func ParseDateRange(raw string, now time.Time) (start, end time.Time, err error) {
	if idx := strings.Index(raw, ".."); idx >= 0 {
		start, err = ParseDateLiteral(raw[:idx], now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err = ParseDateLiteral(raw[idx+2:], now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("range end %q before start", raw)
		}
		return start, end, nil
	}
	start, err = ParseDateLiteral(raw, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start, nil
}

var durationRe = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?$`)

// ParseDurationMinutes parses a duration literal into minutes. Accepted forms:
// a bare number of minutes, <n>h, <n>m, and <n>h<n>m.
func ParseDurationMinutes(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration must be positive, got %d", n)
		}
		return n, nil
	}
	m := durationRe.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("unrecognized duration %q", raw)
	}
	minutes := 0
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		minutes += h * 60
	}
	if m[2] != "" {
		mm, _ := strconv.Atoi(m[2])
		minutes += mm
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", raw)
	}
	return minutes, nil
}

// DurationLike reports whether a free-text token could plausibly be a
// duration. Used by parameter-schema presence checks, not for parsing.
func DurationLike(token string) bool {
	_, err := ParseDurationMinutes(token)
	return err == nil
}

// ParsePriority parses p1|p2|p3 or a bare 1..3 digit.
func ParsePriority(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "p")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unrecognized priority %q", raw)
	}
	if n < 1 || n > 3 {
		return 0, fmt.Errorf("priority out of range: %d", n)
	}
	return n, nil
}

// ParseIDSet parses an identifier-set literal such as "2,4-6,4" into a
// deduplicated ordered list. Descending ranges ("7-5") are materialized in
// descending order.
func ParseIDSet(raw string) ([]int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("empty id set")
	}
	seen := make(map[int]bool)
	var ids []int
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, "-"); idx > 0 {
			lo, err := strconv.Atoi(part[:idx])
			if err != nil {
				return nil, fmt.Errorf("invalid id range %q", part)
			}
			hi, err := strconv.Atoi(part[idx+1:])
			if err != nil {
				return nil, fmt.Errorf("invalid id range %q", part)
			}
			if lo <= hi {
				for id := lo; id <= hi; id++ {
					add(id)
				}
			} else {
				for id := lo; id >= hi; id-- {
					add(id)
				}
			}
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		add(id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("empty id set %q", raw)
	}
	return ids, nil
}

var idSetRe = regexp.MustCompile(`^\d+(-\d+)?(,\d+(-\d+)?)*$`)

// IDSetLike reports whether a free-text token looks like an id or id-range.
func IDSetLike(token string) bool {
	return idSetRe.MatchString(token)
}

var tagRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]*$`)

// ValidTag reports whether a tag uses the allowed character set.
func ValidTag(tag string) bool {
	return tagRe.MatchString(tag)
}

// ParseBoolLiteral accepts the usual spellings of a boolean flag value.
func ParseBoolLiteral(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized boolean %q", raw)
}
