// Package datetime turns a user's wording and the model's datetime guess
// into the reservation start time.
package datetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

const (
	defaultHour = 19
)

var (
	clockPattern = regexp.MustCompile(`(\d{1,2})\s*[:.]\s*(\d{2})\s*(am|pm)?`)
	meridiemHour = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	atHour       = regexp.MustCompile(`\bat\s+(\d{1,2})\b`)
)

// Layouts tried for the model's datetime before the jinzhu/now defaults.
var modelLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Resolver is safe for concurrent use. Zero fields fall back to the wall
// clock and the local zone.
type Resolver struct {
	Now      func() time.Time
	Location *time.Location
}

func NewResolver() Resolver {
	return Resolver{Now: time.Now, Location: time.Local}
}

// Resolve never fails. Relative day words in the utterance win over the
// model's datetime; with neither, the answer is today at 19:00.
func (r Resolver) Resolve(utterance string, modelDatetime string) time.Time {
	current := r.now()
	text := strings.ToLower(utterance)

	if strings.Contains(text, "today") || strings.Contains(text, "tonight") || strings.Contains(text, "tomorrow") {
		day := current
		if strings.Contains(text, "tomorrow") {
			day = day.AddDate(0, 0, 1)
		}
		hour, minute := timeOfDay(text)
		return atClock(day, hour, minute)
	}

	if s := strings.TrimSpace(modelDatetime); s != "" {
		if t, err := r.parse(current, s); err == nil {
			return t
		}
	}

	return atClock(current, defaultHour, 0)
}

func (r Resolver) now() time.Time {
	fn := r.Now
	if fn == nil {
		fn = time.Now
	}
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	return fn().In(loc)
}

// parse fills fields missing from s with current's.
func (r Resolver) parse(current time.Time, s string) (time.Time, error) {
	cfg := &now.Config{
		WeekStartDay: time.Monday,
		TimeLocation: current.Location(),
		TimeFormats:  append(append([]string(nil), modelLayouts...), now.TimeFormats...),
	}
	return cfg.With(current).Parse(s)
}

// timeOfDay applies the first usable clock pattern, falling back to 19:00.
func timeOfDay(text string) (int, int) {
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		hour = applyMeridiem(hour, m[3])
		if validClock(hour, minute) {
			return hour, minute
		}
	}

	if m := meridiemHour.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		hour = applyMeridiem(hour, m[2])
		if validClock(hour, 0) {
			return hour, 0
		}
	}

	if m := atHour.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour > 0 && hour < 24 {
			return hour, 0
		}
	}

	return defaultHour, 0
}

func applyMeridiem(hour int, meridiem string) int {
	switch {
	case meridiem == "pm" && hour < 12:
		return hour + 12
	case meridiem == "am" && hour == 12:
		return 0
	default:
		return hour
	}
}

func validClock(hour, minute int) bool {
	return hour >= 0 && hour < 24 && minute >= 0 && minute < 60
}

func atClock(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
