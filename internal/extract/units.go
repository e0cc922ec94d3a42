package extract

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TimeUnits is a parsed CF time encoding, "<unit> since <reference>".
type TimeUnits struct {
	Unit      time.Duration
	Reference time.Time
}

var unitNames = map[string]time.Duration{
	"microseconds": time.Microsecond,
	"microsecond":  time.Microsecond,
	"us":           time.Microsecond,
	"milliseconds": time.Millisecond,
	"millisecond":  time.Millisecond,
	"ms":           time.Millisecond,
	"seconds":      time.Second,
	"second":       time.Second,
	"secs":         time.Second,
	"sec":          time.Second,
	"s":            time.Second,
	"minutes":      time.Minute,
	"minute":       time.Minute,
	"mins":         time.Minute,
	"min":          time.Minute,
	"hours":        time.Hour,
	"hour":         time.Hour,
	"hrs":          time.Hour,
	"hr":           time.Hour,
	"h":            time.Hour,
	"days":         24 * time.Hour,
	"day":          24 * time.Hour,
	"d":            24 * time.Hour,
}

var referenceLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-1-2 15:04:05",
	"2006-1-2",
}

// ParseTimeUnits parses a CF units string such as "days since 2023-01-01"
// or "seconds since 1970-01-01 00:00:00 UTC". The reference is taken as UTC
// unless it carries an offset.
func ParseTimeUnits(s string) (TimeUnits, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeUnits{}, fmt.Errorf("time coordinate has no units attribute")
	}
	unit, ref, ok := strings.Cut(s, " since ")
	if !ok {
		return TimeUnits{}, fmt.Errorf("time units %q: expected \"<unit> since <reference>\"", s)
	}
	d, ok := unitNames[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return TimeUnits{}, fmt.Errorf("time units %q: unsupported unit %q", s, unit)
	}

	ref = strings.TrimSpace(ref)
	ref = strings.TrimSuffix(ref, " UTC")
	ref = strings.TrimSuffix(ref, "Z")
	for _, layout := range referenceLayouts {
		if t, err := time.Parse(layout, ref); err == nil {
			return TimeUnits{Unit: d, Reference: t.UTC()}, nil
		}
	}
	return TimeUnits{}, fmt.Errorf("time units %q: cannot parse reference date %q", s, ref)
}

// Time converts an encoded value to a UTC time.
func (u TimeUnits) Time(v float64) (time.Time, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, fmt.Errorf("invalid time value %v", v)
	}
	// Whole seconds and the remainder are added separately so offsets of
	// more than 292 years from the reference do not overflow a Duration.
	secs := v * u.Unit.Seconds()
	if math.Abs(secs) > 1e15 {
		return time.Time{}, fmt.Errorf("time value %v out of range", v)
	}
	whole, frac := math.Modf(secs)
	t := time.Unix(u.Reference.Unix()+int64(whole), int64(u.Reference.Nanosecond())+int64(math.Round(frac*1e9)))
	return t.UTC(), nil
}
