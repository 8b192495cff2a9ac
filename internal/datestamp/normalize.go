package datestamp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDate reports a raw tag value that could not be turned into
// a usable calendar date.
var ErrInvalidDate = errors.New("invalid date")

// CanonicalDateTime is a parsed and field-validated date/time.
type CanonicalDateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// String renders the canonical zero-padded form accepted by Normalize.
func (c CanonicalDateTime) String() string {
	return fmt.Sprintf("%04d:%02d:%02d %02d:%02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}

// ShortForm renders the year/month form used for directory routing.
func (c CanonicalDateTime) ShortForm() string {
	return fmt.Sprintf("%04d/%02d", c.Year, c.Month)
}

// LongForm renders the compact form used in archive file names.
func (c CanonicalDateTime) LongForm() string {
	return fmt.Sprintf("%04d%02d%02d_%02d%02d%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}

var (
	// Strips CJK characters and Latin letters (locale am/pm words,
	// field labels) while leaving digits and punctuation alone.
	letterNoise = regexp.MustCompile(`[\x{4E00}-\x{9FA5}A-Za-z]`)
	separators  = regexp.MustCompile(`[-/]`)
	// Greedy prefix so a trailing date/time group wins when the raw
	// text carries more than one digit run.
	dateTimeShape = regexp.MustCompile(`^.*(\d{4}):(\d{1,2}):(\d{1,2})\s+(\d{1,2}):(\d{1,2}):(\d{1,2})`)
)

const canonicalLayout = "2006:01:02 15:04:05"

// Normalize parses one loosely formatted date/time string into a
// CanonicalDateTime. Textual noise is stripped, `-` and `/` become
// `:`, and the remainder must contain a year:month:day hour:minute:second
// group. Year, month and day outside their ranges reject the value;
// hour, minute and second are wrapped by modulo instead. The rendered
// result is re-parsed with a strict calendar layout so impossible days
// (Feb 30, Apr 31) are rejected even though the field check passed.
func Normalize(raw string) (CanonicalDateTime, error) {
	cleaned := letterNoise.ReplaceAllString(raw, "")
	cleaned = separators.ReplaceAllString(cleaned, ":")

	groups := dateTimeShape.FindStringSubmatch(cleaned)
	if groups == nil {
		return CanonicalDateTime{}, fmt.Errorf("%w: no date/time group in %q", ErrInvalidDate, raw)
	}

	fields := make([]int, 6)
	for i := range fields {
		value, err := strconv.Atoi(groups[i+1])
		if err != nil {
			return CanonicalDateTime{}, fmt.Errorf("%w: parse field %q: %v", ErrInvalidDate, groups[i+1], err)
		}
		fields[i] = value
	}

	c := CanonicalDateTime{
		Year:   fields[0],
		Month:  fields[1],
		Day:    fields[2],
		Hour:   fields[3],
		Minute: fields[4],
		Second: fields[5],
	}

	switch {
	case c.Year < 1900 || c.Year > 2050:
		return CanonicalDateTime{}, fmt.Errorf("%w: year %d out of range", ErrInvalidDate, c.Year)
	case c.Month < 1 || c.Month > 12:
		return CanonicalDateTime{}, fmt.Errorf("%w: month %d out of range", ErrInvalidDate, c.Month)
	case c.Day < 1 || c.Day > 31:
		return CanonicalDateTime{}, fmt.Errorf("%w: day %d out of range", ErrInvalidDate, c.Day)
	}

	// Deliberate leniency: clock fields wrap instead of rejecting.
	c.Hour = ((c.Hour % 24) + 24) % 24
	c.Minute = ((c.Minute % 60) + 60) % 60
	c.Second = ((c.Second % 60) + 60) % 60

	if _, err := time.Parse(canonicalLayout, c.String()); err != nil {
		return CanonicalDateTime{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDate, c.String())
	}
	return c, nil
}
