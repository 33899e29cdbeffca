// Package dates turns the free-text dates people type into replies into
// calendar dates.
package dates

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnparseable is returned when no layout and no fuzzy match produced a date.
var ErrUnparseable = errors.New("unrecognized date")

// ExactLayouts are tried in order against the whole input. Their order is
// externally visible: the first layout that consumes the entire string wins.
var ExactLayouts = []string{
	"2006-1-2",        // 2023-10-24
	"1/2/2006",        // 10/24/2023
	"2-1-2006",        // 24-10-2023
	"January 2, 2006", // October 24, 2023
	"Jan 2, 2006",     // Oct 24, 2023
	"2 January 2006",  // 24 October 2023
	"2 Jan 2006",      // 24 Oct 2023
}

// fuzzyLayouts cover common spellings outside the exact list.
var fuzzyLayouts = []string{
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan, 2006",
	"2 January, 2006",
	"2006/1/2",
	"2/1/2006",
	"2006.1.2",
	"2.1.2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
	"Mon Jan 2 2006",
	"Monday January 2 2006",
}

const edgePunct = ".,;:!?()[]\"'"

var ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)

// "Sept" is a common abbreviation that neither time nor dateparse accept.
var septAbbrev = regexp.MustCompile(`(?i)\bsept\b\.?`)

// Resolver parses dates with an ordered list of parsers; the first success wins.
type Resolver struct {
	parsers []func(string) (time.Time, bool)
}

// NewResolver returns a Resolver trying the exact layouts first and the fuzzy
// fallback last.
func NewResolver() *Resolver {
	r := &Resolver{}
	for _, layout := range ExactLayouts {
		r.parsers = append(r.parsers, layoutParser(layout))
	}
	r.parsers = append(r.parsers, fuzzy)
	return r
}

// Resolve returns the calendar date in s at UTC midnight.
func (r *Resolver) Resolve(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnparseable
	}
	for _, parse := range r.parsers {
		if t, ok := parse(s); ok {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, ErrUnparseable
}

// Resolve parses s with the default resolver.
func Resolve(s string) (time.Time, error) {
	return defaultResolver.Resolve(s)
}

var defaultResolver = NewResolver()

func layoutParser(layout string) func(string) (time.Time, bool) {
	return func(s string) (time.Time, bool) {
		t, err := time.Parse(layout, s)
		return t, err == nil
	}
}

// fuzzy accepts the fallback layouts and anything dateparse understands on
// the whole string, then looks for the longest run of words that parses with
// one of the layouts, ignoring the words around it.
func fuzzy(s string) (time.Time, bool) {
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = septAbbrev.ReplaceAllString(s, "Sep")
	if t, ok := parseAnyLayout(s); ok {
		return t, true
	}
	if t, ok := parseLoose(s); ok {
		return t, true
	}

	words := strings.Fields(s)
	for size := len(words); size > 0; size-- {
		for start := 0; start+size <= len(words); start++ {
			candidate := strings.Trim(strings.Join(words[start:start+size], " "), edgePunct)
			if candidate == "" {
				continue
			}
			if t, ok := parseAnyLayout(candidate); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func parseLoose(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
	return t, err == nil
}

func parseAnyLayout(s string) (time.Time, bool) {
	for _, layout := range ExactLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range fuzzyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
