package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnresolvable is returned when a phrase contains no extractable
// absolute or relative date/time. The resolver never guesses.
var ErrUnresolvable = errors.New("could not resolve date/time phrase")

// explicitLayouts are tried before natural-language parsing so an
// already-precise extractor output does not go through heuristics.
var explicitLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"2006-01-02 3:04 pm",
	"2006-01-02 3:04pm",
	"2006-01-02 3 PM",
	"2006-01-02 3PM",
	"2006-01-02 3 pm",
	"2006-01-02 3pm",
}

// fillerWords may legitimately sit outside the parser's matched span
// ("April 20 at 3pm" matches without the "at" in some rule orders).
// Anything else left unmatched means the parser only understood part of
// the phrase, and a partial understanding must not become a timestamp.
var fillerWords = map[string]bool{
	"at": true,
	"on": true,
}

// Resolver turns loosely-formatted date and time text into absolute
// timestamps in a fixed configured timezone, independent of where the
// process runs.
type Resolver struct {
	loc    *time.Location
	parser *when.Parser
}

// NewResolver creates a resolver for the given IANA timezone name.
func NewResolver(timezone string) (*Resolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &Resolver{loc: loc, parser: w}, nil
}

// Location returns the resolver's configured timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve parses dateText and timeText as one combined phrase anchored to
// referenceNow in the configured timezone.
func (r *Resolver) Resolve(dateText, timeText string, referenceNow time.Time) (time.Time, error) {
	phrase := strings.TrimSpace(strings.TrimSpace(dateText) + " " + strings.TrimSpace(timeText))
	if phrase == "" {
		return time.Time{}, ErrUnresolvable
	}

	for _, layout := range explicitLayouts {
		if t, err := time.ParseInLocation(layout, phrase, r.loc); err == nil {
			return t, nil
		}
	}

	result, err := r.parser.Parse(phrase, referenceNow.In(r.loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", phrase, err)
	}
	if result == nil {
		return time.Time{}, ErrUnresolvable
	}

	// The parser returns a result when any fragment of the phrase
	// matches, silently carrying the unmatched components over from the
	// reference time. "2026-04-16 3pm" must not resolve through a
	// partial match of "16 3", nor "April 20 at 9" through "April 20"
	// alone. Require the match to cover the whole phrase.
	leftover := phrase[:result.Index] + phrase[result.Index+len(result.Text):]
	for _, word := range strings.Fields(leftover) {
		if !fillerWords[strings.ToLower(word)] {
			return time.Time{}, fmt.Errorf("%w: unmatched fragment %q in %q", ErrUnresolvable, word, phrase)
		}
	}

	return result.Time, nil
}

// Window resolves the meeting start and derives the end from a whole
// number of minutes. Duration validation is the caller's concern.
func (r *Resolver) Window(dateText, timeText string, durationMinutes int, referenceNow time.Time) (time.Time, time.Time, error) {
	start, err := r.Resolve(dateText, timeText, referenceNow)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return start, end, nil
}
