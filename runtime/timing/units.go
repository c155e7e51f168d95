package timing

import (
	"fmt"
	"strings"
)

// Unit is the time unit of a word boundary crossing the package boundary.
// Timelines themselves are always in seconds.
type Unit int

const (
	// Seconds is the canonical internal unit.
	Seconds Unit = iota
	// Milliseconds is used by most REST providers.
	Milliseconds
	// Ticks100ns is the 100-nanosecond tick used by Azure and Edge voices.
	Ticks100ns
)

const (
	millisPerSecond = 1e3
	ticksPerSecond  = 1e7
)

// String returns the unit name.
func (u Unit) String() string {
	switch u {
	case Seconds:
		return "s"
	case Milliseconds:
		return "ms"
	case Ticks100ns:
		return "ticks"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// ParseUnit parses "s", "ms" or "ticks" (plus common long forms).
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "sec", "seconds", "":
		return Seconds, nil
	case "ms", "millis", "milliseconds":
		return Milliseconds, nil
	case "ticks", "100ns", "ticks100ns":
		return Ticks100ns, nil
	default:
		return Seconds, fmt.Errorf("unknown time unit %q", s)
	}
}

// ToSeconds converts v in unit u to seconds.
func ToSeconds(v float64, u Unit) float64 {
	switch u {
	case Milliseconds:
		return v / millisPerSecond
	case Ticks100ns:
		return v / ticksPerSecond
	default:
		return v
	}
}

// FromSeconds converts seconds to unit u.
func FromSeconds(s float64, u Unit) float64 {
	switch u {
	case Milliseconds:
		return s * millisPerSecond
	case Ticks100ns:
		return s * ticksPerSecond
	default:
		return s
	}
}

// Boundary is the public word boundary shape: text with an offset and a
// duration in a unit chosen by the call site.
type Boundary struct {
	Text     string  `json:"text"`
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
}

// FromPublic converts provider-reported boundaries in unit u into a Timeline.
// Entries with empty text or a non-positive duration are dropped and the
// result is ordered by start.
func FromPublic(boundaries []Boundary, u Unit) Timeline {
	tl := make(Timeline, 0, len(boundaries))
	for _, b := range boundaries {
		if strings.TrimSpace(b.Text) == "" || b.Duration <= 0 {
			continue
		}
		start := ToSeconds(b.Offset, u)
		tl = append(tl, WordBoundary{
			Word:  b.Text,
			Start: start,
			End:   start + ToSeconds(b.Duration, u),
		})
	}
	sortByStart(tl)
	return tl
}

// ToPublic converts a Timeline into public boundaries in unit u.
func ToPublic(tl Timeline, u Unit) []Boundary {
	out := make([]Boundary, len(tl))
	for i, b := range tl {
		out[i] = Boundary{
			Text:     b.Word,
			Offset:   FromSeconds(b.Start, u),
			Duration: FromSeconds(b.Duration(), u),
		}
	}
	return out
}
