// Package timing builds the word timeline that drives boundary callbacks.
//
// A Timeline is either estimated from text at a constant speaking rate or
// reconciled from provider timepoints. All values inside a Timeline are in
// seconds; conversion to milliseconds or 100ns ticks happens only in the
// unit functions of this package (see units.go).
package timing

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Estimation defaults.
const (
	DefaultWordsPerMinute = 150

	msPerMinute          = 60000.0
	msPerSecond          = 1000.0
	referenceWordLength  = 5.0
	minLengthFactor      = 0.5
	maxLengthFactor      = 2.0
	fallbackSecondsPerCh = 0.1
)

// WordBoundary is one word positioned on the audio timeline, in seconds.
type WordBoundary struct {
	Word  string
	Start float64
	End   float64
}

// Duration returns End - Start.
func (b WordBoundary) Duration() float64 { return b.End - b.Start }

// Timeline is an ordered, non-overlapping sequence of word boundaries.
type Timeline []WordBoundary

// End returns the end of the last boundary, or 0 for an empty timeline.
func (tl Timeline) End() float64 {
	if len(tl) == 0 {
		return 0
	}
	return tl[len(tl)-1].End
}

// Words returns the words of the timeline in order.
func (tl Timeline) Words() []string {
	words := make([]string, len(tl))
	for i, b := range tl {
		words[i] = b.Word
	}
	return words
}

// Timepoint associates a word index with an absolute offset in seconds.
type Timepoint struct {
	WordIndex int
	Seconds   float64
}

// Tokenize splits text on whitespace, dropping empty tokens.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Estimate builds a contiguous timeline from text at a constant speaking rate.
// Each word lasts 60000/wpm ms scaled by clamp(len/5, 0.5, 2.0).
// A non-positive wordsPerMinute uses DefaultWordsPerMinute.
func Estimate(text string, wordsPerMinute float64, startSeconds float64) Timeline {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	msPerWord := msPerMinute / wordsPerMinute

	words := Tokenize(text)
	tl := make(Timeline, 0, len(words))
	t := startSeconds * msPerSecond
	for _, w := range words {
		factor := float64(utf8.RuneCountInString(w)) / referenceWordLength
		factor = min(max(factor, minLengthFactor), maxLengthFactor)
		duration := msPerWord * factor
		tl = append(tl, WordBoundary{
			Word:  w,
			Start: t / msPerSecond,
			End:   (t + duration) / msPerSecond,
		})
		t += duration
	}
	return tl
}

// Reconcile maps provider timepoints onto tokens.
//
// Out-of-range word indices and negative or non-finite times are dropped.
// Providers do not guarantee order, so timepoints are sorted by time before
// ends are assigned: a boundary ends where the next later one starts, and
// one with no later successor ends after 0.1s per character. Every boundary
// has End > Start.
func Reconcile(timepoints []Timepoint, tokens []string) Timeline {
	valid := make([]Timepoint, 0, len(timepoints))
	for _, tp := range timepoints {
		if tp.WordIndex < 0 || tp.WordIndex >= len(tokens) {
			continue
		}
		if tp.Seconds < 0 || math.IsNaN(tp.Seconds) || math.IsInf(tp.Seconds, 0) {
			continue
		}
		valid = append(valid, tp)
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Seconds < valid[j].Seconds })

	tl := make(Timeline, len(valid))
	for i, tp := range valid {
		word := tokens[tp.WordIndex]
		end := tp.Seconds + float64(utf8.RuneCountInString(word))*fallbackSecondsPerCh
		if i+1 < len(valid) && valid[i+1].Seconds > tp.Seconds {
			end = valid[i+1].Seconds
		}
		tl[i] = WordBoundary{Word: word, Start: tp.Seconds, End: end}
	}
	return tl
}

func sortByStart(tl Timeline) {
	sort.SliceStable(tl, func(i, j int) bool { return tl[i].Start < tl[j].Start })
}
