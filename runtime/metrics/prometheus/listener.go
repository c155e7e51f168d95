package prometheus

import (
	"sync"
	"time"

	"github.com/willwade/tts-wrapper-go/runtime/events"
	"github.com/willwade/tts-wrapper-go/runtime/media"
	"github.com/willwade/tts-wrapper-go/runtime/playback"
)

// Status and outcome constants for metric labels.
const (
	statusSuccess = "success"
	statusError   = "error"

	outcomeEnded   = "ended"
	outcomeFailed  = "failed"
	outcomeStopped = "stopped"
)

// MetricsListener records playback events as Prometheus metrics.
// Register one listener per engine with Engine.OnAll and pass StopObserver
// to playback.WithStopObserver: a stopped session emits no end event. Without
// the observer it is counted as stopped when the engine's next session starts.
type MetricsListener struct {
	mu     sync.Mutex
	active string
}

// NewMetricsListener creates a new MetricsListener.
func NewMetricsListener() *MetricsListener {
	return &MetricsListener{}
}

// Handle processes an event and records relevant metrics.
func (l *MetricsListener) Handle(event *events.Event) {
	switch event.Kind {
	case events.KindStart:
		l.handleStart(event)
	case events.KindBoundary:
		RecordBoundary()
	case events.KindEnd:
		l.handleEnd(event)
	}
}

func (l *MetricsListener) handleStart(event *events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active != "" {
		RecordSessionEnd(outcomeStopped)
	}
	l.active = event.SessionID
	RecordSessionStart()
}

func (l *MetricsListener) handleEnd(event *events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active != event.SessionID {
		return
	}
	l.active = ""
	if event.Failed() {
		RecordSessionEnd(outcomeFailed)
		return
	}
	RecordSessionEnd(outcomeEnded)
	RecordAudioSeconds(event.Duration.Seconds())
}

// StopObserver returns a playback.StopObserver closing stopped sessions.
func (l *MetricsListener) StopObserver() playback.StopObserver {
	return func(sessionID string) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.active != sessionID {
			return
		}
		l.active = ""
		RecordSessionEnd(outcomeStopped)
	}
}

// Listener returns an events.Listener function for Engine.OnAll.
func (l *MetricsListener) Listener() events.Listener {
	return l.Handle
}

// ConversionObserver returns a media.Observer recording every strategy attempt.
func ConversionObserver() media.Observer {
	return func(a media.Attempt) {
		RecordConversionAttempt(a.Strategy, status(a.Err), a.Duration.Seconds())
	}
}

// SynthesisObserver returns a playback.SynthesisObserver recording synthesizer calls.
func SynthesisObserver() playback.SynthesisObserver {
	return func(provider string, elapsed time.Duration, err error) {
		RecordSynthesis(provider, status(err), elapsed.Seconds())
	}
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}
