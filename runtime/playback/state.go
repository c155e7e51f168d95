// Package playback drives speech sessions: synthesis, optional conversion,
// word timing, audio output and the start/boundary/end event sequence.
//
// An Engine owns at most one active session. Speak and SpeakStreamed block
// until the session ends, fails or is stopped; Pause, Resume and Stop may be
// called from any goroutine, including from inside an event listener.
package playback

// State is the lifecycle state of a playback session.
type State int

const (
	// StateIdle means no session is active.
	StateIdle State = iota
	// StateSynthesizing means the synthesizer is producing audio.
	StateSynthesizing
	// StateConverting means the audio is being converted to another container.
	StateConverting
	// StateReady means audio and timeline are prepared and a sink is open.
	StateReady
	// StatePlaying means audio is being played and boundaries are scheduled.
	StatePlaying
	// StatePaused means playback is suspended.
	StatePaused
	// StateEnded means playback completed naturally.
	StateEnded
	// StateFailed means the session stopped because of an error.
	StateFailed
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateSynthesizing: "synthesizing",
	StateConverting:   "converting",
	StateReady:        "ready",
	StatePlaying:      "playing",
	StatePaused:       "paused",
	StateEnded:        "ended",
	StateFailed:       "failed",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions happen without a new session.
func (s State) Terminal() bool {
	return s == StateEnded || s == StateFailed
}
