package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
	"github.com/willwade/tts-wrapper-go/runtime/events"
	"github.com/willwade/tts-wrapper-go/runtime/logger"
	"github.com/willwade/tts-wrapper-go/runtime/media"
	"github.com/willwade/tts-wrapper-go/runtime/timing"
	"github.com/willwade/tts-wrapper-go/runtime/tts"
)

const instrumentationName = "github.com/willwade/tts-wrapper-go/runtime/playback"

// SpeakOptions configure one speak or synthesis call.
type SpeakOptions struct {
	// Synthesis is passed to the synthesizer. Synthesis.Format is a hint
	// to the provider; Format below decides the delivered container.
	Synthesis tts.SynthesisConfig

	// Format requests conversion to a container. FormatUnknown keeps the
	// provider's native container.
	Format audio.ContainerFormat

	// Conversion tunes format conversion.
	Conversion media.Options

	// WordsPerMinute is used when the timeline is estimated. Zero uses the
	// engine default.
	WordsPerMinute float64
}

// SynthesisObserver is notified after every synthesizer call.
type SynthesisObserver func(provider string, elapsed time.Duration, err error)

// StopObserver is notified when a session is stopped, either by Stop or by
// a newer session replacing it. Stopped sessions emit no end event.
type StopObserver func(sessionID string)

// Engine runs speech sessions against one synthesizer.
type Engine struct {
	synth     tts.Synthesizer
	converter *media.Converter
	probe     Probe
	registry  *events.Registry
	tracer    trace.Tracer
	wpm       float64
	observers []SynthesisObserver
	onStop    []StopObserver

	mu      sync.Mutex
	session *session
}

// Option configures an Engine.
type Option func(*Engine)

// WithConverter sets the converter used for requested formats and for
// sinks that cannot play the native container.
func WithConverter(c *media.Converter) Option {
	return func(e *Engine) { e.converter = c }
}

// WithProbe sets how sinks are selected.
func WithProbe(p Probe) Option {
	return func(e *Engine) { e.probe = p }
}

// WithRegistry shares an event registry with other components.
func WithRegistry(r *events.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithTracer sets the tracer for session spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithWordsPerMinute sets the default speaking rate for estimated timelines.
func WithWordsPerMinute(wpm float64) Option {
	return func(e *Engine) { e.wpm = wpm }
}

// WithSynthesisObserver registers an observer for synthesizer calls.
func WithSynthesisObserver(o SynthesisObserver) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithStopObserver registers an observer for stopped sessions.
func WithStopObserver(o StopObserver) Option {
	return func(e *Engine) { e.onStop = append(e.onStop, o) }
}

// NewEngine creates an engine for synth.
func NewEngine(synth tts.Synthesizer, opts ...Option) *Engine {
	e := &Engine{
		synth:    synth,
		probe:    SystemProbe(SinkConfig{}),
		registry: events.NewRegistry(),
		tracer:   otel.Tracer(instrumentationName),
		wpm:      timing.DefaultWordsPerMinute,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.converter == nil {
		e.converter = media.NewConverter(media.DefaultConverterConfig())
	}
	return e
}

// On registers a listener for one event kind.
func (e *Engine) On(kind events.Kind, listener events.Listener) events.Handle {
	return e.registry.On(kind, listener)
}

// OnAll registers a listener for every event kind.
func (e *Engine) OnAll(listener events.Listener) events.Handle {
	return e.registry.OnAll(listener)
}

// Off removes a listener.
func (e *Engine) Off(h events.Handle) bool {
	return e.registry.Off(h)
}

// Registry returns the engine's event registry.
func (e *Engine) Registry() *events.Registry {
	return e.registry
}

// State returns the state of the current session, or StateIdle.
func (e *Engine) State() State {
	if s := e.current(); s != nil {
		return s.getState()
	}
	return StateIdle
}

// Timeline returns the current session's timeline, or nil.
func (e *Engine) Timeline() timing.Timeline {
	if s := e.current(); s != nil {
		return s.getTimeline()
	}
	return nil
}

// Speak synthesizes text and plays it, blocking until the session ends,
// fails or is stopped. An active session is stopped first.
//
// Listeners receive start, then one boundary per timeline word, then end.
// End is emitted exactly once unless the session is stopped. A stopped
// session returns ErrStopped.
func (e *Engine) Speak(ctx context.Context, text string, opts SpeakOptions) error {
	return e.speak(ctx, text, opts, false)
}

// SpeakStreamed is Speak using the synthesizer's byte stream. The whole
// stream is collected before playback starts.
func (e *Engine) SpeakStreamed(ctx context.Context, text string, opts SpeakOptions) error {
	return e.speak(ctx, text, opts, true)
}

// Pause suspends playback. It is a no-op unless the session is playing.
func (e *Engine) Pause() error {
	s := e.current()
	if s == nil || s.getState() != StatePlaying {
		return nil
	}
	if sink := s.getSink(); sink != nil {
		if err := sink.Pause(); err != nil {
			return err
		}
	}
	if s.transition(StatePlaying, StatePaused) {
		s.clock.Pause()
		s.signal()
	}
	return nil
}

// Resume continues playback. It is a no-op unless the session is paused.
func (e *Engine) Resume() error {
	s := e.current()
	if s == nil || s.getState() != StatePaused {
		return nil
	}
	if sink := s.getSink(); sink != nil {
		if err := sink.Resume(); err != nil {
			return err
		}
	}
	if s.transition(StatePaused, StatePlaying) {
		s.clock.Resume()
		s.signal()
	}
	return nil
}

// Stop ends the current session without emitting end, releases its sink
// and discards its timeline. It is idempotent and safe to call from listeners.
// Once Stop returns no further listener of the session is invoked; a listener
// already running on the speaking goroutine may still be finishing.
func (e *Engine) Stop() {
	e.mu.Lock()
	s := e.session
	e.session = nil
	e.mu.Unlock()
	e.stopSession(s)
}

func (e *Engine) stopSession(s *session) {
	if s == nil || !s.stop() {
		return
	}
	logger.Debug("playback stopped", "session_id", s.id)
	for _, o := range e.onStop {
		o(s.id)
	}
}

func (e *Engine) current() *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// begin installs a new session and stops the one it replaces.
func (e *Engine) begin(ctx context.Context) *session {
	s := newSession(ctx, e.registry)
	e.mu.Lock()
	old := e.session
	e.session = s
	e.mu.Unlock()
	e.stopSession(old)
	return s
}

func (e *Engine) speak(ctx context.Context, text string, opts SpeakOptions, streamed bool) error {
	s := e.begin(ctx)
	defer s.cancel()

	ctx = logger.WithSessionID(s.ctx, s.id)
	ctx = logger.WithProvider(ctx, e.synth.Name())
	ctx, span := e.tracer.Start(ctx, "playback.Speak", trace.WithAttributes(
		attribute.String("playback.session_id", s.id),
		attribute.Bool("playback.streamed", streamed),
		attribute.Int("playback.text_length", len(text)),
	))
	defer span.End()

	s.emit(events.NewStartEvent(s.id, text))

	played, err := e.run(ctx, s, text, opts, streamed)

	if s.isStopped() {
		span.SetAttributes(attribute.String("playback.outcome", "stopped"))
		return ErrStopped
	}

	end := events.NewEndEvent(s.id, err)
	end.Duration = played
	if err != nil {
		s.setState(StateFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "playback failed", "error", err)
	} else {
		s.setState(StateEnded)
	}
	s.emit(end)
	return err
}

// run performs the session up to the end of playback and returns the
// duration of the audio that was played.
func (e *Engine) run(ctx context.Context, s *session, text string, opts SpeakOptions, streamed bool) (time.Duration, error) {
	s.setState(StateSynthesizing)
	buf, tl, err := e.synthesize(ctx, text, opts, streamed)
	if err != nil {
		return 0, &PlaybackError{Kind: SynthesisFailed, Cause: err}
	}

	if opts.Format != audio.FormatUnknown && opts.Format != buf.Format() {
		s.setState(StateConverting)
		converted, err := e.convert(ctx, buf, opts.Format, opts.Conversion)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			logger.ConversionFallback(ctx, buf.Format().String(), opts.Format.String(), err)
		} else {
			buf = converted
		}
	}
	s.setTimeline(tl)

	sink, err := e.probe(ctx)
	if err != nil {
		return 0, &PlaybackError{Kind: SinkUnavailable, Cause: err}
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			logger.WarnContext(ctx, "failed to close audio sink", "error", cerr)
		}
	}()

	if !canPlay(sink, buf.Format()) {
		s.setState(StateConverting)
		target := media.SelectTargetFormat(sink.Formats())
		converted, err := e.convert(ctx, buf, target, opts.Conversion)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, &PlaybackError{Kind: SinkFailed, Cause: fmt.Errorf("sink cannot play %s: %w", buf.Format(), err)}
		}
		buf = converted
	}

	duration, _ := audio.Duration(buf)
	s.setSink(sink)
	s.setState(StateReady)
	if err := e.play(ctx, s, sink, buf, tl); err != nil {
		return 0, err
	}
	return duration, nil
}

// synthesize calls the synthesizer and builds the timeline: provider word
// boundaries first, then provider timepoints, then an estimate.
func (e *Engine) synthesize(ctx context.Context, text string, opts SpeakOptions, streamed bool) (audio.Buffer, timing.Timeline, error) {
	ctx, span := e.tracer.Start(ctx, "playback.synthesize")
	defer span.End()

	start := time.Now()
	data, boundaries, err := e.callSynthesizer(ctx, text, opts.Synthesis, streamed)
	elapsed := time.Since(start)
	if err == nil && len(data) == 0 {
		err = tts.ErrEmptyAudio
	}
	for _, o := range e.observers {
		o(e.synth.Name(), elapsed, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.SynthesisError(ctx, e.synth.Name(), err, "retryable", tts.IsRetryable(err))
		return audio.Buffer{}, nil, err
	}
	logger.SynthesisCall(ctx, e.synth.Name(), len(text), len(data), elapsed)

	buf := audio.NewBuffer(data)
	span.SetAttributes(attribute.String("audio.format", buf.Format().String()))

	tl := boundaries
	if len(tl) == 0 {
		if r, ok := e.synth.(tts.TimepointReporter); ok {
			tl = timing.Reconcile(r.Timepoints(), timing.Tokenize(text))
		}
	}
	if len(tl) == 0 {
		wpm := opts.WordsPerMinute
		if wpm <= 0 {
			wpm = e.wpm
		}
		tl = timing.Estimate(text, wpm, 0)
	}
	return buf, tl, nil
}

func (e *Engine) callSynthesizer(ctx context.Context, text string, cfg tts.SynthesisConfig, streamed bool) ([]byte, timing.Timeline, error) {
	if !streamed {
		data, err := e.synth.SynthToBytes(ctx, text, cfg)
		return data, nil, err
	}

	ss, ok := e.synth.(tts.StreamingSynthesizer)
	if !ok {
		return nil, nil, tts.ErrStreamingUnsupported
	}
	stream, err := ss.SynthToBytestream(ctx, text, cfg)
	if err != nil {
		return nil, nil, err
	}
	data, err := tts.Collect(ctx, stream)
	if err != nil {
		return nil, nil, err
	}
	var tl timing.Timeline
	if stream.WordBoundaries != nil {
		tl = timing.FromPublic(stream.WordBoundaries(), stream.BoundaryUnit)
	}
	return data, tl, nil
}

func (e *Engine) convert(ctx context.Context, buf audio.Buffer, target audio.ContainerFormat, opts media.Options) (audio.Buffer, error) {
	res, err := e.converter.Convert(ctx, media.ConversionRequest{
		Source:       buf.Bytes(),
		SourceFormat: buf.Format(),
		TargetFormat: target,
		Options:      opts,
	})
	if err != nil {
		return audio.Buffer{}, err
	}
	return res.Buffer(), nil
}

// play starts the sink and delivers boundary events at their start times
// on the calling goroutine. Boundaries still pending when the audio
// finishes are delivered before returning.
func (e *Engine) play(ctx context.Context, s *session, sink Sink, buf audio.Buffer, tl timing.Timeline) error {
	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	s.clock.Start()
	s.setState(StatePlaying)
	go func() { done <- sink.Play(playCtx, buf) }()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	next := 0
	for {
		var timerC <-chan time.Time
		if next < len(tl) {
			elapsed, paused := s.clock.Elapsed()
			if !paused {
				wait := secondsToDuration(tl[next].Start) - elapsed
				if wait <= 0 {
					s.emit(events.NewBoundaryEvent(s.id, next, tl[next]))
					next++
					continue
				}
				resetTimer(timer, wait)
				timerC = timer.C
			}
		}

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return ctx.Err()
		case err := <-done:
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return &PlaybackError{Kind: SinkFailed, Cause: err}
			}
			for ; next < len(tl) && !s.isStopped(); next++ {
				s.emit(events.NewBoundaryEvent(s.id, next, tl[next]))
			}
			return nil
		case <-timerC:
		case <-s.wake:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// SynthesisResult is audio produced without playback.
type SynthesisResult struct {
	Audio    audio.Buffer
	Timeline timing.Timeline
	Duration time.Duration
}

// MIMEType returns the MIME type of the result audio.
func (r *SynthesisResult) MIMEType() string {
	return r.Audio.MIMEType()
}

// SynthToBytes synthesizes text without playing it. Unlike Speak, a failed
// conversion to opts.Format is returned as an error.
func (e *Engine) SynthToBytes(ctx context.Context, text string, opts SpeakOptions) (*SynthesisResult, error) {
	buf, tl, err := e.synthesize(ctx, text, opts, false)
	if err != nil {
		return nil, &PlaybackError{Kind: SynthesisFailed, Cause: err}
	}
	if opts.Format != audio.FormatUnknown && opts.Format != buf.Format() {
		buf, err = e.convert(ctx, buf, opts.Format, opts.Conversion)
		if err != nil {
			return nil, err
		}
	}
	d, err := audio.Duration(buf)
	if err != nil && !errors.Is(err, audio.ErrUnsupportedFormat) {
		logger.DebugContext(ctx, "could not determine audio duration", "error", err)
	}
	return &SynthesisResult{Audio: buf, Timeline: tl, Duration: d}, nil
}
