// Package events provides the typed observer registry used by playback sessions.
package events

import (
	"sync"

	"github.com/willwade/tts-wrapper-go/runtime/logger"
)

// Listener is a function that handles events.
type Listener func(*Event)

// Handle identifies a registered listener so it can be removed with Off.
type Handle struct {
	kind Kind
	id   uint64
	all  bool
}

type entry struct {
	id       uint64
	listener Listener
}

// Registry keeps ordered listener lists per event kind. Emit calls listeners
// synchronously, in registration order, over a snapshot of the lists, so a
// listener may register or remove listeners without affecting the current
// emission.
type Registry struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[Kind][]entry
	global    []entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{listeners: make(map[Kind][]entry)}
}

// On registers a listener for one event kind.
func (r *Registry) On(kind Kind, listener Listener) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.listeners[kind] = append(r.listeners[kind], entry{id: r.nextID, listener: listener})
	return Handle{kind: kind, id: r.nextID}
}

// OnAll registers a listener for every event kind. Global listeners run
// after the kind-specific ones.
func (r *Registry) OnAll(listener Listener) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.global = append(r.global, entry{id: r.nextID, listener: listener})
	return Handle{id: r.nextID, all: true}
}

// Off removes a listener. It reports whether the handle was registered.
func (r *Registry) Off(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.all {
		var removed bool
		r.global, removed = without(r.global, h.id)
		return removed
	}
	list, removed := without(r.listeners[h.kind], h.id)
	if len(list) == 0 {
		delete(r.listeners, h.kind)
	} else {
		r.listeners[h.kind] = list
	}
	return removed
}

func without(list []entry, id uint64) ([]entry, bool) {
	for i, e := range list {
		if e.id == id {
			out := make([]entry, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}

// Count returns the number of listeners for kind, excluding global ones.
func (r *Registry) Count(kind Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[kind])
}

// Emit delivers event to the listeners registered at the time of the call.
// A panicking listener is logged and does not prevent later listeners from running.
func (r *Registry) Emit(event *Event) {
	r.EmitWhile(event, nil)
}

// EmitWhile is Emit, checking cont before each listener and stopping the
// emission once it reports false. A nil cont always continues.
func (r *Registry) EmitWhile(event *Event, cont func() bool) {
	r.mu.RLock()
	specific := append([]entry(nil), r.listeners[event.Kind]...)
	global := append([]entry(nil), r.global...)
	r.mu.RUnlock()

	for _, list := range [][]entry{specific, global} {
		for _, e := range list {
			if cont != nil && !cont() {
				return
			}
			safeInvoke(e.listener, event)
		}
	}
}

// Clear removes all listeners.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = make(map[Kind][]entry)
	r.global = nil
}

func safeInvoke(listener Listener, event *Event) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("event listener panicked",
				"kind", string(event.Kind), "session_id", event.SessionID, "panic", rec)
		}
	}()
	listener(event)
}
