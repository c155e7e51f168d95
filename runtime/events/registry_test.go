package events

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willwade/tts-wrapper-go/runtime/timing"
)

func TestRegistry_EmitByKindInOrder(t *testing.T) {
	r := NewRegistry()
	var got []string

	r.On(KindBoundary, func(e *Event) { got = append(got, "b1:"+e.Word.Word) })
	r.On(KindBoundary, func(e *Event) { got = append(got, "b2:"+e.Word.Word) })
	r.On(KindEnd, func(*Event) { got = append(got, "end") })
	r.OnAll(func(e *Event) { got = append(got, "all:"+string(e.Kind)) })

	r.Emit(NewBoundaryEvent("s", 0, timing.WordBoundary{Word: "hi", Start: 0, End: 0.3}))
	r.Emit(NewEndEvent("s", nil))

	assert.Equal(t, []string{"b1:hi", "b2:hi", "all:boundary", "end", "all:end"}, got)
}

func TestRegistry_Off(t *testing.T) {
	r := NewRegistry()
	calls := 0
	h := r.On(KindStart, func(*Event) { calls++ })
	g := r.OnAll(func(*Event) { calls++ })

	assert.Equal(t, 1, r.Count(KindStart))
	assert.True(t, r.Off(h))
	assert.False(t, r.Off(h))
	assert.True(t, r.Off(g))
	assert.Equal(t, 0, r.Count(KindStart))

	r.Emit(NewStartEvent("s", "hello"))
	assert.Zero(t, calls)
}

func TestRegistry_EmitUsesSnapshot(t *testing.T) {
	r := NewRegistry()
	var order []string
	var second Handle

	r.On(KindBoundary, func(*Event) {
		order = append(order, "first")
		r.Off(second)
		r.On(KindBoundary, func(*Event) { order = append(order, "late") })
	})
	second = r.On(KindBoundary, func(*Event) { order = append(order, "second") })

	r.Emit(NewBoundaryEvent("s", 0, timing.WordBoundary{}))
	assert.Equal(t, []string{"first", "second"}, order)

	order = nil
	r.Emit(NewBoundaryEvent("s", 1, timing.WordBoundary{}))
	assert.Equal(t, []string{"first", "late"}, order)
}

func TestRegistry_PanickingListenerIsContained(t *testing.T) {
	r := NewRegistry()
	reached := false
	r.On(KindEnd, func(*Event) { panic("listener bug") })
	r.On(KindEnd, func(*Event) { reached = true })

	require.NotPanics(t, func() { r.Emit(NewEndEvent("s", nil)) })
	assert.True(t, reached)
}

func TestRegistry_EmitWhileStopsBetweenListeners(t *testing.T) {
	r := NewRegistry()
	live := true
	var got []string

	r.On(KindBoundary, func(*Event) { got = append(got, "first"); live = false })
	r.On(KindBoundary, func(*Event) { got = append(got, "second") })
	r.OnAll(func(*Event) { got = append(got, "all") })

	r.EmitWhile(NewBoundaryEvent("s", 0, timing.WordBoundary{}), func() bool { return live })
	assert.Equal(t, []string{"first"}, got)

	got = nil
	r.EmitWhile(NewBoundaryEvent("s", 1, timing.WordBoundary{}), nil)
	assert.Equal(t, []string{"first", "second", "all"}, got)
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h := r.On(KindStart, func(*Event) {})
			r.Off(h)
		}()
		go func() {
			defer wg.Done()
			r.Emit(NewStartEvent("s", "x"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, r.Count(KindStart))

	r.On(KindStart, func(*Event) {})
	r.Clear()
	assert.Equal(t, 0, r.Count(KindStart))
}

func TestEvent_Failed(t *testing.T) {
	assert.False(t, NewEndEvent("s", nil).Failed())
	assert.True(t, NewEndEvent("s", errors.New("x")).Failed())
	assert.False(t, NewStartEvent("s", "x").Failed())
}
