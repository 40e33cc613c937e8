// Package events implements the container subscription bus: per-field and
// container-wide handlers, generation-aware invalidation, and upward
// propagation to parent containers through a registry.
package events

import (
	"sync"

	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/registry"
)

// Kind identifies what happened to a field or container.
type Kind uint8

const (
	// KindWrite fires after a field's value changes.
	KindWrite Kind = iota
	// KindRescheme fires after a field's layout changes (size/type/array-ness).
	KindRescheme
	// KindDispose fires once, synthetically, the first time a subscriber
	// observes that its container's generation no longer matches the one
	// it subscribed under.
	KindDispose
)

// Event describes one notification delivered to a handler.
type Event struct {
	Container  container.Reference
	Field      string // empty for a container-wide event
	Path       string // Field, prefixed with the ref-field name used at every ancestor hop crossed so far
	Kind       Kind
	Generation uint32
}

// Handler receives events. Dispatch is synchronous: a Handler runs on the
// goroutine that triggered the event, in the order described by Fire.
type Handler func(Event)

// containerSubscriptions holds every handler registered against one
// container: per-field lists, and one container-wide list for Fire calls
// with an empty field name.
type containerSubscriptions struct {
	generation uint32
	byField    map[string][]Handler
	broadcast  []Handler
}

// Bus dispatches events to subscribers. Subscriptions are keyed by
// container.Reference rather than a true weak pointer: a container only
// has a stable identity once a registry tracks it, and the registry's own
// Unregister path is the natural place to drop a dead container's
// subscriptions. New wires Bus.Drop into that path via
// registry.SetUnregisterHook, so a disposed container's handlers are
// reclaimed without waiting on garbage collection.
type Bus struct {
	mu   sync.Mutex
	subs map[container.Reference]*containerSubscriptions
	reg  *registry.Registry
}

// New creates a Bus that propagates events upward through reg's parent
// links, and registers Drop as reg's unregister hook so subscriptions for
// a torn-down container don't outlive it.
func New(reg *registry.Registry) *Bus {
	b := &Bus{subs: make(map[container.Reference]*containerSubscriptions), reg: reg}
	reg.SetUnregisterHook(b.Drop)

	return b
}

// Subscribe registers h against field (or every field, if field is empty)
// on ref, tagged with ref's container's current generation. field may be a
// dot-separated path rooted at some descendant of ref (e.g. "a.b.c"): Fire
// builds that same path as it propagates a write upward through the
// registry's parent links, so a subscription on an ancestor matches a
// write made arbitrarily deep in its subtree.
func (b *Bus) Subscribe(ref container.Reference, field string, generation uint32, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.subs[ref]
	if !ok {
		s = &containerSubscriptions{generation: generation, byField: make(map[string][]Handler)}
		b.subs[ref] = s
	}
	if field == "" {
		s.broadcast = append(s.broadcast, h)
	} else {
		s.byField[field] = append(s.byField[field], h)
	}
}

// Drop removes every subscription registered against ref. Called by a
// registry when ref is unregistered.
func (b *Bus) Drop(ref container.Reference) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs, ref)
}

// Fire delivers an event for field on ref at the given generation, in the
// order: field-specific handlers, then broadcast (container-wide)
// handlers, then upward to ref's parent. If generation no longer matches
// what the container was subscribed under, every handler instead receives
// one synthetic KindDispose event and the subscription entry is dropped.
//
// Upward propagation builds a dotted path rather than re-firing the
// parent as a bare broadcast: at each ancestor it looks up the ref-field
// name the parent used to reach the child just visited and prepends it to
// the path accumulated so far, so a subscriber on an ancestor several
// hops up a tree sees one event whose Path is the full dotted route down
// to the field that actually changed (e.g. "a.b.c").
func (b *Bus) Fire(ref container.Reference, field string, kind Kind, generation uint32) {
	b.fire(ref, field, field, kind, generation)
}

func (b *Bus) fire(ref container.Reference, field, path string, kind Kind, generation uint32) {
	b.mu.Lock()
	s, ok := b.subs[ref]

	if ok && s.generation != generation {
		handlers := append(append([]Handler{}, s.broadcast...), flattenFieldHandlers(s.byField)...)
		delete(b.subs, ref)
		b.mu.Unlock()

		for _, h := range handlers {
			h(Event{Container: ref, Kind: KindDispose, Generation: generation})
		}

		return
	}

	var fieldHandlers, broadcastHandlers []Handler
	if ok {
		fieldHandlers = append(fieldHandlers, s.byField[path]...)
		broadcastHandlers = append(broadcastHandlers, s.broadcast...)
	}
	b.mu.Unlock()

	ev := Event{Container: ref, Field: field, Path: path, Kind: kind, Generation: generation}
	for _, h := range fieldHandlers {
		h(ev)
	}
	for _, h := range broadcastHandlers {
		h(ev)
	}

	if b.reg == nil {
		return
	}
	parent := b.reg.Parent(ref)
	if parent.IsNull() {
		return
	}
	parentContainer, err := b.reg.Get(parent)
	if err != nil {
		return
	}

	// If the parent's recorded ref fields don't explain how it reaches
	// ref (e.g. no refFieldNames were supplied at Register), propagation
	// degrades to the old bare broadcast rather than dropping the event.
	if ancestorLocalName, ok := b.reg.ChildFieldName(parent, ref); ok {
		b.fire(parent, field, ancestorLocalName+"."+path, kind, parentContainer.Generation())

		return
	}

	b.fire(parent, "", "", kind, parentContainer.Generation())
}

func flattenFieldHandlers(byField map[string][]Handler) []Handler {
	var out []Handler
	for _, hs := range byField {
		out = append(out, hs...)
	}

	return out
}
