package layer

import (
	"sort"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// Stack is an ordered set of layers.
// A Stack is a value: With returns a new Stack and never modifies the
// receiver, so a Stack can be shared between goroutines.
type Stack struct {
	layers []Layer // Sorted by priority (ascending), insertion order on ties
}

// NewStack creates a stack from the given layers.
func NewStack(layers ...Layer) Stack {
	return Stack{}.With(layers...)
}

// With returns a new stack holding the receiver's layers plus layers.
func (s Stack) With(layers ...Layer) Stack {
	out := make([]Layer, 0, len(s.layers)+len(layers))
	out = append(out, s.layers...)
	out = append(out, layers...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return Stack{layers: out}
}

// Replace returns a new stack in which every layer with the given source
// is removed and l is added.
func (s Stack) Replace(l Layer) Stack {
	return s.Without(l.Source).With(l)
}

// Without returns a new stack with every layer of the given source removed.
func (s Stack) Without(source Source) Stack {
	out := make([]Layer, 0, len(s.layers))
	for _, l := range s.layers {
		if l.Source != source {
			out = append(out, l)
		}
	}
	return Stack{layers: out}
}

// Layers returns a copy of all layers sorted by priority.
func (s Stack) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Len returns the number of layers.
func (s Stack) Len() int {
	return len(s.layers)
}

// BySource returns the first layer with the given source.
func (s Stack) BySource(source Source) (Layer, bool) {
	for _, l := range s.layers {
		if l.Source == source {
			return l, true
		}
	}
	return Layer{}, false
}

// Merge combines all layers into a single configuration tree.
func (s Stack) Merge() raw.Value {
	result := raw.EmptyMap()

	// Apply layers in priority order (lowest first, highest last)
	for _, l := range s.layers {
		result = raw.Merge(result, l.Data)
	}

	return result
}

// Get returns the value for path from the highest priority layer that
// sets it, together with that layer.
func (s Stack) Get(path string) (raw.Value, Layer, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if val, ok := l.Data.Lookup(path); ok {
			return val, l, true
		}
	}
	return raw.Value{}, Layer{}, false
}

// Which returns the name of the layer that supplies path.
// Returns "" if no layer sets it.
func (s Stack) Which(path string) string {
	_, l, ok := s.Get(path)
	if !ok {
		return ""
	}
	return l.Name
}
