package converter

import (
	"cmp"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Built-in priorities. Lower runs first.
const (
	PriorityEnum      = 100
	PriorityOptional  = 200
	PriorityPointer   = 210
	PriorityVariant   = 220
	PriorityTuple     = 230
	PriorityList      = 240
	PriorityMap       = 250
	PriorityPrimitive = 300
	PriorityObject    = 400
	PriorityFallback  = 1000
)

type entry struct {
	conv     Converter
	priority int
	seq      int
}

// Registry keeps converters ordered by priority. Converters with equal
// priority keep their insertion order.
type Registry struct {
	entries []entry
	mu      sync.RWMutex
	seq     int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add inserts a converter at the given priority.
func (r *Registry) Add(c Converter, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := entry{conv: c, priority: priority, seq: r.seq}
	r.seq++
	i, _ := slices.BinarySearchFunc(r.entries, e, func(a, b entry) int {
		if c := cmp.Compare(a.priority, b.priority); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	r.entries = slices.Insert(r.entries, i, e)

	Logger().Debug("converter registered",
		zap.String("converter", c.Name()),
		zap.Int("priority", priority),
		zap.Int("position", i))
}

// Converters returns a snapshot of the ordered converter list.
func (r *Registry) Converters() []Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Converter, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.conv
	}
	return out
}

// Len returns the number of registered converters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
