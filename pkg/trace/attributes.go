package trace

import "sort"

// Attributes is an insertion-ordered map of attribute keys to Values.
// Setting an existing key overwrites the value while keeping the key's
// original position.
type Attributes struct {
	keys   []string
	values map[string]Value
}

// NewAttributes creates an empty attribute set.
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]Value)}
}

// Normalize coerces an arbitrary key/value map into an attribute set.
// It never fails: unconvertible values become empty strings (see AnyValue).
// Go map iteration order is random, so keys are sorted to keep the output
// deterministic; order is then preserved by every Set and Merge.
func Normalize(attrs map[string]any) *Attributes {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := NewAttributes()
	for _, key := range keys {
		out.Set(key, AnyValue(attrs[key]))
	}
	return out
}

// Set stores a value under key, appending the key on first use.
func (a *Attributes) Set(key string, value Value) {
	if a.values == nil {
		a.values = make(map[string]Value)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value for key and whether it is present.
func (a *Attributes) Get(key string) (Value, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Merge copies every entry of other into a, overwriting existing keys.
func (a *Attributes) Merge(other *Attributes) {
	if other == nil {
		return
	}
	for _, key := range other.keys {
		a.Set(key, other.values[key])
	}
}

// Len returns the number of entries.
func (a *Attributes) Len() int {
	return len(a.keys)
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not mutate it.
func (a *Attributes) Keys() []string {
	return a.keys
}
