package stat

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Bag is an immutable mapping from stat name to Value. Every transformation
// returns a new Bag; a Bag obtained from a caller is never modified.
type Bag struct {
	values map[Name]Value
}

// NewBag copies values into a new Bag.
func NewBag(values map[Name]Value) Bag {
	return Bag{values: maps.Clone(values)}
}

// Get returns the value stored under n and whether the key exists.
func (b Bag) Get(n Name) (Value, bool) {
	v, ok := b.values[n]
	return v, ok
}

// Value returns the value stored under n, or Unavailable when the key is absent.
func (b Bag) Value(n Name) Value {
	return b.values[n]
}

// Has reports whether n is a key of the bag.
func (b Bag) Has(n Name) bool {
	_, ok := b.values[n]
	return ok
}

// Len returns the number of keys.
func (b Bag) Len() int { return len(b.values) }

// Keys returns the bag keys: known columns in display order first, then any
// other keys sorted by name.
func (b Bag) Keys() []Name {
	keys := make([]Name, 0, len(b.values))
	seen := make(map[Name]bool, len(b.values))
	for _, c := range Columns {
		if _, ok := b.values[c]; ok {
			keys = append(keys, c)
			seen[c] = true
		}
	}
	var rest []Name
	for k := range b.values {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

// With returns a copy of b with n set to v.
func (b Bag) With(n Name, v Value) Bag {
	d := b.Edit()
	d.Set(n, v)
	return d.Bag()
}

// Map returns a copy of the underlying mapping.
func (b Bag) Map() map[Name]Value {
	return maps.Clone(b.values)
}

// Equal reports whether both bags have the same keys and equal values.
func (b Bag) Equal(o Bag) bool {
	return maps.EqualFunc(b.values, o.values, Value.Equal)
}

// Edit returns a mutable draft seeded with a copy of b.
func (b Bag) Edit() *Draft {
	values := maps.Clone(b.values)
	if values == nil {
		values = make(map[Name]Value)
	}
	return &Draft{values: values}
}

// MarshalJSON encodes the bag as a JSON object keyed by stat name.
func (b Bag) MarshalJSON() ([]byte, error) {
	if b.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(b.values)
}

// UnmarshalJSON decodes a JSON object produced by MarshalJSON.
func (b *Bag) UnmarshalJSON(data []byte) error {
	var values map[Name]Value
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decoding stat bag: %w", err)
	}
	b.values = values
	return nil
}

// Draft is a single-owner working copy used to build the next Bag.
// It is not safe for concurrent use.
type Draft struct {
	values map[Name]Value
}

// Get returns the current value of n and whether the key exists.
func (d *Draft) Get(n Name) (Value, bool) {
	v, ok := d.values[n]
	return v, ok
}

// Has reports whether n is a key of the draft.
func (d *Draft) Has(n Name) bool {
	_, ok := d.values[n]
	return ok
}

// Set stores v under n.
func (d *Draft) Set(n Name, v Value) {
	d.values[n] = v
}

// Bag freezes the draft into a new Bag. The draft stays usable; later edits do
// not affect the returned Bag.
func (d *Draft) Bag() Bag {
	return Bag{values: maps.Clone(d.values)}
}
