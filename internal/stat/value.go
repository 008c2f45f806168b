package stat

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// KindUnavailable is the zero Kind: a zero Value is Unavailable.
	KindUnavailable Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "unavailable"
	}
}

// Value is a stat value: Number | Text | Unavailable.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Unavailable is the explicit "unit has no such stat" marker.
var Unavailable = Value{}

// Number returns a numeric Value. NaN and ±Inf are not finite stat values and
// collapse to Unavailable.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Unavailable
	}
	return Value{kind: KindNumber, num: f}
}

// Text returns a text Value. The empty string is Unavailable.
func Text(s string) Value {
	if s == "" {
		return Unavailable
	}
	return Value{kind: KindText, text: s}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsUnavailable reports whether v is the Unavailable marker.
func (v Value) IsUnavailable() bool { return v.kind == KindUnavailable }

// Float returns the number and true if v is numeric.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Str returns the text and true if v is text.
func (v Value) Str() (string, bool) {
	return v.text, v.kind == KindText
}

// Equal reports exact equality of kind and payload.
func (v Value) Equal(o Value) bool {
	return v == o
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindText:
		return v.text
	default:
		return "N/A"
	}
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and
// Unavailable as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decoding stat value: %w", err)
	}
	switch x := raw.(type) {
	case nil:
		*v = Unavailable
	case float64:
		*v = Number(x)
	case string:
		*v = Text(x)
	default:
		return fmt.Errorf("decoding stat value: unsupported JSON type %T", raw)
	}
	return nil
}
