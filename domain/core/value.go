package core

// Value is the tri-state typological value of a parameter for a language.
// The empty string means unset (indeterminate): no value has been derived yet.
type Value string

const (
	Plus  Value = "+"
	Minus Value = "-"
	Zero  Value = "0"
	Unset Value = ""
)

// Determinate reports whether the value is a survey-derived "+" or "-".
// Zero is a post-evaluation marker, not a determinate raw value.
func (v Value) Determinate() bool {
	return v == Plus || v == Minus
}

// Present reports whether the value carries any symbol, including Zero.
func (v Value) Present() bool {
	return v != Unset
}

// Valid reports whether v is one of the four admissible states.
func (v Value) Valid() bool {
	switch v {
	case Plus, Minus, Zero, Unset:
		return true
	}
	return false
}

// ParseValue maps a stored string to a Value, treating anything
// unrecognized as Unset.
func ParseValue(s string) Value {
	switch Value(s) {
	case Plus, Minus, Zero:
		return Value(s)
	}
	return Unset
}
