package meta

import "fmt"

// Bound is an optional lower or upper limit on a quantity. The zero value is
// unset.
type Bound struct {
	value float64
	ref   ID
	kind  boundKind
}

type boundKind uint8

const (
	boundNone boundKind = iota
	boundValue
	boundRef
)

// Value returns a literal bound.
func Value(v float64) Bound { return Bound{value: v, kind: boundValue} }

// Ref returns a bound that follows the current quantity of meta node id.
func Ref(id ID) Bound { return Bound{ref: id, kind: boundRef} }

// IsSet reports whether the bound constrains anything.
func (b Bound) IsSet() bool { return b.kind != boundNone }

// Literal returns the literal value, if the bound is one.
func (b Bound) Literal() (float64, bool) { return b.value, b.kind == boundValue }

// Reference returns the referenced node, if the bound is a reference.
func (b Bound) Reference() (ID, bool) { return b.ref, b.kind == boundRef }

func (b Bound) String() string {
	switch b.kind {
	case boundValue:
		return fmt.Sprintf("%g", b.value)
	case boundRef:
		return fmt.Sprintf("ref(m%d)", b.ref)
	default:
		return "-"
	}
}
