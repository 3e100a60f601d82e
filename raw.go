package routequery

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a RawValue.
type Kind uint8

const (
	// KindMissing marks a field that is not in the document at all.
	KindMissing Kind = iota
	// KindNull marks a field present without a value (`?flag`).
	KindNull
	// KindScalar marks a single string value. The empty string is a scalar.
	KindScalar
	// KindList marks an ordered list of scalars (`?tag=a&tag=b`).
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Scalar is one list element. Null elements carry no value.
type Scalar struct {
	Value string
	Null  bool
}

// S builds a non-null list element.
func S(value string) Scalar {
	return Scalar{Value: value}
}

// NullScalar builds a null list element.
func NullScalar() Scalar {
	return Scalar{Null: true}
}

// RawValue is the wire shape exchanged with a Store. The zero value is Missing.
type RawValue struct {
	kind   Kind
	scalar string
	list   []Scalar
}

// Missing returns the absent value.
func Missing() RawValue {
	return RawValue{}
}

// Null returns the present-but-valueless value.
func Null() RawValue {
	return RawValue{kind: KindNull}
}

// Value returns a scalar raw value.
func Value(s string) RawValue {
	return RawValue{kind: KindScalar, scalar: s}
}

// Values returns a list of non-null scalars.
func Values(values ...string) RawValue {
	list := make([]Scalar, len(values))
	for i, v := range values {
		list[i] = S(v)
	}
	return RawValue{kind: KindList, list: list}
}

// ListOf returns a list built from items, which are copied.
func ListOf(items ...Scalar) RawValue {
	return RawValue{kind: KindList, list: append([]Scalar{}, items...)}
}

// FromAny converts loosely typed values (expression results, YAML defaults)
// into a RawValue. nil and empty slices map to Missing.
func FromAny(value any) (RawValue, error) {
	switch v := value.(type) {
	case nil:
		return Missing(), nil
	case RawValue:
		return v, nil
	case string:
		return Value(v), nil
	case []string:
		if len(v) == 0 {
			return Missing(), nil
		}
		return Values(v...), nil
	case []any:
		if len(v) == 0 {
			return Missing(), nil
		}
		items := make([]Scalar, len(v))
		for i, item := range v {
			if item == nil {
				items[i] = NullScalar()
				continue
			}
			s, err := scalarString(item)
			if err != nil {
				return Missing(), fmt.Errorf("routequery: list element %d: %w", i, err)
			}
			items[i] = S(s)
		}
		return ListOf(items...), nil
	default:
		s, err := scalarString(v)
		if err != nil {
			return Missing(), err
		}
		return Value(s), nil
	}
}

func scalarString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("routequery: cannot represent %T as a query value", value)
	}
}

// Kind reports the value's classification.
func (v RawValue) Kind() Kind {
	return v.kind
}

// IsMissing reports whether the field is absent.
func (v RawValue) IsMissing() bool {
	return v.kind == KindMissing
}

// Present reports whether the field exists in the document, including Null.
func (v RawValue) Present() bool {
	return v.kind != KindMissing
}

// Str returns the scalar value. ok is false for anything but a scalar.
func (v RawValue) Str() (string, bool) {
	if v.kind != KindScalar {
		return "", false
	}
	return v.scalar, true
}

// Items returns a copy of the list elements, nil for non-lists.
func (v RawValue) Items() []Scalar {
	if v.kind != KindList {
		return nil
	}
	return append([]Scalar{}, v.list...)
}

// Len returns the number of list elements, 1 for a scalar and 0 otherwise.
func (v RawValue) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindScalar:
		return 1
	default:
		return 0
	}
}

// Strings flattens the value into its non-null string values.
func (v RawValue) Strings() []string {
	switch v.kind {
	case KindScalar:
		return []string{v.scalar}
	case KindList:
		out := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if !item.Null {
				out = append(out, item.Value)
			}
		}
		return out
	default:
		return nil
	}
}

// Interface returns the loosely typed form used by expression engines: nil,
// string or []any (with nil for null elements).
func (v RawValue) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			if item.Null {
				continue
			}
			out[i] = item.Value
		}
		return out
	default:
		return nil
	}
}

func (v RawValue) String() string {
	switch v.kind {
	case KindMissing:
		return "<missing>"
	case KindNull:
		return "<null>"
	case KindScalar:
		return strconv.Quote(v.scalar)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			if item.Null {
				parts[i] = "<null>"
				continue
			}
			parts[i] = strconv.Quote(item.Value)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return "<invalid>"
	}
}

// Equal reports whether a and b are structurally identical. Lists compare
// position by position and must have the same length; a list never equals a
// non-list; everything else compares kind and value.
func Equal(a, b RawValue) bool {
	aList := a.kind == KindList
	bList := b.kind == KindList
	if aList && bList {
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !scalarEqual(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	}
	if aList || bList {
		return false
	}
	return a.kind == b.kind && a.scalar == b.scalar
}

func scalarEqual(a, b Scalar) bool {
	if a.Null || b.Null {
		return a.Null == b.Null
	}
	return a.Value == b.Value
}
