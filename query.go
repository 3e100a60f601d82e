package routequery

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Query is a full key/value document, one RawValue per field.
type Query map[string]RawValue

// Get returns the value stored under name, Missing when absent.
func (q Query) Get(name string) RawValue {
	if q == nil {
		return Missing()
	}
	return q[name]
}

// Clone returns a copy whose list values are detached from q.
func (q Query) Clone() Query {
	if q == nil {
		return Query{}
	}
	out := make(Query, len(q))
	for name, value := range q {
		if value.kind == KindList {
			value = ListOf(value.list...)
		}
		out[name] = value
	}
	return out
}

// Compact drops Missing entries and empty lists in place and returns q. An
// empty list encodes to nothing, so keeping it would make the document
// disagree with its own query string.
func (q Query) Compact() Query {
	for name, value := range q {
		if value.IsMissing() || (value.kind == KindList && len(value.list) == 0) {
			delete(q, name)
		}
	}
	return q
}

// Names returns the field names sorted alphabetically.
func (q Query) Names() []string {
	names := make([]string, 0, len(q))
	for name := range q {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Diff returns, sorted, the names whose values differ between q and other. A
// Missing entry and an absent key are the same thing.
func (q Query) Diff(other Query) []string {
	seen := make(map[string]struct{}, len(q)+len(other))
	var changed []string
	check := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		if !Equal(q.Get(name), other.Get(name)) {
			changed = append(changed, name)
		}
	}
	for name := range q {
		check(name)
	}
	for name := range other {
		check(name)
	}
	sort.Strings(changed)
	return changed
}

// EqualQuery reports whether both documents hold the same fields.
func EqualQuery(a, b Query) bool {
	return len(a.Diff(b)) == 0
}

// MergeQueries composes documents ordered from strongest to weakest. A field
// set in a stronger layer replaces the weaker value, including Missing, which
// the caller removes with Compact before committing.
func MergeQueries(layers ...Query) Query {
	merged := Query{}
	for i := len(layers) - 1; i >= 0; i-- {
		for name, value := range layers[i] {
			if value.kind == KindList {
				value = ListOf(value.list...)
			}
			merged[name] = value
		}
	}
	return merged
}

// ParseQuery decodes a URL query string. A key without "=" is Null, a key
// repeated several times becomes a list.
func ParseQuery(raw string) (Query, error) {
	raw = strings.TrimPrefix(raw, "?")
	out := Query{}
	if raw == "" {
		return out, nil
	}
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		name, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("routequery: parse key %q: %w", key, err)
		}
		item := NullScalar()
		if hasValue {
			decoded, err := url.QueryUnescape(value)
			if err != nil {
				return nil, fmt.Errorf("routequery: parse value for %q: %w", name, err)
			}
			item = S(decoded)
		}
		out[name] = appendScalar(out[name], item)
	}
	return out, nil
}

func appendScalar(existing RawValue, item Scalar) RawValue {
	switch existing.kind {
	case KindMissing:
		if item.Null {
			return Null()
		}
		return Value(item.Value)
	case KindNull:
		return ListOf(NullScalar(), item)
	case KindScalar:
		return ListOf(S(existing.scalar), item)
	default:
		return ListOf(append(existing.list, item)...)
	}
}

// Encode renders the document as a query string with keys in sorted order.
// Missing fields are skipped and empty lists produce nothing.
func (q Query) Encode() string {
	var b strings.Builder
	write := func(name string, item Scalar) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		if item.Null {
			return
		}
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(item.Value))
	}
	for _, name := range q.Names() {
		value := q[name]
		switch value.kind {
		case KindNull:
			write(name, NullScalar())
		case KindScalar:
			write(name, S(value.scalar))
		case KindList:
			for _, item := range value.list {
				write(name, item)
			}
		}
	}
	return b.String()
}
