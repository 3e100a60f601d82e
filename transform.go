package routequery

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goliatone/go-routequery/internal/hydrate"
)

// Transform converts between the wire shape and the application type.
// FromRaw is only called with present values; Missing always maps to the
// synchronizer's default.
type Transform[T any] struct {
	FromRaw func(RawValue) (T, error)
	ToRaw   func(T) (RawValue, error)
}

func (t Transform[T]) valid() bool {
	return t.FromRaw != nil && t.ToRaw != nil
}

// Identity passes raw values through untouched.
func Identity() Transform[RawValue] {
	return Transform[RawValue]{
		FromRaw: func(raw RawValue) (RawValue, error) { return raw, nil },
		ToRaw:   func(value RawValue) (RawValue, error) { return value, nil },
	}
}

// firstScalar returns the scalar, or the first non-null list element.
func firstScalar(raw RawValue) (string, bool) {
	switch raw.Kind() {
	case KindScalar:
		return raw.scalar, true
	case KindList:
		for _, item := range raw.list {
			if !item.Null {
				return item.Value, true
			}
		}
	}
	return "", false
}

// AsString maps a scalar to string. Null reads as "", lists read their first element.
func AsString() Transform[string] {
	return Transform[string]{
		FromRaw: func(raw RawValue) (string, error) {
			s, _ := firstScalar(raw)
			return s, nil
		},
		ToRaw: func(value string) (RawValue, error) {
			return Value(value), nil
		},
	}
}

// AsInt parses base-10 integers. Null reads as 0.
func AsInt() Transform[int] {
	return Transform[int]{
		FromRaw: func(raw RawValue) (int, error) {
			s, ok := firstScalar(raw)
			if !ok {
				return 0, nil
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return 0, fmt.Errorf("parse int %q: %w", s, err)
			}
			return n, nil
		},
		ToRaw: func(value int) (RawValue, error) {
			return Value(strconv.Itoa(value)), nil
		},
	}
}

// AsFloat parses 64-bit floats. Null reads as 0.
func AsFloat() Transform[float64] {
	return Transform[float64]{
		FromRaw: func(raw RawValue) (float64, error) {
			s, ok := firstScalar(raw)
			if !ok {
				return 0, nil
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, fmt.Errorf("parse float %q: %w", s, err)
			}
			return f, nil
		},
		ToRaw: func(value float64) (RawValue, error) {
			return Value(strconv.FormatFloat(value, 'f', -1, 64)), nil
		},
	}
}

// AsBool parses booleans. A bare flag (`?debug`) and an empty value read as true.
func AsBool() Transform[bool] {
	return Transform[bool]{
		FromRaw: func(raw RawValue) (bool, error) {
			s, ok := firstScalar(raw)
			if !ok || s == "" {
				return true, nil
			}
			b, err := strconv.ParseBool(s)
			if err != nil {
				return false, fmt.Errorf("parse bool %q: %w", s, err)
			}
			return b, nil
		},
		ToRaw: func(value bool) (RawValue, error) {
			return Value(strconv.FormatBool(value)), nil
		},
	}
}

// AsStrings maps the field to a string slice; a scalar becomes a one-element
// slice and null elements are dropped. An empty slice clears the field.
func AsStrings() Transform[[]string] {
	return Transform[[]string]{
		FromRaw: func(raw RawValue) ([]string, error) {
			return raw.Strings(), nil
		},
		ToRaw: func(values []string) (RawValue, error) {
			if len(values) == 0 {
				return Missing(), nil
			}
			return Values(values...), nil
		},
	}
}

// JSONOption configures AsJSON decoding.
type JSONOption func(*jsonConfig)

type jsonConfig struct {
	useNumber       bool
	disallowUnknown bool
	base64          bool
}

// JSONUseNumber decodes numbers into json.Number.
func JSONUseNumber() JSONOption {
	return func(cfg *jsonConfig) { cfg.useNumber = true }
}

// JSONDisallowUnknownFields rejects payloads with fields T does not declare.
func JSONDisallowUnknownFields() JSONOption {
	return func(cfg *jsonConfig) { cfg.disallowUnknown = true }
}

// JSONBase64 wraps the JSON payload in unpadded URL-safe base64.
func JSONBase64() JSONOption {
	return func(cfg *jsonConfig) { cfg.base64 = true }
}

func decodeBase64Payload(_ hydrate.Context, payload []byte) ([]byte, error) {
	out := make([]byte, base64.RawURLEncoding.DecodedLen(len(payload)))
	n, err := base64.RawURLEncoding.Decode(out, payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return out[:n], nil
}

// AsJSON stores T as a JSON encoded scalar.
func AsJSON[T any](opts ...JSONOption) Transform[T] {
	cfg := jsonConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	var decoderOpts []hydrate.DecoderOption[T]
	if cfg.useNumber {
		decoderOpts = append(decoderOpts, hydrate.WithUseNumber[T]())
	}
	if cfg.disallowUnknown {
		decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownFields[T]())
	}
	if cfg.base64 {
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](decodeBase64Payload))
	}
	decoder := hydrate.NewDecoder(decoderOpts...)

	return Transform[T]{
		FromRaw: func(raw RawValue) (T, error) {
			var zero T
			s, ok := firstScalar(raw)
			if !ok || s == "" {
				return zero, nil
			}
			return decoder.Decode(hydrate.Context{}, []byte(s))
		},
		ToRaw: func(value T) (RawValue, error) {
			payload, err := json.Marshal(value)
			if err != nil {
				return Missing(), fmt.Errorf("encode json: %w", err)
			}
			if cfg.base64 {
				return Value(base64.RawURLEncoding.EncodeToString(payload)), nil
			}
			return Value(string(payload)), nil
		},
	}
}
