package routequery

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNameRequired indicates an empty field name.
	ErrNameRequired = errors.New("routequery: field name must not be empty")
	// ErrStoreRequired indicates a synchronizer was built without a Store.
	ErrStoreRequired = errors.New("routequery: store is required")
	// ErrTransformRequired indicates a non-RawValue type without a Transform.
	ErrTransformRequired = errors.New("routequery: transform is required for non-raw value types")
	// ErrTransformType indicates WithTransform received a Transform for another type.
	ErrTransformType = errors.New("routequery: transform does not match the value type")
	// ErrDisposed indicates a write on a disposed synchronizer.
	ErrDisposed = errors.New("routequery: synchronizer disposed")
)

// Direction names which half of a Transform failed.
type Direction string

const (
	DirectionFromRaw Direction = "from_raw"
	DirectionToRaw   Direction = "to_raw"
)

// TransformError captures transform metadata alongside the originating error.
type TransformError struct {
	Field     string
	Direction Direction
	Engine    string
	Expr      string
	Err       error
}

func (e *TransformError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("routequery:")
	if e.Engine != "" {
		b.WriteString(" " + e.Engine)
	}
	if e.Direction != "" {
		b.WriteString(" " + string(e.Direction))
	}
	b.WriteString(" transform")
	if e.Field != "" {
		fmt.Fprintf(&b, " field=%q", e.Field)
	}
	if e.Expr != "" {
		fmt.Fprintf(&b, " expr=%q", e.Expr)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *TransformError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// wrapTransformError attaches the field and direction, filling blanks on an
// existing TransformError rather than nesting a second one.
func wrapTransformError(field string, direction Direction, err error) error {
	if err == nil {
		return nil
	}
	var transformErr *TransformError
	if errors.As(err, &transformErr) {
		if transformErr.Field == "" {
			transformErr.Field = field
		}
		if transformErr.Direction == "" {
			transformErr.Direction = direction
		}
		return err
	}
	return &TransformError{
		Field:     field,
		Direction: direction,
		Err:       err,
	}
}

func wrapEvaluatorError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}
	var transformErr *TransformError
	if errors.As(err, &transformErr) {
		if transformErr.Engine == "" {
			transformErr.Engine = engine
		}
		if transformErr.Expr == "" {
			transformErr.Expr = expr
		}
		return err
	}
	return &TransformError{
		Engine: engine,
		Expr:   expr,
		Err:    err,
	}
}

// DeliveryError reports subscriber failures raised after a store mutation was
// applied. The mutation itself stands.
type DeliveryError struct {
	Err error
}

// DeliveryErrors joins subscriber errors into a DeliveryError, nil when every
// error is nil.
func DeliveryErrors(errs ...error) error {
	joined := errors.Join(errs...)
	if joined == nil {
		return nil
	}
	return &DeliveryError{Err: joined}
}

func (e *DeliveryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("routequery: subscriber delivery: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
