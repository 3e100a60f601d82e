package routequery

import (
	"context"

	"github.com/goliatone/go-routequery/pkg/reactive"
)

// Store is the external document a synchronizer mirrors.
//
// Subscribe callbacks must be delivered synchronously, after the mutation that
// changed the field, so every synchronizer reading the store sees the new value
// before the mutating call returns. Callback errors are returned by the
// mutating call wrapped in a *DeliveryError (see DeliveryErrors), which tells
// the write queue the commit itself landed. Implementations must be comparable, in practice pointer
// types, because the write queue is keyed by store identity.
type Store interface {
	Read(name string) RawValue
	Query() Query
	Subscribe(name string, fn func(RawValue) error) (unsubscribe func())
	Commit(ctx context.Context, fields Query, mode Mode) error
}

// Registrar ties a synchronizer's disposal to an enclosing lifetime.
// RegisterDisposal reports false when there is no lifetime to attach to, in
// which case fn is never called by the registrar.
type Registrar interface {
	RegisterDisposal(fn func()) bool
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(fn func()) bool

// RegisterDisposal implements Registrar.
func (f RegistrarFunc) RegisterDisposal(fn func()) bool {
	if f == nil {
		return false
	}
	return f(fn)
}

// ScopeRegistrar registers with the running reactive.Scope.
func ScopeRegistrar() Registrar {
	return RegistrarFunc(reactive.OnScopeDispose)
}

// NoRegistrar never registers; the caller owns disposal.
func NoRegistrar() Registrar {
	return RegistrarFunc(func(func()) bool { return false })
}
