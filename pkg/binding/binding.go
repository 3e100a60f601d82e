// Package binding builds synchronized query fields from declarative YAML
// definitions, with expression transforms evaluated by expr, CEL or goja.
package binding

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	routequery "github.com/goliatone/go-routequery"
	"github.com/goliatone/go-routequery/schema/openapi"
)

// ErrUnknownField indicates a name the set does not bind.
var ErrUnknownField = errors.New("binding: unknown field")

// Config supplies the runtime collaborators of a bound set. Only Store is
// required. Expressions always see routequery.Builtins; Functions adds to or
// overrides them.
type Config struct {
	Store     routequery.Store
	Queues    *routequery.Queues
	Registrar routequery.Registrar
	Cache     routequery.ProgramCache
	Functions *routequery.FunctionRegistry
}

// Set is a group of bound fields sharing one store.
type Set struct {
	def    Definition
	fields map[string]*routequery.Synced[any]
	defs   map[string]FieldDefinition
}

// Bind creates one synchronizer per field of def.
func Bind(def Definition, cfg Config) (*Set, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	def = def.Normalized()
	if cfg.Cache == nil {
		cfg.Cache = routequery.NewProgramCache()
	}
	if cfg.Functions == nil {
		cfg.Functions = routequery.Builtins()
	} else {
		cfg.Functions = cfg.Functions.Clone().Merge(routequery.Builtins())
	}

	set := &Set{
		def:    def,
		fields: make(map[string]*routequery.Synced[any], len(def.Fields)),
		defs:   make(map[string]FieldDefinition, len(def.Fields)),
	}
	for _, field := range def.Fields {
		synced, err := bindField(field, cfg)
		if err != nil {
			set.Dispose()
			return nil, fmt.Errorf("binding: field %q: %w", field.Name, err)
		}
		set.fields[field.Name] = synced
		set.defs[field.Name] = field
	}
	return set, nil
}

func bindField(field FieldDefinition, cfg Config) (*routequery.Synced[any], error) {
	evaluator, err := routequery.EvaluatorFor(field.Engine, cfg.Cache, cfg.Functions)
	if err != nil {
		return nil, err
	}
	transform, err := routequery.EvalTransform(evaluator, field.FromRaw, field.ToRaw)
	if err != nil {
		return nil, err
	}
	mode, err := routequery.ParseMode(field.Mode)
	if err != nil {
		return nil, err
	}

	opts := []routequery.Option{
		routequery.WithStore(cfg.Store),
		routequery.WithMode(mode),
		routequery.WithTransform(transform),
	}
	if cfg.Queues != nil {
		opts = append(opts, routequery.WithQueues(cfg.Queues))
	}
	if cfg.Registrar != nil {
		opts = append(opts, routequery.WithRegistrar(cfg.Registrar))
	}
	return routequery.New[any](field.Name, field.Default, opts...)
}

// Names returns the bound field names in declaration order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.def.Fields))
	for _, field := range s.def.Fields {
		if _, ok := s.fields[field.Name]; ok {
			names = append(names, field.Name)
		}
	}
	return names
}

// Field returns the synchronizer bound to name.
func (s *Set) Field(name string) (*routequery.Synced[any], bool) {
	synced, ok := s.fields[name]
	return synced, ok
}

// Get reads the typed value of name.
func (s *Set) Get(name string) (any, error) {
	synced, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return synced.Get(), nil
}

// Values snapshots every field.
func (s *Set) Values() map[string]any {
	out := make(map[string]any, len(s.fields))
	for name, synced := range s.fields {
		out[name] = synced.Peek()
	}
	return out
}

// Set writes value to name.
func (s *Set) Set(name string, value any) error {
	synced, ok := s.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return synced.Set(value)
}

// Assign writes textual input, as typed on a command line, to name. List
// fields split the text on commas and an empty text clears the field.
func (s *Set) Assign(name, text string) error {
	field, ok := s.defs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if text == "" {
		return s.Set(name, nil)
	}
	if !field.List {
		return s.Set(name, text)
	}
	parts := strings.Split(text, ",")
	items := make([]any, len(parts))
	for i, part := range parts {
		items[i] = strings.TrimSpace(part)
	}
	return s.Set(name, items)
}

// Dispose disposes every bound field.
func (s *Set) Dispose() {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.fields[name].Dispose()
	}
}

// Parameters describes the bound fields as OpenAPI query parameters.
func (s *Set) Parameters() []openapi.Parameter {
	params := make([]openapi.Parameter, 0, len(s.def.Fields))
	for _, name := range s.Names() {
		field := s.defs[name]
		params = append(params, openapi.Parameter{
			Name:        field.Name,
			Description: field.Description,
			Default:     field.Default,
			List:        field.List,
			Required:    field.Required,
		})
	}
	return params
}

// OpenAPI renders the bound fields as an OpenAPI document for the
// definition's path.
func (s *Set) OpenAPI(opts ...openapi.GeneratorOption) (map[string]any, error) {
	base := []openapi.GeneratorOption{
		openapi.WithRoute(openapi.Route{Path: s.def.Path, Method: "get"}),
		openapi.WithInfo(openapi.Info{Description: s.def.Description}),
	}
	return openapi.NewGenerator(append(base, opts...)...).Generate(s.Parameters())
}
