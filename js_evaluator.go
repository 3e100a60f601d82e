//go:build js_eval

package routequery

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
	timeout  time.Duration
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each run gets a fresh
// runtime; compiled programs are shared.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
		timeout:  cfg.timeout,
	}
}

func (e *jsEvaluator) Engine() string {
	return "js"
}

func (e *jsEvaluator) Compile(expression string) (Program, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	key := cacheKey(e.Engine(), e.registry, expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return &jsProgram{evaluator: e, program: program}, nil
			}
		}
	}
	program, err := goja.Compile("", wrapJSExpression(expression), false)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return &jsProgram{evaluator: e, program: program}, nil
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsProgram struct {
	evaluator *jsEvaluator
	program   *goja.Program
}

func (p *jsProgram) Run(env map[string]any) (any, error) {
	vm := goja.New()
	for key, value := range env {
		if err := vm.Set(key, value); err != nil {
			return nil, err
		}
	}
	if registry := p.evaluator.registry; registry != nil {
		if err := vm.Set("call", func(name string, arguments []any) (any, error) {
			return registry.Call(name, arguments...)
		}); err != nil {
			return nil, err
		}
		for _, name := range registry.Names() {
			fn := name
			if err := vm.Set(fn, func(arguments ...any) (any, error) {
				return registry.Call(fn, arguments...)
			}); err != nil {
				return nil, err
			}
		}
	}
	if timeout := p.evaluator.timeout; timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			vm.Interrupt(fmt.Sprintf("routequery: js transform exceeded %s", timeout))
		})
		defer timer.Stop()
	}
	value, err := vm.RunProgram(p.program)
	if err != nil {
		return nil, err
	}
	if goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}
	return value.Export(), nil
}

func jsEvaluatorAvailable() bool {
	return true
}
