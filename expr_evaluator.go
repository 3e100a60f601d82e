package routequery

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr evaluator.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEvaluator compiles transform expressions with github.com/expr-lang/expr.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Engine() string {
	return "expr"
}

func (e *exprEvaluator) Compile(expression string) (Program, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	key := cacheKey(e.Engine(), e.registry, expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return &exprProgram{program: program}, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if e.registry != nil {
		options = append(options, exprlang.Function("call", e.callFunction))
		for _, name := range e.registry.Names() {
			options = append(options, exprlang.Function(name, e.registryFunction(name)))
		}
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return &exprProgram{program: program}, nil
}

// callFunction accepts call(name, [args]) and call(name, args...).
func (e *exprEvaluator) callFunction(arguments ...any) (any, error) {
	if len(arguments) == 0 {
		return nil, fmt.Errorf("call requires a function name")
	}
	name, ok := arguments[0].(string)
	if !ok {
		return nil, fmt.Errorf("call name must be string, got %T", arguments[0])
	}
	rest := arguments[1:]
	if len(rest) == 1 {
		if list, ok := rest[0].([]any); ok {
			rest = list
		}
	}
	return e.registry.Call(name, rest...)
}

func (e *exprEvaluator) registryFunction(name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}

type exprProgram struct {
	program *exprvm.Program
}

func (p *exprProgram) Run(env map[string]any) (any, error) {
	return exprlang.Run(p.program, env)
}
