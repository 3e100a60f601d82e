package routequery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ErrNoEvaluator indicates an expression transform without a usable engine.
var ErrNoEvaluator = errors.New("routequery: no evaluator configured")

// Program is a compiled expression.
type Program interface {
	Run(env map[string]any) (any, error)
}

// Evaluator compiles expressions for EvalTransform.
type Evaluator interface {
	Engine() string
	Compile(expression string) (Program, error)
}

// ProgramCache stores compiled programs keyed by engine and expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type memoryProgramCache struct {
	mu       sync.RWMutex // protects programs
	programs map[string]any
}

// NewProgramCache returns an unbounded in-memory ProgramCache safe for
// concurrent use.
func NewProgramCache() ProgramCache {
	return &memoryProgramCache{programs: map[string]any{}}
}

func (c *memoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

func (c *memoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	c.programs[key] = value
	c.mu.Unlock()
}

// cacheKey scopes compiled programs by engine and by the registry revision
// they were compiled against, so evaluators with different functions can
// share one ProgramCache.
func cacheKey(engine string, registry *FunctionRegistry, expression string) string {
	return engine + "@" + strconv.FormatUint(registry.Revision(), 10) + ":" + expression
}

// EvaluatorFor returns the evaluator registered under engine ("expr", "cel"
// or "js"). An empty engine selects expr.
func EvaluatorFor(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "expr":
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case "cel":
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case "js":
		evaluator := NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
		if evaluator == nil {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, engine)
	}
}

// EvalTransform builds a Transform from two expressions. fromExpr sees the
// raw field as `raw` (nil, a string or a list); toExpr sees the typed value as
// `value`. Results are converted with FromAny. An empty expression passes the
// value through unchanged.
func EvalTransform(evaluator Evaluator, fromExpr, toExpr string) (Transform[any], error) {
	if evaluator == nil {
		return Transform[any]{}, ErrNoEvaluator
	}
	from, err := compileOptional(evaluator, fromExpr, DirectionFromRaw)
	if err != nil {
		return Transform[any]{}, err
	}
	to, err := compileOptional(evaluator, toExpr, DirectionToRaw)
	if err != nil {
		return Transform[any]{}, err
	}
	engine := evaluator.Engine()

	return Transform[any]{
		FromRaw: func(raw RawValue) (any, error) {
			if from == nil {
				return raw.Interface(), nil
			}
			out, err := from.Run(map[string]any{"raw": raw.Interface(), "value": nil})
			if err != nil {
				return nil, wrapEvaluatorError(engine, fromExpr, err)
			}
			return out, nil
		},
		ToRaw: func(value any) (RawValue, error) {
			if to != nil {
				out, err := to.Run(map[string]any{"raw": nil, "value": value})
				if err != nil {
					return Missing(), wrapEvaluatorError(engine, toExpr, err)
				}
				value = out
			}
			raw, err := FromAny(value)
			if err != nil {
				return Missing(), wrapEvaluatorError(engine, toExpr, err)
			}
			return raw, nil
		},
	}, nil
}

func compileOptional(evaluator Evaluator, expression string, direction Direction) (Program, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}
	program, err := evaluator.Compile(expression)
	if err != nil {
		return nil, wrapTransformError("", direction, wrapEvaluatorError(evaluator.Engine(), expression, err))
	}
	return program, nil
}
