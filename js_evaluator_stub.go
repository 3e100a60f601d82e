//go:build !js_eval

package routequery

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil;
// EvaluatorFor reports ErrNoEvaluator for the js engine in that case.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
