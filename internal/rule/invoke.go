package rule

// DisableHiddenExclusion turns off hidden-content exclusion on def,
// unconditionally.
//
// The change is made on the shared definition and persists for every later
// evaluation of the rule, virtual or not. Virtual nodes carry no computed
// style, so hidden-content exclusion cannot be resolved for them.
//
// The write is not synchronized. Callers must not run virtual evaluations of
// the same rule concurrently without their own locking.
func DisableHiddenExclusion(def *Definition) {
	def.ExcludeHidden = false
}

// Invoke calls the definition's evaluator exactly once with c and opts and
// returns its result unaltered. A nil opts is replaced by an empty Options.
//
// The context's ExcludeHidden is set from the definition before the call.
// Errors from the evaluator are returned as is.
func Invoke(def *Definition, c *Context, opts Options) (Result, error) {
	if def.Evaluator == nil {
		return nil, ErrNilEvaluator
	}
	if opts == nil {
		opts = Options{}
	}

	c.ExcludeHidden = def.ExcludeHidden

	return def.Evaluator.Evaluate(c, opts)
}
