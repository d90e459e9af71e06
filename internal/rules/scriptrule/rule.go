package scriptrule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/rule"
	"github.com/nao1215/a11yscan/internal/rules/vocab"
)

// DefaultTimeout bounds a single evaluation when the spec sets none.
const DefaultTimeout = time.Second

var (
	// ErrNoSource is returned by New when the script is empty.
	ErrNoSource = errors.New("script source is required")

	// ErrNoEvaluate is returned when the script does not define an evaluate
	// function.
	ErrNoEvaluate = errors.New("script does not define an evaluate function")

	// ErrInvalidResult is returned when evaluate returns a value that is not a
	// boolean, a result object, or null.
	ErrInvalidResult = errors.New("invalid evaluate result")

	// ErrTimeout is returned when an evaluation exceeds its timeout.
	ErrTimeout = errors.New("script evaluation timed out")
)

// Spec describes a script rule. It is decoded from rule configuration.
type Spec struct {
	// Source is the JavaScript source.
	Source string `mapstructure:"source" yaml:"source"`

	// CheckID identifies the check in results and in the metadata catalog.
	// It defaults to the rule id.
	CheckID string `mapstructure:"checkId" yaml:"checkId"`

	// Timeout bounds the script's top-level code and each evaluation.
	// Zero means DefaultTimeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// dangerousGlobals are removed from every runtime.
var dangerousGlobals = []string{
	"require", "module", "exports", "process", "global",
	"__dirname", "__filename", "Buffer", "setImmediate", "clearImmediate",
}

// Evaluator evaluates a compiled script rule.
//
// Design decision: The compiled program is shared, but every Evaluate call
// runs it in a new goja runtime. A goja.Runtime is not safe for concurrent
// use, and a fresh runtime keeps state left by one evaluation from leaking
// into the next.
type Evaluator struct {
	ruleID  string
	checkID string
	program *goja.Program
	timeout time.Duration
}

// New compiles spec into an Evaluator for the rule ruleID.
// The script must define evaluate; this is checked here so configuration
// errors surface at load time.
func New(ruleID string, spec Spec) (*Evaluator, error) {
	if strings.TrimSpace(spec.Source) == "" {
		return nil, fmt.Errorf("rule %s: %w", ruleID, ErrNoSource)
	}

	program, err := goja.Compile(ruleID+".js", spec.Source, true)
	if err != nil {
		return nil, fmt.Errorf("rule %s: failed to compile script: %w", ruleID, err)
	}

	e := &Evaluator{
		ruleID:  ruleID,
		checkID: spec.CheckID,
		program: program,
		timeout: spec.Timeout,
	}
	if e.checkID == "" {
		e.checkID = ruleID
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}

	vm, err := e.newRuntime()
	if err != nil {
		return nil, err
	}
	if _, ok := goja.AssertFunction(vm.Get("evaluate")); !ok {
		return nil, fmt.Errorf("rule %s: %w", ruleID, ErrNoEvaluate)
	}

	return e, nil
}

// newRuntime creates a sandboxed runtime and runs the program in it.
// Top-level code is bounded by the evaluation timeout.
func (e *Evaluator) newRuntime() (*goja.Runtime, error) {
	vm := goja.New()

	for _, name := range dangerousGlobals {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	if err := vm.Set("isValidRole", vocab.IsValidRole); err != nil {
		return nil, fmt.Errorf("failed to register isValidRole: %w", err)
	}
	if err := vm.Set("isValidLang", vocab.IsValidLang); err != nil {
		return nil, fmt.Errorf("failed to register isValidLang: %w", err)
	}

	timer := time.AfterFunc(e.timeout, func() {
		vm.Interrupt(ErrTimeout)
	})
	_, err := vm.RunProgram(e.program)
	timer.Stop()
	if err != nil {
		return nil, e.wrapError(err)
	}
	vm.ClearInterrupt()

	return vm, nil
}

// Evaluate runs the script against every candidate of c and returns a
// *model.RuleResult with one entry per node the rule applies to.
func (e *Evaluator) Evaluate(c *rule.Context, opts rule.Options) (rule.Result, error) {
	vm, err := e.newRuntime()
	if err != nil {
		return nil, err
	}

	evaluate, ok := goja.AssertFunction(vm.Get("evaluate"))
	if !ok {
		return nil, fmt.Errorf("rule %s: %w", e.ruleID, ErrNoEvaluate)
	}
	matches, hasMatches := goja.AssertFunction(vm.Get("matches"))

	timer := time.AfterFunc(e.timeout, func() {
		vm.Interrupt(ErrTimeout)
	})
	defer timer.Stop()

	options := map[string]any(opts)
	if options == nil {
		options = map[string]any{}
	}
	jsOptions := vm.ToValue(options)

	result := model.NewRuleResult(e.ruleID)
	for _, node := range c.Candidates() {
		jsNode := vm.ToValue(node.Properties())

		if hasMatches {
			applies, err := matches(goja.Undefined(), jsNode, jsOptions)
			if err != nil {
				return nil, e.wrapError(err)
			}
			if !applies.ToBoolean() {
				continue
			}
		}

		value, err := evaluate(goja.Undefined(), jsNode, jsOptions)
		if err != nil {
			return nil, e.wrapError(err)
		}

		check, applicable, err := e.checkResult(value)
		if err != nil {
			return nil, err
		}
		if !applicable {
			continue
		}

		result.AddNode(model.NewNodeResult(node.HTML(), []model.CheckResult{check}))
	}

	return result, nil
}

// checkResult converts the value returned by evaluate. The boolean is false
// when the rule does not apply to the node.
func (e *Evaluator) checkResult(value goja.Value) (model.CheckResult, bool, error) {
	check := model.CheckResult{ID: e.checkID}

	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return check, false, nil
	}

	switch v := value.Export().(type) {
	case bool:
		check.Outcome = outcomeOf(v)
	case map[string]any:
		outcome, err := parseOutcome(v["result"])
		if err != nil {
			return check, false, fmt.Errorf("rule %s: %w", e.ruleID, err)
		}
		if outcome == model.OutcomeInapplicable {
			return check, false, nil
		}
		check.Outcome = outcome
		check.Data = v["data"]
	default:
		return check, false, fmt.Errorf("rule %s: %w: %T", e.ruleID, ErrInvalidResult, v)
	}

	return check, true, nil
}

// parseOutcome interprets the result field of a result object.
func parseOutcome(v any) (model.Outcome, error) {
	switch r := v.(type) {
	case bool:
		return outcomeOf(r), nil
	case string:
		switch o := model.Outcome(strings.ToLower(r)); o {
		case model.OutcomePassed, model.OutcomeFailed, model.OutcomeIncomplete, model.OutcomeInapplicable:
			return o, nil
		}
		return "", fmt.Errorf("%w: unknown result %q", ErrInvalidResult, r)
	case nil:
		return model.OutcomeInapplicable, nil
	default:
		return "", fmt.Errorf("%w: result must be a boolean or string, got %T", ErrInvalidResult, v)
	}
}

func outcomeOf(passed bool) model.Outcome {
	if passed {
		return model.OutcomePassed
	}
	return model.OutcomeFailed
}

// wrapError adds the rule id to a script error and maps interrupts to
// ErrTimeout.
func (e *Evaluator) wrapError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("rule %s: %w", e.ruleID, ErrTimeout)
	}
	return fmt.Errorf("rule %s: %w", e.ruleID, err)
}
