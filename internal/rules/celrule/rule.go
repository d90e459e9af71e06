package celrule

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/rule"
)

var (
	// ErrNotBool is returned when a matches or check expression does not
	// evaluate to a boolean.
	ErrNotBool = errors.New("expression did not evaluate to a boolean")

	// ErrNoCheck is returned by New when the check expression is empty.
	ErrNoCheck = errors.New("check expression is required")
)

// Spec describes a CEL rule. It is decoded from rule configuration.
type Spec struct {
	// Matches selects the nodes the rule applies to. Empty matches every
	// candidate.
	Matches string `mapstructure:"matches" yaml:"matches"`

	// Check decides whether a node passes.
	Check string `mapstructure:"check" yaml:"check"`

	// Data is attached to the check result as evidence for messages.
	Data string `mapstructure:"data" yaml:"data"`

	// CheckID identifies the check in results and in the metadata catalog.
	// It defaults to the rule id.
	CheckID string `mapstructure:"checkId" yaml:"checkId"`
}

// Evaluator evaluates a compiled CEL rule.
type Evaluator struct {
	ruleID  string
	checkID string
	matches cel.Program
	check   cel.Program
	data    cel.Program
}

// New compiles spec into an Evaluator for the rule ruleID, using the shared
// environment.
func New(ruleID string, spec Spec) (*Evaluator, error) {
	env, err := DefaultEnvironment()
	if err != nil {
		return nil, err
	}
	return NewWithEnvironment(env, ruleID, spec)
}

// NewWithEnvironment compiles spec in env.
func NewWithEnvironment(env *Environment, ruleID string, spec Spec) (*Evaluator, error) {
	if spec.Check == "" {
		return nil, fmt.Errorf("rule %s: %w", ruleID, ErrNoCheck)
	}

	e := &Evaluator{
		ruleID:  ruleID,
		checkID: spec.CheckID,
	}
	if e.checkID == "" {
		e.checkID = ruleID
	}

	var err error
	if spec.Matches != "" {
		if e.matches, err = env.Compile(spec.Matches); err != nil {
			return nil, fmt.Errorf("rule %s: matches: %w", ruleID, err)
		}
	}
	if e.check, err = env.Compile(spec.Check); err != nil {
		return nil, fmt.Errorf("rule %s: check: %w", ruleID, err)
	}
	if spec.Data != "" {
		if e.data, err = env.Compile(spec.Data); err != nil {
			return nil, fmt.Errorf("rule %s: data: %w", ruleID, err)
		}
	}

	return e, nil
}

// Evaluate runs the rule against every candidate of c and returns a
// *model.RuleResult with one entry per node the rule applies to.
func (e *Evaluator) Evaluate(c *rule.Context, opts rule.Options) (rule.Result, error) {
	result := model.NewRuleResult(e.ruleID)

	options := map[string]any(opts)
	if options == nil {
		options = map[string]any{}
	}

	for _, node := range c.Candidates() {
		vars := map[string]any{
			"node":    node.Properties(),
			"options": options,
		}

		if e.matches != nil {
			applies, err := evalBool(e.matches, vars)
			if err != nil {
				return nil, fmt.Errorf("rule %s: matches: %w", e.ruleID, err)
			}
			if !applies {
				continue
			}
		}

		passed, err := evalBool(e.check, vars)
		if err != nil {
			return nil, fmt.Errorf("rule %s: check: %w", e.ruleID, err)
		}

		check := model.CheckResult{
			ID:      e.checkID,
			Outcome: model.OutcomeFailed,
		}
		if passed {
			check.Outcome = model.OutcomePassed
		}
		if e.data != nil {
			val, _, err := e.data.Eval(vars)
			if err != nil {
				return nil, fmt.Errorf("rule %s: data: %w", e.ruleID, err)
			}
			check.Data = toNative(val)
		}

		result.AddNode(model.NewNodeResult(node.HTML(), []model.CheckResult{check}))
	}

	return result, nil
}

// evalBool evaluates a program that must produce a boolean.
func evalBool(program cel.Program, vars map[string]any) (bool, error) {
	val, _, err := program.Eval(vars)
	if err != nil {
		return false, err
	}
	b, ok := val.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %s", ErrNotBool, val.Type().TypeName())
	}
	return b, nil
}

var (
	mapType  = reflect.TypeOf(map[string]any{})
	listType = reflect.TypeOf([]any{})
)

// toNative converts a CEL value into plain Go values for result data.
func toNative(val ref.Val) any {
	switch v := val.(type) {
	case types.Null:
		return nil
	case traits.Mapper:
		if native, err := v.ConvertToNative(mapType); err == nil {
			return native
		}
	case traits.Lister:
		if native, err := v.ConvertToNative(listType); err == nil {
			return native
		}
	}
	return val.Value()
}
