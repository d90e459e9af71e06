package model

// Outcome is the result of evaluating a rule or check against a node.
type Outcome string

const (
	// OutcomePassed means the node satisfies the rule.
	OutcomePassed Outcome = "passed"

	// OutcomeFailed means the node violates the rule.
	OutcomeFailed Outcome = "failed"

	// OutcomeIncomplete means the rule could not decide, and a human should
	// review the node.
	OutcomeIncomplete Outcome = "incomplete"

	// OutcomeInapplicable means the rule does not apply to the node.
	OutcomeInapplicable Outcome = "inapplicable"
)

// RuleResult is the result built-in evaluators return for one rule run.
//
// The audit engine treats results as opaque values. RuleResult is the shape
// the metadata publisher, reports, and result history understand; evaluators
// supplied by callers may return anything.
type RuleResult struct {
	// ID is the identifier of the rule that produced the result.
	ID string `json:"id"`

	// Description, Help, HelpURL, Impact, and Tags are filled in by the
	// metadata publisher. They are empty on a raw result.
	Description string   `json:"description,omitempty"`
	Help        string   `json:"help,omitempty"`
	HelpURL     string   `json:"helpUrl,omitempty"`
	Impact      Impact   `json:"impact,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Nodes contains one entry per node the rule applied to.
	Nodes []NodeResult `json:"nodes"`
}

// NodeResult is the outcome of a rule for a single node.
type NodeResult struct {
	// HTML is the node's markup.
	HTML string `json:"html"`

	// Outcome is the node's overall outcome.
	Outcome Outcome `json:"result"`

	// Impact is the most severe impact among the node's failed checks.
	Impact Impact `json:"impact,omitempty"`

	// Checks holds the individual checks run against the node.
	Checks []CheckResult `json:"checks,omitempty"`

	// FailureSummary is a human-readable explanation of what to fix.
	// Set by the metadata publisher for failed nodes.
	FailureSummary string `json:"failureSummary,omitempty"`
}

// CheckResult is the outcome of a single check against a node.
type CheckResult struct {
	// ID identifies the check, and is the key for its message templates.
	ID string `json:"id"`

	// Outcome is the check's outcome.
	Outcome Outcome `json:"result"`

	// Data is optional evidence the check attaches for message templates.
	Data any `json:"data,omitempty"`

	// Message is the human-readable message. Set by the metadata publisher.
	Message string `json:"message,omitempty"`

	// Impact is the check's impact. Set by the metadata publisher.
	Impact Impact `json:"impact,omitempty"`
}

// NewRuleResult creates an empty result for the given rule.
// Nodes is initialized to an empty slice so it serializes as [].
func NewRuleResult(ruleID string) *RuleResult {
	return &RuleResult{
		ID:    ruleID,
		Nodes: make([]NodeResult, 0),
	}
}

// NewNodeResult creates the result of a node whose outcome is derived from
// its checks.
func NewNodeResult(html string, checks []CheckResult) NodeResult {
	return NodeResult{
		HTML:    html,
		Outcome: NodeOutcome(checks),
		Checks:  checks,
	}
}

// AddNode appends a node result.
func (r *RuleResult) AddNode(node NodeResult) {
	r.Nodes = append(r.Nodes, node)
}

// Outcome returns the overall outcome of the rule: failed if any node failed,
// otherwise incomplete if any node is incomplete, otherwise passed if any
// node passed, otherwise inapplicable.
func (r *RuleResult) Outcome() Outcome {
	var passed, incomplete bool
	for _, n := range r.Nodes {
		switch n.Outcome {
		case OutcomeFailed:
			return OutcomeFailed
		case OutcomeIncomplete:
			incomplete = true
		case OutcomePassed:
			passed = true
		case OutcomeInapplicable:
		}
	}

	switch {
	case incomplete:
		return OutcomeIncomplete
	case passed:
		return OutcomePassed
	default:
		return OutcomeInapplicable
	}
}

// NodesWithOutcome returns the nodes whose outcome equals o.
func (r *RuleResult) NodesWithOutcome(o Outcome) []NodeResult {
	out := make([]NodeResult, 0)
	for _, n := range r.Nodes {
		if n.Outcome == o {
			out = append(out, n)
		}
	}
	return out
}

// Violations returns the failed nodes.
func (r *RuleResult) Violations() []NodeResult {
	return r.NodesWithOutcome(OutcomeFailed)
}

// Passes returns the passed nodes.
func (r *RuleResult) Passes() []NodeResult {
	return r.NodesWithOutcome(OutcomePassed)
}

// NodeOutcome derives a node outcome from its checks: failed if any check
// failed, incomplete if any check is incomplete, passed otherwise.
// A node without checks is inapplicable.
func NodeOutcome(checks []CheckResult) Outcome {
	if len(checks) == 0 {
		return OutcomeInapplicable
	}
	outcome := OutcomePassed
	for _, c := range checks {
		switch c.Outcome {
		case OutcomeFailed:
			return OutcomeFailed
		case OutcomeIncomplete:
			outcome = OutcomeIncomplete
		case OutcomePassed, OutcomeInapplicable:
		}
	}
	return outcome
}
