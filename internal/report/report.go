package report

import (
	"time"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/rule"
)

// Report is the outcome of one virtual rule run, as handed to writers.
type Report struct {
	// RuleID is the requested rule identifier.
	RuleID string `json:"ruleId"`

	// Found reports whether the rule was registered.
	Found bool `json:"found"`

	// Locale is the locale the result metadata was published in.
	Locale string `json:"locale,omitempty"`

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `json:"generatedAt"`

	// Result is the evaluator's result. Nil when the rule was not found.
	Result rule.Result `json:"result"`
}

// RuleResult returns the result as a *model.RuleResult, or nil when the
// evaluator returned something else.
func (r *Report) RuleResult() *model.RuleResult {
	rr, _ := r.Result.(*model.RuleResult)
	return rr
}

// Summary counts nodes by outcome.
type Summary struct {
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	Incomplete   int `json:"incomplete"`
	Inapplicable int `json:"inapplicable"`

	// ByImpact counts failed and incomplete nodes by impact.
	ByImpact map[model.Impact]int `json:"-"`
}

// Summarize counts the nodes of rr. A nil rr yields an empty summary.
func Summarize(rr *model.RuleResult) Summary {
	s := Summary{ByImpact: make(map[model.Impact]int)}
	if rr == nil {
		return s
	}

	for _, n := range rr.Nodes {
		switch n.Outcome {
		case model.OutcomePassed:
			s.Passed++
		case model.OutcomeFailed:
			s.Failed++
			s.ByImpact[n.Impact]++
		case model.OutcomeIncomplete:
			s.Incomplete++
			s.ByImpact[n.Impact]++
		case model.OutcomeInapplicable:
			s.Inapplicable++
		}
	}
	return s
}

// Total returns the number of nodes counted.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Incomplete + s.Inapplicable
}

// impactsBySeverity lists impacts from most to least severe.
var impactsBySeverity = []model.Impact{
	model.ImpactCritical,
	model.ImpactSerious,
	model.ImpactModerate,
	model.ImpactMinor,
	model.ImpactNone,
}
