package metadata

import (
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/rule"
)

// Publisher receives the raw result of every successful rule run.
//
// Implementations must accept any result value, including true, false, and
// nil. The audit engine returns the original result to its caller no matter
// what Publish does; a non-nil error is reported alongside that result.
type Publisher interface {
	Publish(result rule.Result) error
}

// PublisherFunc adapts an ordinary function to the Publisher interface.
type PublisherFunc func(result rule.Result) error

// Publish calls f(result).
func (f PublisherFunc) Publish(result rule.Result) error {
	return f(result)
}

// NopPublisher discards every result.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(rule.Result) error {
	return nil
}

// CatalogPublisher fills catalog metadata into *model.RuleResult values.
// Results of any other type are left untouched.
type CatalogPublisher struct {
	catalog *Catalog
	locale  string
	logger  *slog.Logger
}

// PublisherOption configures a CatalogPublisher.
type PublisherOption func(*CatalogPublisher)

// WithLocale selects the locale messages are rendered in.
func WithLocale(locale string) PublisherOption {
	return func(p *CatalogPublisher) {
		p.locale = locale
	}
}

// WithPublisherLogger sets the logger.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *CatalogPublisher) {
		p.logger = logger
	}
}

// NewCatalogPublisher creates a publisher backed by catalog.
func NewCatalogPublisher(catalog *Catalog, opts ...PublisherOption) *CatalogPublisher {
	p := &CatalogPublisher{
		catalog: catalog,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Publish enriches result in place when it is a *model.RuleResult.
//
// It sets the rule's description, help, help URL, and tags from the catalog,
// renders a message for every check, assigns impacts, and writes a failure
// summary for failed and incomplete nodes. Rules or checks missing from the
// catalog are left as they are.
func (p *CatalogPublisher) Publish(result rule.Result) error {
	rr, ok := result.(*model.RuleResult)
	if !ok || rr == nil {
		p.logger.Debug("result carries no metadata, skipping",
			"type", fmt.Sprintf("%T", result),
		)
		return nil
	}

	view := p.catalog.Lookup(p.locale)

	info, known := view.Rule(rr.ID)
	if known {
		rr.Description = info.Description
		rr.Help = info.Help
		rr.HelpURL = info.HelpURL
		if len(rr.Tags) == 0 && len(info.Tags) > 0 {
			rr.Tags = append([]string(nil), info.Tags...)
		}
	} else {
		p.logger.Debug("no metadata for rule",
			"rule", rr.ID,
			"locale", view.Tag().String(),
		)
	}

	impacts := make([]model.Impact, 0, len(rr.Nodes))
	for i := range rr.Nodes {
		node := &rr.Nodes[i]
		if err := p.publishNode(view, rr.ID, info, node); err != nil {
			return fmt.Errorf("rule %s: %w", rr.ID, err)
		}
		if node.Outcome == model.OutcomeFailed || node.Outcome == model.OutcomeIncomplete {
			impacts = append(impacts, node.Impact)
		}
	}
	rr.Impact = model.MaxImpact(impacts...)

	return nil
}

// publishNode renders check messages and sets the node's impact and summary.
func (p *CatalogPublisher) publishNode(view *View, ruleID string, info RuleInfo, node *model.NodeResult) error {
	var failed []string
	impacts := make([]model.Impact, 0, len(node.Checks))

	for j := range node.Checks {
		check := &node.Checks[j]

		ci, ok := view.Check(check.ID)
		if ok {
			if check.Impact == model.ImpactNone {
				check.Impact = ci.Impact
			}
			msg, err := renderMessage(ci.Template(check.Outcome), ruleID, check.Data)
			if err != nil {
				return fmt.Errorf("check %s: %w", check.ID, err)
			}
			if msg != "" {
				check.Message = msg
			}
		}

		if check.Outcome == model.OutcomeFailed || check.Outcome == model.OutcomeIncomplete {
			impacts = append(impacts, check.Impact)
			if check.Message != "" {
				failed = append(failed, check.Message)
			}
		}
	}

	if node.Outcome != model.OutcomeFailed && node.Outcome != model.OutcomeIncomplete {
		return nil
	}

	node.Impact = model.MaxImpact(impacts...)
	if node.Impact == model.ImpactNone {
		node.Impact = info.Impact
	}
	if len(failed) > 0 {
		node.FailureSummary = "Fix all of the following:\n  " + strings.Join(failed, "\n  ")
	}

	return nil
}

// messageData is the value message templates are executed against.
type messageData struct {
	RuleID string
	Data   any
}

// renderMessage executes a message template. An empty template renders as an
// empty message.
func renderMessage(text, ruleID string, data any) (string, error) {
	if text == "" {
		return "", nil
	}

	tmpl, err := template.New("message").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse message template: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, messageData{RuleID: ruleID, Data: data}); err != nil {
		return "", fmt.Errorf("failed to render message template: %w", err)
	}

	return sb.String(), nil
}
