package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/metadata"
	"github.com/nao1215/a11yscan/internal/metrics"
	"github.com/nao1215/a11yscan/internal/rule"
)

// ErrPublish wraps errors returned by the metadata publisher.
var ErrPublish = errors.New("failed to publish rule metadata")

// tracerName is the instrumentation scope of the auditor's spans.
const tracerName = "github.com/nao1215/a11yscan/internal/audit"

// Auditor evaluates registered rules against virtual nodes.
//
// Design decision: The registry is injected rather than global, so each
// auditor (and each test) works on its own set of rules. The registry's
// definitions are still shared with anyone else holding the registry, and a
// virtual run changes them: see RunVirtualRule.
type Auditor struct {
	// registry holds the rules that can be run.
	registry *rule.Registry

	// publisher receives every successful result. Nil disables publishing.
	publisher metadata.Publisher

	// logger overrides the context logger when set.
	logger *slog.Logger

	// tracer creates one span per run.
	tracer trace.Tracer

	// metrics counts runs. Nil records nothing.
	metrics *metrics.Metrics
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithPublisher sets the metadata publisher.
// Passing nil disables metadata publishing.
func WithPublisher(p metadata.Publisher) Option {
	return func(a *Auditor) {
		a.publisher = p
	}
}

// WithLogger sets the logger. Without it, the logger is taken from the
// context of each run (see log.WithContext).
func WithLogger(logger *slog.Logger) Option {
	return func(a *Auditor) {
		a.logger = logger
	}
}

// WithTracer sets the tracer used for run spans.
// The default is the global tracer provider's tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Auditor) {
		a.tracer = tracer
	}
}

// WithMetrics enables run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Auditor) {
		a.metrics = m
	}
}

// New creates an Auditor over registry.
// Without WithPublisher, results are published to a metadata.NopPublisher.
func New(registry *rule.Registry, opts ...Option) *Auditor {
	a := &Auditor{
		registry:  registry,
		publisher: metadata.NopPublisher{},
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.tracer == nil {
		a.tracer = otel.Tracer(tracerName)
	}

	return a
}

// Registry returns the auditor's rule registry.
func (a *Auditor) Registry() *rule.Registry {
	return a.registry
}

// RunVirtualRule runs the rule registered under ruleID against node.
//
// The steps are:
//  1. Look up ruleID. If it is not registered, return (nil, false, nil).
//  2. Disable hidden-content exclusion on the registered definition. The
//     change is permanent and affects every later run of the rule.
//  3. Build a context whose Include holds node alone. A nil node is replaced
//     by an empty placeholder.
//  4. Invoke the rule's evaluator exactly once with the context and opts.
//     A nil opts is passed as an empty Options. An evaluator error is
//     returned unchanged and nothing is published.
//  5. Publish the result. A publisher error is returned wrapped in
//     ErrPublish, together with the result.
//  6. Return the evaluator's result as is.
//
// ctx carries tracing and logging only; the run is not cancellable.
// RunVirtualRule must not be called concurrently for the same rule.
func (a *Auditor) RunVirtualRule(ctx context.Context, ruleID string, node *html.Node, opts rule.Options) (rule.Result, bool, error) {
	ctx, span := a.tracer.Start(ctx, "audit.RunVirtualRule",
		trace.WithAttributes(attribute.String("rule.id", ruleID)),
	)
	defer span.End()

	logger := a.loggerFor(ctx).With("rule", ruleID)
	start := time.Now()

	def, found := a.registry.Find(ruleID)
	if !found {
		logger.Warn("rule not found")
		span.SetAttributes(attribute.Bool("rule.found", false))
		a.metrics.ObserveRun(ruleID, metrics.OutcomeAbsent, 0)
		return nil, false, nil
	}
	span.SetAttributes(attribute.Bool("rule.found", true))

	if def.ExcludeHidden {
		logger.Debug("disabling hidden-content exclusion for virtual run")
	}
	rule.DisableHiddenExclusion(def)

	c := rule.BuildContext(node)
	logger.Debug("invoking rule",
		"node", c.Include[0].NodeName(),
		"options", map[string]any(opts),
	)

	result, err := rule.Invoke(def, c, opts)
	if err != nil {
		logger.Error("rule evaluation failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.metrics.ObserveRun(ruleID, metrics.OutcomeError, time.Since(start))
		return nil, true, err
	}

	if a.publisher != nil {
		if err := a.publisher.Publish(result); err != nil {
			logger.Error("metadata publishing failed", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			a.metrics.ObserveRun(ruleID, metrics.OutcomeError, time.Since(start))
			return result, true, fmt.Errorf("%w: %w", ErrPublish, err)
		}
		logger.Debug("metadata published")
	}

	span.SetStatus(codes.Ok, "")
	a.metrics.ObserveRun(ruleID, metrics.OutcomeFound, time.Since(start))

	return result, true, nil
}

// loggerFor returns the configured logger or the context's logger.
func (a *Auditor) loggerFor(ctx context.Context) *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return log.WithContext(ctx)
}
