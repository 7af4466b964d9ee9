package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/ode"
)

const tracerName = "glycosim/scenario"

// TraceObserver emits one span per scenario run. Runs execute sequentially,
// so span bookkeeping is a plain map keyed by run label.
type TraceObserver struct {
	ctx   context.Context
	spans map[string]trace.Span
}

// NewTraceObserver returns an observer that opens spans under ctx.
func NewTraceObserver(ctx context.Context) *TraceObserver {
	if ctx == nil {
		ctx = context.Background()
	}
	return &TraceObserver{
		ctx:   ctx,
		spans: make(map[string]trace.Span),
	}
}

// RunStarted opens a span for the labeled run.
func (t *TraceObserver) RunStarted(label string) {
	if t == nil {
		return
	}
	_, span := otel.Tracer(tracerName).Start(t.ctx, "scenario.run",
		trace.WithAttributes(attribute.String("scenario.label", label)))
	t.spans[label] = span
}

// RunFinished closes the run's span with the solver effort attached.
func (t *TraceObserver) RunFinished(label string, stats ode.Statistics, err error) {
	if t == nil {
		return
	}
	span, ok := t.spans[label]
	if !ok {
		return
	}
	delete(t.spans, label)

	span.SetAttributes(
		attribute.Int("solver.steps", int(stats.Steps)),
		attribute.Int("solver.rejected", int(stats.Rejected)),
		attribute.Int("solver.rhs_evaluations", int(stats.Evaluations)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
