package fiber

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (s *Session) startPassSpan(reason string) {
	s.passCtx, s.passSpan = s.tracer.Start(context.Background(), "loom.pass",
		trace.WithAttributes(
			attribute.Int64("loom.pass", int64(s.gen)),
			attribute.String("loom.reason", reason),
		),
	)
}

func (s *Session) endPassSpan(err error, discarded bool) {
	if s.passSpan == nil {
		return
	}
	switch {
	case err != nil:
		s.passSpan.RecordError(err)
		s.passSpan.SetStatus(codes.Error, err.Error())
	case discarded:
		s.passSpan.SetAttributes(attribute.Bool("loom.discarded", true))
	default:
		s.passSpan.SetStatus(codes.Ok, "")
	}
	s.passSpan.End()
	s.passSpan = nil
	s.passCtx = nil
}

// startCommitSpan opens the commit span as a child of the pass span.
func (s *Session) startCommitSpan() trace.Span {
	ctx := s.passCtx
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := s.tracer.Start(ctx, "loom.commit")
	return span
}

func (s *Session) endCommitSpan(span trace.Span, r CommitReport) {
	span.SetAttributes(
		attribute.Int("loom.added", r.Added),
		attribute.Int("loom.updated", r.Updated),
		attribute.Int("loom.removed", r.Removed),
		attribute.Int("loom.mutations", r.Mutations),
	)
	span.End()
	s.endPassSpan(nil, false)
}
