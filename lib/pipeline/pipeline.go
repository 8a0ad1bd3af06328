// Package pipeline implements a single-attempt fetch, validate,
// persist flow over JSON resources. A run progresses through fetch,
// validate and persist in order; the first failing stage ends the run
// and nothing is ever written unless every earlier stage passed.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("opspulse.lib.pipeline")

type Pipeline struct {
	fetcher   *Fetcher
	transform Transform
	now       func() time.Time
}

type Options struct {
	// Fetcher defaults to NewFetcher().
	Fetcher *Fetcher
	// Transform is applied after validation, before persistence.
	Transform Transform
	// Now overrides the metadata clock. Tests only.
	Now func() time.Time
}

func New(opts Options) Pipeline {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return Pipeline{
		fetcher:   fetcher,
		transform: opts.Transform,
		now:       now,
	}
}

// Run executes one fetch-validate-persist pass. There is no retry
// policy: any stage failure ends the run with the failing stage and
// kind named in the returned error.
func (p Pipeline) Run(ctx context.Context, req Request, rules []Rule, sink string) (Record, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", req.Locator),
		attribute.String("sink", sink),
	)

	fail := func(err error) (Record, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Record{}, err
	}

	payload, err := p.fetcher.Fetch(ctx, req)
	if err != nil {
		return fail(err)
	}

	err = Validate(payload, rules)
	if err != nil {
		return fail(err)
	}

	if p.transform != nil {
		payload, err = p.transform(payload)
		if err != nil {
			return fail(&Error{Stage: StageTransform, Kind: KindTransformFailure, Err: err})
		}
	}

	rec := Record{
		Metadata: Metadata{
			Source:    req.Locator,
			FetchedAt: p.now(),
			Version:   FormatVersion,
		},
		Payload: payload,
	}
	rec.Bytes, err = Persist(rec, sink)
	if err != nil {
		return fail(err)
	}

	slog.InfoContext(
		ctx, "record persisted",
		"source", req.Locator,
		"sink", sink,
		"bytes", rec.Bytes,
	)
	return rec, nil
}
