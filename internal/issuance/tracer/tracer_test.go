package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipvc/internal/issuance/tracer"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, "test.span",
		tracer.String("key", "value"),
		tracer.Bool("flag", true),
	)

	// Context should be returned unchanged
	assert.Equal(t, ctx, newCtx)
	// Span should not be nil
	require.NotNil(t, span)

	// Span methods should not panic
	span.SetAttributes(tracer.String("another", "attr"))
	span.AddEvent("test.event", tracer.Int64("count", 42))
	span.End(nil)
}

func TestNoopTracer_SpanEndWithError(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	_, span := tr.Start(ctx, "test.span")
	require.NotNil(t, span)

	// Should not panic when ending with error
	span.End(errors.New("test error"))
}

func TestAttributeHelpers(t *testing.T) {
	assert.Equal(t, tracer.Attribute{Key: "format", Value: "jsonld"}, tracer.String("format", "jsonld"))
	assert.Equal(t, tracer.Attribute{Key: "degraded", Value: true}, tracer.Bool("degraded", true))
	assert.Equal(t, tracer.Attribute{Key: "count", Value: int64(3)}, tracer.Int64("count", 3))
	assert.Equal(t, tracer.Attribute{Key: "elapsed", Value: int64(1500)}, tracer.Duration("elapsed", 1500*time.Millisecond))
}
