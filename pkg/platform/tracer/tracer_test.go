package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	newCtx, span := NewNoop().Start(ctx, SpanKYCSubmit, String(AttrUserID, "u1"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(Bool(AttrVerified, true))
	span.AddEvent("queued", Int64(AttrVersion, 2))
	span.End(errors.New("boom"))
}

func TestOTelTracerWithInjectedTracer(t *testing.T) {
	tr := NewOTel(WithOTelTracer(noop.NewTracerProvider().Tracer("test")))
	ctx, span := tr.Start(context.Background(), SpanAnchorVerify, String(AttrAnchorID, "a1"))
	require.NotNil(t, ctx)
	span.SetAttributes(Bool(AttrVerified, false))
	span.AddEvent("checked")
	span.End(errors.New("anchor not found"))
}

func TestToOTelAttributes(t *testing.T) {
	got := toOTelAttributes([]Attribute{
		String("s", "v"),
		Bool("b", true),
		Int64("i", 7),
		{Key: "n", Value: 3},
		{Key: "f", Value: 1.5},
		Duration("d", 150*time.Millisecond),
		{Key: "skipped", Value: struct{}{}},
	})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("s", "v"),
		attribute.Bool("b", true),
		attribute.Int64("i", 7),
		attribute.Int("n", 3),
		attribute.Float64("f", 1.5),
		attribute.Int64("d", 150),
	}, got)
	assert.Nil(t, toOTelAttributes(nil))
}
