package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, SplitBrokers(""))
}

func TestExtractEventMeta_Fallbacks(t *testing.T) {
	msg := kafka.Message{Topic: "booking.created", Key: []byte("bk-1")}
	assert.Equal(t, EventMeta{EventID: "bk-1", EventType: "booking.created"}, ExtractEventMeta(msg))

	msg.Headers = EventMeta{EventID: "ev-1", EventType: "booking.cancelled"}.Headers()
	assert.Equal(t, EventMeta{EventID: "ev-1", EventType: "booking.cancelled"}, ExtractEventMeta(msg))
}

func TestTraceHeadersRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := InjectTraceHeaders(ctx, nil)
	assert.NotEmpty(t, HeaderValue(headers, "traceparent"))

	out := ExtractTraceContext(context.Background(), kafka.Message{Headers: headers})
	assert.Equal(t, traceID, trace.SpanContextFromContext(out).TraceID())
}
