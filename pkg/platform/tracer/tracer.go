// Package tracer is a small tracing abstraction. Services depend on Tracer
// and Span; OTelTracer adapts OpenTelemetry and NoopTracer serves tests.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations are safe for concurrent use.
//
//	ctx, span := t.Start(ctx, tracer.SpanKYCSubmit, tracer.String(tracer.AttrUserID, userID))
//	defer func() { span.End(err) }()
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanKYCSubmit       = "kyc.submit"
	SpanKYCVerification = "kyc.verification"
	SpanKYCReject       = "kyc.reject"
	SpanIssueAll        = "credential.issue_all"
	SpanAnchorVerify    = "anchor.verify"
)

// Attribute keys. Account handles and personal data are never attributes.
const (
	AttrUserID       = "user_id"
	AttrSubmissionID = "submission_id"
	AttrVersion      = "submission.version"
	AttrStage        = "verification.stage"
	AttrOutcome      = "outcome"
	AttrAnchorID     = "anchor_id"
	AttrVerified     = "verified"
)
