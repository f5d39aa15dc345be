// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"
	"testing"

	"github.com/canonical/account-service/internal/logging"
)

func TestNewTracerDisabled(t *testing.T) {
	tracer := NewTracer(NewConfig(false, "", "", logging.NewNoopLogger()))

	ctx, span := tracer.Start(context.Background(), "test.span")
	defer span.End()

	if ctx == nil || span == nil {
		t.Fatal("expected usable context and span from disabled tracer")
	}
}

func TestNewTracerNoopConfig(t *testing.T) {
	tracer := NewTracer(NewNoopConfig())

	_, span := tracer.Start(context.Background(), "test.span")
	span.End()
}

func TestNewNoopTracer(t *testing.T) {
	tracer := NewNoopTracer()

	_, span := tracer.Start(context.Background(), "test.span")
	span.End()
}
