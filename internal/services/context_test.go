package services_test

import (
	"context"
	"testing"

	"letterbox/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithClipID(ctx, "abc/001")
	ctx = services.WithPass(ctx, "detect")
	ctx = services.WithRunID(ctx, "run-123")

	if id, ok := services.ClipIDFromContext(ctx); !ok || id != "abc/001" {
		t.Fatalf("unexpected clip id: %v %v", id, ok)
	}
	if pass, ok := services.PassFromContext(ctx); !ok || pass != "detect" {
		t.Fatalf("unexpected pass: %v %v", pass, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPass(ctx, "")
	ctx = services.WithClipID(ctx, "")
	if _, ok := services.PassFromContext(ctx); ok {
		t.Fatal("expected no pass value")
	}
	if _, ok := services.ClipIDFromContext(ctx); ok {
		t.Fatal("expected no clip id value")
	}
}
