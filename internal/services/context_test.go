package services_test

import (
	"context"
	"testing"

	"mediaminder/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithMediaID(ctx, "movie_550")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.MediaIDFromContext(ctx); !ok || id != "movie_550" {
		t.Fatalf("unexpected media id: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithMediaID(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.MediaIDFromContext(ctx); ok {
		t.Fatal("expected no media id value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
}
