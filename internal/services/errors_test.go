package services_test

import (
	"errors"
	"strings"
	"testing"

	"letterbox/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "crop", "transcode", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"crop", "transcode", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHintFollowsMarker(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{services.Wrap(services.ErrValidation, "crop", "parse", "bad", nil), "CropSize"},
		{services.Wrap(services.ErrExternalTool, "detect", "run", "", nil), "ffmpeg"},
		{services.Wrap(services.ErrNotFound, "detect", "stat", "", nil), "raw_dir"},
		{errors.New("other"), "check logs"},
	}
	for _, tc := range cases {
		if got := services.Hint(tc.err); !strings.Contains(got, tc.want) {
			t.Fatalf("Hint(%v) = %q, want fragment %q", tc.err, got, tc.want)
		}
	}
	if services.Hint(nil) != "" {
		t.Fatal("expected empty hint for nil error")
	}
}
