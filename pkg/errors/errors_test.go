package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{"message only", New(ErrCodeNotFound, "file missing"), "file missing"},
		{"with cause", Wrap(ErrCodeUnavailable, "download failed", stderrors.New("connection refused")), "download failed: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap_UnwrapsToCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := WrapWithContext(ErrCodeInternal, "step failed", cause, map[string]any{"step": "parse"})

	if !stderrors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}
	if err.Context["step"] != "parse" {
		t.Fatalf("expected context step=parse, got %#v", err.Context)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"structured", New(ErrCodeUnsafeArchive, "escape"), ErrCodeUnsafeArchive},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrCodeTimeout, "slow")), ErrCodeTimeout},
		{"plain error", stderrors.New("plain"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Fatalf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCode_SearchesNestedCauses(t *testing.T) {
	inner := New(ErrCodeNotFound, "Locations.rda missing")
	outer := Wrap(ErrCodeInternal, "load failed", inner)

	if !IsCode(outer, ErrCodeNotFound) {
		t.Fatal("expected nested NOT_FOUND to be detected")
	}
	if IsCode(outer, ErrCodeTimeout) {
		t.Fatal("did not expect TIMEOUT")
	}
	if IsCode(stderrors.New("plain"), ErrCodeInternal) {
		t.Fatal("plain errors carry no code")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), ExitCanceled},
		{"failure", New(ErrCodeUnavailable, "offline"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
