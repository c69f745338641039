package vcmp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pthm/vcmp/lib/encoding"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	errs := []error{
		ErrEmptyReference,
		ErrTemplateFetch,
		ErrSpliceIntegrity,
		ErrHookInvocation,
		ErrNotFound,
		ErrInvalidFormat,
		ErrSignatureInvalid,
		ErrDecryptFailed,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"fetch", &TemplateFetchError{Name: "card", Err: cause}, ErrTemplateFetch},
		{"splice", &SpliceIntegrityError{Name: "card", Err: cause}, ErrSpliceIntegrity},
		{"hook", &HookInvocationError{Name: "card", Err: cause}, ErrHookInvocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v should match %v", tt.err, tt.sentinel)
			}
			if !errors.Is(tt.err, cause) {
				t.Errorf("%v should unwrap to its cause", tt.err)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("wrapped %v should match %v", tt.err, tt.sentinel)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("wrapped: %w", ErrNotFound), true},
		{"fetch error with not-found cause", &TemplateFetchError{Name: "x", Err: ErrNotFound}, true},
		{"other error", errors.New("other error"), false},
		{"ErrDecryptFailed", ErrDecryptFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsNotFound(tt.err)
			if result != tt.expect {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestIsFetchError(t *testing.T) {
	name, ok := IsFetchError(fmt.Errorf("pass: %w", &TemplateFetchError{Name: "unknown", Err: ErrNotFound}))
	if !ok || name != "unknown" {
		t.Errorf("IsFetchError = %q, %v; want \"unknown\", true", name, ok)
	}
	if _, ok := IsFetchError(ErrNotFound); ok {
		t.Error("plain ErrNotFound is not a fetch error")
	}
}

func TestIsDecryptionError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrDecryptFailed", ErrDecryptFailed, true},
		{"ErrSignatureInvalid", ErrSignatureInvalid, true},
		{"wrapped ErrDecryptFailed", fmt.Errorf("wrapped: %w", ErrDecryptFailed), true},
		{"ErrNotFound", ErrNotFound, false},
		{"ErrInvalidFormat", ErrInvalidFormat, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsDecryptionError(tt.err)
			if result != tt.expect {
				t.Errorf("IsDecryptionError(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestWrapEncodingError(t *testing.T) {
	tests := []struct {
		name   string
		input  error
		expect error
	}{
		{"invalid format", encoding.ErrInvalidFormat, ErrInvalidFormat},
		{"signature", encoding.ErrSignatureInvalid, ErrSignatureInvalid},
		{"decrypt", encoding.ErrDecryptFailed, ErrDecryptFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapEncodingError(tt.input); !errors.Is(got, tt.expect) {
				t.Errorf("wrapEncodingError(%v) = %v, want %v", tt.input, got, tt.expect)
			}
		})
	}

	if wrapEncodingError(nil) != nil {
		t.Error("wrapEncodingError(nil) should be nil")
	}
	other := errors.New("other")
	if wrapEncodingError(other) != other {
		t.Error("unknown errors pass through unchanged")
	}
}
