package vcmp

import (
	"errors"
	"fmt"

	"github.com/pthm/vcmp/lib/encoding"
)

// Sentinel errors for expansion. Every error returned by an expansion pass
// matches exactly one of the first four with errors.Is.
var (
	ErrEmptyReference  = errors.New("vcmp: placeholder names no component")
	ErrTemplateFetch   = errors.New("vcmp: template fetch failed")
	ErrSpliceIntegrity = errors.New("vcmp: splice produced no single root element")
	ErrHookInvocation  = errors.New("vcmp: constructor hook failed")

	ErrNotFound         = errors.New("vcmp: template not found")
	ErrInvalidFormat    = errors.New("vcmp: invalid bundle format")
	ErrSignatureInvalid = errors.New("vcmp: bundle signature verification failed")
	ErrDecryptFailed    = errors.New("vcmp: bundle decryption failed")
)

// TemplateFetchError reports a component whose template could not be fetched.
type TemplateFetchError struct {
	Name string
	Err  error
}

func (e *TemplateFetchError) Error() string {
	return fmt.Sprintf("vcmp: fetch template %q: %v", e.Name, e.Err)
}

func (e *TemplateFetchError) Unwrap() error { return e.Err }

func (e *TemplateFetchError) Is(target error) bool { return target == ErrTemplateFetch }

// SpliceIntegrityError reports markup that did not yield exactly one root
// element.
type SpliceIntegrityError struct {
	Name string
	Err  error
}

func (e *SpliceIntegrityError) Error() string {
	return fmt.Sprintf("vcmp: splice %q: %v", e.Name, e.Err)
}

func (e *SpliceIntegrityError) Unwrap() error { return e.Err }

func (e *SpliceIntegrityError) Is(target error) bool { return target == ErrSpliceIntegrity }

// HookInvocationError wraps an error returned by a constructor hook.
type HookInvocationError struct {
	Name string
	Err  error
}

func (e *HookInvocationError) Error() string {
	return fmt.Sprintf("vcmp: constructor for %q: %v", e.Name, e.Err)
}

func (e *HookInvocationError) Unwrap() error { return e.Err }

func (e *HookInvocationError) Is(target error) bool { return target == ErrHookInvocation }

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFetchError checks if err came from a failed template fetch and returns
// the component name.
func IsFetchError(err error) (string, bool) {
	var fe *TemplateFetchError
	if errors.As(err, &fe) {
		return fe.Name, true
	}
	return "", false
}

// IsDecryptionError checks if err is a bundle decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

// wrapEncodingError wraps encoding package errors with vcmp sentinel errors.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if errors.Is(err, encoding.ErrSignatureInvalid) {
		return ErrSignatureInvalid
	}
	if errors.Is(err, encoding.ErrDecryptFailed) {
		return ErrDecryptFailed
	}
	return err
}
