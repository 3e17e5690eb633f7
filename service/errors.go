package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error taxonomy surfaced to handlers. Storage failures must never be
// conflated with render failures: a contract may be saved correctly even
// when composing its artifact fails.
var (
	// ErrNotFound covers absent records and logically expired signature
	// requests alike.
	ErrNotFound = errors.New("record not found")
	// ErrPermissionDenied is returned when the caller's identity is not
	// allowed to touch the record. Never retried automatically.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnavailable marks transient storage failures; the same call is
	// safe to issue again.
	ErrUnavailable = errors.New("storage unavailable, retry")
	// ErrRenderFailed comes from the document compositor.
	ErrRenderFailed = errors.New("document render failed")
)

// SetupError indicates a query shape that needs server-side provisioning
// before it can succeed. It carries the remediation so the caller can
// prompt the operator and offer a retry, instead of failing generically.
type SetupError struct {
	Op          string
	Remediation string
	Err         error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s requires setup: %s", e.Op, e.Remediation)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// classifyStoreError maps a raw gorm/sqlite error onto the taxonomy.
func classifyStoreError(op string, err error) error {
	if err == nil {
		return nil
	}

	// Already-classified errors pass through untouched
	var se *SetupError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermissionDenied) || errors.As(err, &se) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column") {
		return &SetupError{
			Op:          op,
			Remediation: "run the schema migrations (service.AutoMigrate) and retry",
			Err:         err,
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
