package gate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrAlreadyRegistered is returned by API.Register when the wallet
	// already has a record. The gate treats it as success.
	ErrAlreadyRegistered = errors.New("wallet already registered")
	// ErrUnavailable marks transport and server failures that are worth retrying.
	ErrUnavailable = errors.New("registration service unavailable")

	ErrSubmitInProgress = errors.New("registration already being submitted")
	ErrNotAccepting     = errors.New("registration form is not open")
	ErrNotRetryable     = errors.New("nothing to retry")
	ErrClaimNotAllowed  = errors.New("claim requires a registered wallet")
	ErrNoClaimer        = errors.New("claiming is not configured")
	ErrClosed           = errors.New("gate closed")
)

// RejectedError is a server-side validation failure; Message is safe to show.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "registration rejected: " + e.Message
}

// FormError carries field-level messages from local validation, keyed by
// the API field name.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}
