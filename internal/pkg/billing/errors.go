package billing

import (
	"errors"
	"fmt"
)

// Sentinel errors for the billing flow. Handlers map these onto HTTP status
// codes at the boundary; nothing below the controller layer knows about HTTP.
var (
	// ErrInvalidPlan is returned for unknown plan ids or plans without an
	// external price reference.
	ErrInvalidPlan = errors.New("billing: invalid plan")

	// ErrInvalidRequest is returned when required identifiers are missing.
	ErrInvalidRequest = errors.New("billing: invalid request")

	// ErrProviderUnavailable signals a misconfigured provider (e.g. missing
	// secret key), as opposed to a provider-side rejection.
	ErrProviderUnavailable = errors.New("billing: provider unavailable")

	// ErrIncompletePaymentSetup signals that a subscription was created but
	// no client secret came back, so the client cannot complete payment.
	// The subscription exists provider-side and may need compensation.
	ErrIncompletePaymentSetup = errors.New("billing: incomplete payment setup")

	// ErrAlreadyLinked is returned when a local subscription record already
	// exists for the user. Callers may treat this as idempotent success.
	ErrAlreadyLinked = errors.New("billing: account already linked")

	// ErrSignatureVerification is returned for webhook payloads whose
	// signature does not verify. No state-changing logic runs in that case.
	ErrSignatureVerification = errors.New("billing: webhook signature verification failed")
)

// ProviderError wraps a provider-side rejection or failure, passing the
// provider message through to the caller.
type ProviderError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("billing: provider error during %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("billing: provider error during %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Message: providerMessage(err), Err: err}
}
