package agol

import (
	"errors"
	"fmt"
	"strings"
)

// AuthenticationError indicates the credential exchange did not yield a token.
// It carries the raw response payload so the operator can see what the portal
// actually answered.
type AuthenticationError struct {
	Response map[string]any
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("agol: credential exchange yielded no token: %v", e.Response)
}

// TransportError indicates a network or HTTP layer failure: connection
// refused, timeout, non-2xx status or a body that is not JSON.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("agol: transport failure for %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError is the error payload the service embeds in an otherwise
// successful response. HTTP success does not imply operation success.
type ServiceError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *ServiceError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("agol: service error %d: %s (%s)", e.Code, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("agol: service error %d: %s", e.Code, e.Message)
}

// IsAuthentication returns true if the error is a credential exchange failure.
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsTransport returns true if the error is a network/HTTP layer failure.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsService returns true if the error is a service-reported failure.
func IsService(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}

// IsInvalidToken returns true for the service's expired/invalid token code.
// The client does not retry on this; the caller may drop the session and
// start over with fresh credentials.
func IsInvalidToken(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code == 498
	}
	return false
}
