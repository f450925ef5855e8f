package authenticator

import "fmt"

// ErrorKind classifies login failures so the caller can pick the right UX.
type ErrorKind string

const (
	// KindConfiguration means the provider credentials are incomplete.
	// Login cannot start until the deployment is fixed.
	KindConfiguration ErrorKind = "configuration"

	// KindProtocol covers forgery and missing-parameter failures. Always
	// fatal to the attempt, never retried.
	KindProtocol ErrorKind = "protocol"

	// KindIdentityProvider means the provider rejected the request and
	// reported its own error code and description.
	KindIdentityProvider ErrorKind = "identity_provider"

	// KindTransport is a network failure talking to the token endpoint.
	KindTransport ErrorKind = "transport"

	// KindUserNotFound means external authentication succeeded but no
	// local account matches the asserted identity.
	KindUserNotFound ErrorKind = "user_not_found"
)

// LoginError is the structured failure returned by every core operation.
// It is a value handed back to the host, never thrown across the HTTP
// boundary and never silently swallowed.
type LoginError struct {
	Kind        ErrorKind
	Code        string
	Description string
}

func (e *LoginError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Code, e.Description)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Code)
}

// Message returns the user-facing text for this failure.
func (e *LoginError) Message() string {
	switch e.Kind {
	case KindConfiguration:
		return "SSO is not configured correctly. Check the configuration and try again."
	case KindIdentityProvider:
		return fmt.Sprintf("An error occurred during SSO login. (%s)", e.Code)
	case KindTransport:
		return "The identity provider could not be reached. Try again later."
	case KindUserNotFound:
		return "Your account has not been registered on this site."
	default:
		return "An error occurred during SSO login."
	}
}

func configurationError(code string, description string) *LoginError {
	return &LoginError{Kind: KindConfiguration, Code: code, Description: description}
}

func protocolError(code string, description string) *LoginError {
	return &LoginError{Kind: KindProtocol, Code: code, Description: description}
}

func identityProviderError(code string, description string) *LoginError {
	return &LoginError{Kind: KindIdentityProvider, Code: code, Description: description}
}

func transportError(err error) *LoginError {
	return &LoginError{Kind: KindTransport, Code: "transport_failure", Description: err.Error()}
}

func userNotFoundError(email string) *LoginError {
	return &LoginError{
		Kind:        KindUserNotFound,
		Code:        "user_not_found",
		Description: fmt.Sprintf("login was successful, but no account exists for %s", email),
	}
}
