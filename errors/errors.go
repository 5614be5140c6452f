// Package errors defines the error taxonomy shared by the issue, receive and
// logout pipelines.
package errors

import "errors"

// New returns an error that formats as the given text.
var New = errors.New

// Is reports whether any error in err's chain matches target.
var Is = errors.Is

// known errors
var (
	// ErrInvalidRequest covers requests with a bad HTTP shape, such as a
	// logout request with an unsupported method or content type.
	ErrInvalidRequest = New("invalid_request")

	// ErrMissingSubject is raised when an identity token is requested for an
	// identity that carries neither a subject nor a name identifier claim.
	// Unlike serialization failures it propagates as a hard error: a token
	// without a subject indicates a wiring bug in the host, not bad input.
	ErrMissingSubject = New("identity is missing a subject claim")

	ErrInvalidAccessToken       = New("invalid access token")
	ErrInvalidAuthorizeCode     = New("invalid authorize code")
	ErrInvalidRefreshToken      = New("invalid refresh token")
	ErrUnsupportedSignMethod    = New("unsupported sign method")
	ErrNoSigningCredentials     = New("no signing credentials configured")
	ErrInvalidSigningCredential = New("invalid signing credential")
)
