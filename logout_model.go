package oidc

import (
	"net/url"

	"github.com/legit-games/oidc-core/errors"
)

// LogoutRequest is the parsed end-session request.
type LogoutRequest struct {
	IDTokenHint           string
	PostLogoutRedirectURI string
	State                 string
	// Extra keeps every parameter of the raw request, recognized or not.
	Extra url.Values
}

// ParseLogoutRequest maps raw form/query values into a LogoutRequest.
func ParseLogoutRequest(values url.Values) *LogoutRequest {
	return &LogoutRequest{
		IDTokenHint:           values.Get("id_token_hint"),
		PostLogoutRedirectURI: values.Get("post_logout_redirect_uri"),
		State:                 values.Get("state"),
		Extra:                 values,
	}
}

// LogoutResponse accumulates the parameters for the post-logout redirect.
// Parameters may hold non-string values set by hooks; only scalar strings
// make it onto the redirect query.
type LogoutResponse struct {
	PostLogoutRedirectURI string
	Parameters            map[string]any
	Error                 *errors.Rejection
}

// NewLogoutResponse builds an empty response.
func NewLogoutResponse() *LogoutResponse {
	return &LogoutResponse{Parameters: map[string]any{}}
}

// SetParameter records a redirect parameter.
func (r *LogoutResponse) SetParameter(name string, value any) {
	r.Parameters[name] = value
}
