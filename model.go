package oidc

// TokenRequest carries the request parameters the pipelines read. It is a
// snapshot taken by the HTTP front-end, not the raw request.
type TokenRequest struct {
	GrantType GrantType
	ClientID  string
	Scope     string
	// Nonce is the nonce parameter of the current request. For the
	// authorization_code grant the id-token pipeline ignores it and restores
	// the nonce captured in the code's ticket instead.
	Nonce string
	// Resources lists the audience URIs requested for the access token.
	Resources []string
}

// TokenResponse accumulates the credentials minted for one token response.
// The id-token pipeline reads Code and AccessToken from here to derive the
// c_hash and at_hash claims.
type TokenResponse struct {
	Code         string
	AccessToken  string
	IDToken      string
	RefreshToken string
}
