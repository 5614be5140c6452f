package hooks

import (
	"context"
	"net/http"

	"github.com/legit-games/oidc-core"
	"github.com/legit-games/oidc-core/models"
)

// CreateContext is handed to the Create* hooks. The hook may inspect and
// mutate the ticket, serialize it through the pre-bound default serializer,
// or set the credential itself.
type CreateContext struct {
	Outcome

	Kind     oidc.CredentialKind
	Request  *oidc.TokenRequest
	Response *oidc.TokenResponse
	Ticket   *models.Ticket

	// Serialize is the default serializer for this kind, pre-bound to the
	// configured DataFormat or Signer.
	Serialize func(ctx context.Context, t *models.Ticket) (string, error)

	credential string
}

// SetCredential supplies the credential directly; a non-empty value marks the
// context handled.
func (c *CreateContext) SetCredential(credential string) { c.credential = credential }

// Credential returns the hook-supplied credential.
func (c *CreateContext) Credential() string { return c.credential }

// Action classifies the context. For issuance a non-empty hook-supplied
// credential counts as handled even without the explicit flag.
func (c *CreateContext) Action() Action {
	if c.action == ActionHandled || c.credential != "" {
		return ActionHandled
	}
	return c.action
}

// ReceiveContext is handed to the Receive* hooks. The hook may deserialize
// through the pre-bound default deserializer, or supply the ticket itself and
// mark the context handled.
type ReceiveContext struct {
	Outcome

	Kind       oidc.CredentialKind
	Credential string
	Ticket     *models.Ticket

	// Deserialize is the default deserializer for this kind. A nil ticket
	// with a nil error means the credential did not check out.
	Deserialize func(ctx context.Context, credential string) (*models.Ticket, error)
}

// SetTicket supplies the ticket and marks the context handled.
func (c *ReceiveContext) SetTicket(t *models.Ticket) {
	c.Ticket = t
	c.action = ActionHandled
}

// LogoutRequestContext is handed to the Extract, Validate and Handle logout
// hooks. Request is populated by the default Extract behavior and may be
// replaced by the hook.
type LogoutRequestContext struct {
	Outcome

	HTTPRequest *http.Request
	Writer      http.ResponseWriter
	Request     *oidc.LogoutRequest
}

// LogoutResponseContext is handed to the ApplyLogoutResponse hook.
type LogoutResponseContext struct {
	Outcome

	HTTPRequest *http.Request
	Writer      http.ResponseWriter
	Request     *oidc.LogoutRequest
	Response    *oidc.LogoutResponse
}
