package models

import (
	"encoding/json"
	"time"
)

// AuthProperties is the property bag attached to a ticket. Recognized keys
// get typed fields; anything else the host stores goes into Extra and is
// preserved verbatim across protect/unprotect.
type AuthProperties struct {
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// Nonce is captured at authorization time and flows through the
	// authorization code into the id token minted on redemption.
	Nonce     string            `json:"nonce,omitempty"`
	Resources []string          `json:"resources,omitempty"`
	Audiences []string          `json:"audiences,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Clone deep-copies the property bag.
func (p *AuthProperties) Clone() *AuthProperties {
	if p == nil {
		return nil
	}
	out := &AuthProperties{Nonce: p.Nonce}
	if p.IssuedAt != nil {
		t := *p.IssuedAt
		out.IssuedAt = &t
	}
	if p.ExpiresAt != nil {
		t := *p.ExpiresAt
		out.ExpiresAt = &t
	}
	if len(p.Resources) > 0 {
		out.Resources = append([]string(nil), p.Resources...)
	}
	if len(p.Audiences) > 0 {
		out.Audiences = append([]string(nil), p.Audiences...)
	}
	if len(p.Extra) > 0 {
		out.Extra = make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Ticket bundles an identity with its authentication properties. Pipelines
// clone tickets at stage boundaries instead of mutating shared state.
type Ticket struct {
	Identity   *Identity       `json:"identity"`
	Properties *AuthProperties `json:"properties"`
}

// NewTicket builds a ticket, substituting an empty property bag for nil.
func NewTicket(identity *Identity, properties *AuthProperties) *Ticket {
	if properties == nil {
		properties = &AuthProperties{}
	}
	return &Ticket{Identity: identity, Properties: properties}
}

// Clone deep-copies the ticket.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	return &Ticket{Identity: t.Identity.Clone(), Properties: t.Properties.Clone()}
}

// Marshal serializes the ticket for protection by a DataFormat.
func (t *Ticket) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

// UnmarshalTicket reverses Marshal.
func UnmarshalTicket(data []byte) (*Ticket, error) {
	var t Ticket
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t.Properties == nil {
		t.Properties = &AuthProperties{}
	}
	return &t, nil
}
