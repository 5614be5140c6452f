package models

import (
	"testing"
	"time"
)

func TestTicket_MarshalRoundTrip(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := issued.Add(time.Hour)
	ticket := NewTicket(
		NewIdentity(Claim{Type: ClaimSubject, Value: "alice"}),
		&AuthProperties{
			IssuedAt:  &issued,
			ExpiresAt: &expires,
			Nonce:     "n1",
			Resources: []string{"https://api.example"},
			Extra:     map[string]string{"session_id": "s-42"},
		},
	)

	data, err := ticket.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalTicket(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Identity.Subject() != "alice" {
		t.Fatalf("subject = %q", got.Identity.Subject())
	}
	if got.Properties.Nonce != "n1" {
		t.Fatalf("nonce = %q", got.Properties.Nonce)
	}
	if !got.Properties.IssuedAt.Equal(issued) || !got.Properties.ExpiresAt.Equal(expires) {
		t.Fatal("lifetimes did not survive the round trip")
	}
	if got.Properties.Extra["session_id"] != "s-42" {
		t.Fatal("user-defined property not preserved verbatim")
	}
}

func TestTicket_CloneIsDeep(t *testing.T) {
	issued := time.Now().UTC()
	ticket := NewTicket(NewIdentity(Claim{Type: ClaimSubject, Value: "alice"}), &AuthProperties{IssuedAt: &issued})
	clone := ticket.Clone()
	*clone.Properties.IssuedAt = issued.Add(time.Hour)
	clone.Identity.Claims[0].Value = "mallory"
	if !ticket.Properties.IssuedAt.Equal(issued) || ticket.Identity.Claims[0].Value != "alice" {
		t.Fatal("clone shares state with the original")
	}
}
