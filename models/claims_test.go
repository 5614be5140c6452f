package models

import (
	"testing"

	"github.com/legit-games/oidc-core"
)

func TestFilterFor_DestinationScoping(t *testing.T) {
	id := NewIdentity(
		Claim{Type: ClaimSubject, Value: "bob"},
		Claim{Type: "email", Value: "b@x", Destinations: []string{DestinationIDToken}},
		Claim{Type: "role", Value: "admin", Destinations: []string{DestinationAccessToken}},
		Claim{Type: "internal", Value: "secret"},
	)

	access := id.CloneWithFilter(FilterFor(oidc.KindToken))
	if !access.Has(ClaimSubject) || !access.Has("role") {
		t.Fatalf("access token identity missing expected claims: %+v", access.Claims)
	}
	if access.Has("email") || access.Has("internal") {
		t.Fatalf("access token identity carries foreign claims: %+v", access.Claims)
	}

	idToken := id.CloneWithFilter(FilterFor(oidc.KindIDToken))
	if !idToken.Has(ClaimSubject) || !idToken.Has("email") {
		t.Fatalf("id token identity missing expected claims: %+v", idToken.Claims)
	}
	if idToken.Has("role") || idToken.Has("internal") {
		t.Fatalf("id token identity carries foreign claims: %+v", idToken.Claims)
	}
}

func TestFilterFor_OpaqueKindsKeepEverything(t *testing.T) {
	if FilterFor(oidc.KindCode) != nil {
		t.Error("code filter should be the identity function")
	}
	if FilterFor(oidc.KindRefresh) != nil {
		t.Error("refresh filter should be the identity function")
	}
}

func TestCloneWithFilter_AppliesToActorChain(t *testing.T) {
	actor := NewIdentity(
		Claim{Type: ClaimSubject, Value: "svc"},
		Claim{Type: "role", Value: "agent", Destinations: []string{DestinationAccessToken}},
		Claim{Type: "email", Value: "svc@x", Destinations: []string{DestinationIDToken}},
	)
	id := NewIdentity(Claim{Type: ClaimSubject, Value: "alice"})
	id.Actor = actor

	filtered := id.CloneWithFilter(FilterFor(oidc.KindToken))
	if filtered.Actor == nil {
		t.Fatal("actor chain lost during filter")
	}
	if !filtered.Actor.Has("role") || filtered.Actor.Has("email") {
		t.Fatalf("actor claims not filtered: %+v", filtered.Actor.Claims)
	}
}

func TestCloneWithFilter_DeepCopy(t *testing.T) {
	id := NewIdentity(Claim{Type: ClaimSubject, Value: "alice", Destinations: []string{DestinationAccessToken}})
	clone := id.Clone()
	clone.Claims[0].Value = "mallory"
	clone.Claims[0].Destinations[0] = "elsewhere"
	if id.Claims[0].Value != "alice" || id.Claims[0].Destinations[0] != DestinationAccessToken {
		t.Fatal("clone shares state with the original")
	}
}

func TestEnsureSubject_SubstitutesFromNameIdentifier(t *testing.T) {
	id := NewIdentity(Claim{Type: ClaimNameIdentifier, Value: "alice"})
	if !id.EnsureSubject() {
		t.Fatal("expected a subject after substitution")
	}
	sub, ok := id.First(ClaimSubject)
	if !ok || sub.Value != "alice" {
		t.Fatalf("substituted sub = %+v", sub)
	}
}

func TestEnsureSubject_DropsDuplicateNameIdentifiers(t *testing.T) {
	id := NewIdentity(
		Claim{Type: ClaimNameIdentifier, Value: "alice"},
		Claim{Type: ClaimNameIdentifier, Value: "alice-again"},
	)
	id.EnsureSubject()
	count := 0
	for _, c := range id.Claims {
		if c.Type == ClaimNameIdentifier {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one name identifier, got %d", count)
	}
}

func TestEnsureSubject_MissingBoth(t *testing.T) {
	id := NewIdentity(Claim{Type: "email", Value: "a@x"})
	if id.EnsureSubject() {
		t.Fatal("expected no subject")
	}
}
