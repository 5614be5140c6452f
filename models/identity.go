package models

// Identity is an ordered claim set plus an optional actor chain for
// delegated identities.
type Identity struct {
	Claims []Claim   `json:"claims"`
	Actor  *Identity `json:"actor,omitempty"`
}

// NewIdentity builds an identity from claims.
func NewIdentity(claims ...Claim) *Identity {
	return &Identity{Claims: claims}
}

// Add appends a claim.
func (id *Identity) Add(typ, value string, destinations ...string) {
	id.Claims = append(id.Claims, Claim{Type: typ, Value: value, Destinations: destinations})
}

// First returns the first claim of the given type.
func (id *Identity) First(typ string) (Claim, bool) {
	for _, c := range id.Claims {
		if c.Type == typ {
			return c, true
		}
	}
	return Claim{}, false
}

// Has reports whether any claim of the given type exists.
func (id *Identity) Has(typ string) bool {
	_, ok := id.First(typ)
	return ok
}

// Clone deep-copies the identity and its actor chain.
func (id *Identity) Clone() *Identity {
	return id.CloneWithFilter(nil)
}

// CloneWithFilter deep-copies the identity, keeping only claims for which
// keep returns true. A nil predicate keeps everything. The predicate is
// applied to every actor in the chain as well.
func (id *Identity) CloneWithFilter(keep func(Claim) bool) *Identity {
	if id == nil {
		return nil
	}
	out := &Identity{Claims: make([]Claim, 0, len(id.Claims))}
	for _, c := range id.Claims {
		if keep == nil || keep(c) {
			out.Claims = append(out.Claims, c.clone())
		}
	}
	out.Actor = id.Actor.CloneWithFilter(keep)
	return out
}

// EnsureSubject normalizes the subject claims in place: if no sub claim is
// present, one is substituted from the first name-identifier claim, and
// duplicate name-identifier claims are dropped afterwards so at most one
// remains. It reports whether the identity ends up with a subject.
func (id *Identity) EnsureSubject() bool {
	if !id.Has(ClaimSubject) {
		if ni, ok := id.First(ClaimNameIdentifier); ok {
			id.Claims = append(id.Claims, Claim{Type: ClaimSubject, Value: ni.Value})
		}
	}
	seen := false
	kept := id.Claims[:0]
	for _, c := range id.Claims {
		if c.Type == ClaimNameIdentifier {
			if seen {
				continue
			}
			seen = true
		}
		kept = append(kept, c)
	}
	id.Claims = kept
	return id.Has(ClaimSubject)
}

// Subject returns the subject value, falling back to the name identifier.
func (id *Identity) Subject() string {
	if c, ok := id.First(ClaimSubject); ok {
		return c.Value
	}
	if c, ok := id.First(ClaimNameIdentifier); ok {
		return c.Value
	}
	return ""
}
