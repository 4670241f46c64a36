package models

import (
	"fmt"

	"mongoidentity/pkg/platform/sentinel"
)

// Login links a user to an external provider credential. Two logins are the
// same login when provider and provider key match; the display name is
// cosmetic and ignored for equality.
type Login struct {
	Provider    string `bson:"provider"`
	ProviderKey string `bson:"providerKey"`
	DisplayName string `bson:"displayName,omitempty"`
}

// Matches reports whether the login is keyed by the given pair.
func (l Login) Matches(provider, providerKey string) bool {
	return l.Provider == provider && l.ProviderKey == providerKey
}

// IsZero reports whether the login carries no identifying key.
func (l Login) IsZero() bool {
	return l.Provider == "" && l.ProviderKey == ""
}

// Claim is a type/value assertion attached to a user, keyed by (type, value).
type Claim struct {
	Type  string `bson:"type"`
	Value string `bson:"value"`
}

// Matches reports whether two claims are equal under (type, value).
func (c Claim) Matches(other Claim) bool {
	return c.Type == other.Type && c.Value == other.Value
}

// IsZero reports whether the claim carries no content.
func (c Claim) IsZero() bool {
	return c.Type == "" && c.Value == ""
}

// User is the identity aggregate: one document per user, addressed by an
// ObjectID hex identifier the store assigns at creation time. Mutation
// helpers only touch memory; durability always requires an explicit store
// Update.
type User struct {
	ID                 string   `bson:"_id,omitempty"`
	UserName           string   `bson:"userName"`
	NormalizedUserName string   `bson:"normalizedUserName"`
	Email              string   `bson:"email,omitempty"`
	NormalizedEmail    string   `bson:"normalizedEmail,omitempty"`
	EmailConfirmed     bool     `bson:"emailConfirmed"`
	PasswordHash       string   `bson:"passwordHash,omitempty"`
	SecurityStamp      string   `bson:"securityStamp,omitempty"`
	TwoFactorEnabled   bool     `bson:"twoFactorEnabled"`
	Logins             []Login  `bson:"logins"`
	Claims             []Claim  `bson:"claims"`
	Roles              []string `bson:"roles"`
}

// NewUser builds an aggregate with empty collections and no identifier.
// The normalized name is caller-supplied; the aggregate never normalizes.
func NewUser(userName, normalizedUserName string) *User {
	return &User{
		UserName:           userName,
		NormalizedUserName: normalizedUserName,
		Logins:             []Login{},
		Claims:             []Claim{},
		Roles:              []string{},
	}
}

// AddLogin appends unconditionally. Duplicate prevention for the
// (provider, providerKey) pair is the store's responsibility, not the
// aggregate's.
func (u *User) AddLogin(login Login) error {
	if login.IsZero() {
		return fmt.Errorf("%w: login is required", sentinel.ErrInvalidArgument)
	}
	u.Logins = append(u.Logins, login)
	return nil
}

// RemoveLogin drops every login matching the pair. Removing a pair that is
// not present is a silent no-op.
func (u *User) RemoveLogin(provider, providerKey string) {
	kept := u.Logins[:0]
	for _, l := range u.Logins {
		if !l.Matches(provider, providerKey) {
			kept = append(kept, l)
		}
	}
	u.Logins = kept
}

// HasLogin reports whether any login matches the pair.
func (u *User) HasLogin(provider, providerKey string) bool {
	for _, l := range u.Logins {
		if l.Matches(provider, providerKey) {
			return true
		}
	}
	return false
}

// AddClaim appends unconditionally; duplicate (type, value) claims are
// allowed to accumulate.
func (u *User) AddClaim(claim Claim) error {
	if claim.IsZero() {
		return fmt.Errorf("%w: claim is required", sentinel.ErrInvalidArgument)
	}
	u.Claims = append(u.Claims, claim)
	return nil
}

// RemoveClaim drops every claim matching (type, value); no-op if absent.
func (u *User) RemoveClaim(claim Claim) {
	kept := u.Claims[:0]
	for _, c := range u.Claims {
		if !c.Matches(claim) {
			kept = append(kept, c)
		}
	}
	u.Claims = kept
}

// ReplaceClaim swaps old for new only when old is present: replace means
// remove-then-add-if-present, so an absent old claim is a silent no-op.
// The new claim is appended without dedup even if it duplicates an
// existing entry.
func (u *User) ReplaceClaim(oldClaim, newClaim Claim) {
	if !u.HasClaim(oldClaim) {
		return
	}
	u.RemoveClaim(oldClaim)
	u.Claims = append(u.Claims, newClaim)
}

// HasClaim reports whether any claim matches (type, value).
func (u *User) HasClaim(claim Claim) bool {
	for _, c := range u.Claims {
		if c.Matches(claim) {
			return true
		}
	}
	return false
}

// AddRole records role membership by name.
func (u *User) AddRole(role string) {
	u.Roles = append(u.Roles, role)
}

// RemoveRole drops every matching role name; no-op if absent.
func (u *User) RemoveRole(role string) {
	kept := u.Roles[:0]
	for _, r := range u.Roles {
		if r != role {
			kept = append(kept, r)
		}
	}
	u.Roles = kept
}

// HasRole reports membership by exact name.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPassword reports whether credential material is set; an empty hash is
// the valid "no password" state.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Clone returns a deep copy so stores can hand out snapshots without
// sharing slices with the caller's aggregate.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Logins = make([]Login, len(u.Logins))
	copy(out.Logins, u.Logins)
	out.Claims = make([]Claim, len(u.Claims))
	copy(out.Claims, u.Claims)
	out.Roles = make([]string, len(u.Roles))
	copy(out.Roles, u.Roles)
	return &out
}
