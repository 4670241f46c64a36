// Package store defines the persistence contracts the authentication
// framework calls during sign-in, registration, and account management.
//
// The contract is split into narrow capability interfaces so a deployment
// can compose only what it needs; UserStore is the full composition every
// shipped implementation satisfies. Field setters and getters mutate the
// aggregate in memory only; durability always requires an explicit Update.
package store

import (
	"context"

	"mongoidentity/internal/identity/models"
)

// UserLifecycleStore owns document lifecycle and lookup.
type UserLifecycleStore interface {
	// Create assigns a freshly generated identifier and inserts the
	// document. The aggregate keeps a blank ID when insertion fails.
	Create(ctx context.Context, user *models.User) error
	// Update replaces the whole stored document; sentinel.ErrNotFound when
	// no document carries the aggregate's id.
	Update(ctx context.Context, user *models.User) error
	// Delete removes the document. Deleting an absent document succeeds:
	// the desired end state is already reached.
	Delete(ctx context.Context, user *models.User) error
	// Lookups return (nil, nil) when nothing matches; an absent user is a
	// normal sign-in outcome, not a storage failure. FindByID additionally
	// short-circuits ids that do not parse as identifiers without querying
	// the backing engine.
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByNormalizedUsername(ctx context.Context, normalized string) (*models.User, error)
	FindByNormalizedEmail(ctx context.Context, normalized string) (*models.User, error)
}

// UserLoginStore manages external provider links.
type UserLoginStore interface {
	// AddLogin enforces (provider, providerKey) uniqueness within the user
	// before delegating to the aggregate; duplicates return
	// sentinel.ErrConflict.
	AddLogin(ctx context.Context, user *models.User, login models.Login) error
	RemoveLogin(ctx context.Context, user *models.User, provider, providerKey string) error
	Logins(ctx context.Context, user *models.User) ([]models.Login, error)
	FindByLogin(ctx context.Context, provider, providerKey string) (*models.User, error)
}

// UserClaimStore manages claim assertions.
type UserClaimStore interface {
	Claims(ctx context.Context, user *models.User) ([]models.Claim, error)
	// AddClaims applies claims in order without cross-item rollback; a
	// failure aborts the remainder and partial application is possible.
	AddClaims(ctx context.Context, user *models.User, claims []models.Claim) error
	ReplaceClaim(ctx context.Context, user *models.User, oldClaim, newClaim models.Claim) error
	RemoveClaims(ctx context.Context, user *models.User, claims []models.Claim) error
	FindUsersByClaim(ctx context.Context, claim models.Claim) ([]*models.User, error)
}

// UserCredentialStore manages password hashes and security stamps. The
// store never hashes or rotates; it persists what the framework supplies.
type UserCredentialStore interface {
	SetPasswordHash(ctx context.Context, user *models.User, hash string) error
	PasswordHash(ctx context.Context, user *models.User) (string, error)
	HasPassword(ctx context.Context, user *models.User) (bool, error)
	// SetSecurityStamp rejects empty stamps with sentinel.ErrInvalidArgument.
	SetSecurityStamp(ctx context.Context, user *models.User, stamp string) error
	SecurityStamp(ctx context.Context, user *models.User) (string, error)
}

// UserFlagStore manages email state and feature flags.
type UserFlagStore interface {
	SetTwoFactorEnabled(ctx context.Context, user *models.User, enabled bool) error
	TwoFactorEnabled(ctx context.Context, user *models.User) (bool, error)
	SetEmail(ctx context.Context, user *models.User, email string) error
	Email(ctx context.Context, user *models.User) (string, error)
	SetNormalizedEmail(ctx context.Context, user *models.User, normalized string) error
	NormalizedEmail(ctx context.Context, user *models.User) (string, error)
	SetEmailConfirmed(ctx context.Context, user *models.User, confirmed bool) error
	EmailConfirmed(ctx context.Context, user *models.User) (bool, error)
}

// UserStore is the full storage contract the framework wires against.
type UserStore interface {
	UserLifecycleStore
	UserLoginStore
	UserClaimStore
	UserCredentialStore
	UserFlagStore
}

// RoleStore persists standalone role definitions.
type RoleStore interface {
	Create(ctx context.Context, role *models.Role) error
	FindByID(ctx context.Context, id string) (*models.Role, error)
	FindByNormalizedName(ctx context.Context, normalized string) (*models.Role, error)
	Delete(ctx context.Context, role *models.Role) error
}
