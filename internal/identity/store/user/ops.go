package user

import (
	"context"
	"fmt"

	"mongoidentity/internal/identity/models"
	"mongoidentity/pkg/platform/sentinel"
)

// aggregateOps implements the pure in-memory half of the user store
// contract: argument validation plus delegation to the aggregate's own
// mutation helpers. Both the Mongo and the memory store embed it so field
// semantics cannot drift between backends. None of these touch the
// database; the caller persists with Update when a batch of mutations
// should become durable.
type aggregateOps struct{}

func (aggregateOps) AddLogin(_ context.Context, u *models.User, login models.Login) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	if login.IsZero() {
		return fmt.Errorf("%w: login is required", sentinel.ErrInvalidArgument)
	}
	if u.HasLogin(login.Provider, login.ProviderKey) {
		return fmt.Errorf("%w: login %s already exists", sentinel.ErrConflict, login.Provider)
	}
	return u.AddLogin(login)
}

func (aggregateOps) RemoveLogin(_ context.Context, u *models.User, provider, providerKey string) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	u.RemoveLogin(provider, providerKey)
	return nil
}

func (aggregateOps) Logins(_ context.Context, u *models.User) ([]models.Login, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	return append([]models.Login(nil), u.Logins...), nil
}

func (aggregateOps) Claims(_ context.Context, u *models.User) ([]models.Claim, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	return append([]models.Claim(nil), u.Claims...), nil
}

func (aggregateOps) AddClaims(_ context.Context, u *models.User, claims []models.Claim) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	if claims == nil {
		return fmt.Errorf("%w: claims are required", sentinel.ErrInvalidArgument)
	}
	// Applied in order with no rollback: a bad entry aborts the remainder
	// and leaves earlier adds in place.
	for _, c := range claims {
		if err := u.AddClaim(c); err != nil {
			return err
		}
	}
	return nil
}

func (aggregateOps) ReplaceClaim(_ context.Context, u *models.User, oldClaim, newClaim models.Claim) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	if oldClaim.IsZero() {
		return fmt.Errorf("%w: claim is required", sentinel.ErrInvalidArgument)
	}
	u.ReplaceClaim(oldClaim, newClaim)
	return nil
}

func (aggregateOps) RemoveClaims(_ context.Context, u *models.User, claims []models.Claim) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	if claims == nil {
		return fmt.Errorf("%w: claims are required", sentinel.ErrInvalidArgument)
	}
	for _, c := range claims {
		u.RemoveClaim(c)
	}
	return nil
}

func (aggregateOps) SetPasswordHash(_ context.Context, u *models.User, hash string) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	u.PasswordHash = hash
	return nil
}

func (aggregateOps) PasswordHash(_ context.Context, u *models.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	return u.PasswordHash, nil
}

func (aggregateOps) HasPassword(_ context.Context, u *models.User) (bool, error) {
	if u == nil {
		return false, fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	return u.HasPassword(), nil
}

func (aggregateOps) SetSecurityStamp(_ context.Context, u *models.User, stamp string) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	if stamp == "" {
		return fmt.Errorf("%w: security stamp is required", sentinel.ErrInvalidArgument)
	}
	u.SecurityStamp = stamp
	return nil
}

func (aggregateOps) SecurityStamp(_ context.Context, u *models.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	return u.SecurityStamp, nil
}

func (aggregateOps) SetTwoFactorEnabled(_ context.Context, u *models.User, enabled bool) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	u.TwoFactorEnabled = enabled
	return nil
}

func (aggregateOps) TwoFactorEnabled(_ context.Context, u *models.User) (bool, error) {
	if u == nil {
		return false, fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	return u.TwoFactorEnabled, nil
}

func (aggregateOps) SetEmail(_ context.Context, u *models.User, email string) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", sentinel.ErrInvalidArgument)
	}
	u.Email = email
	return nil
}

func (aggregateOps) Email(_ context.Context, u *models.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	return u.Email, nil
}

func (aggregateOps) SetNormalizedEmail(_ context.Context, u *models.User, normalized string) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	if normalized == "" {
		return fmt.Errorf("%w: normalized email is required", sentinel.ErrInvalidArgument)
	}
	u.NormalizedEmail = normalized
	return nil
}

func (aggregateOps) NormalizedEmail(_ context.Context, u *models.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	return u.NormalizedEmail, nil
}

func (aggregateOps) SetEmailConfirmed(_ context.Context, u *models.User, confirmed bool) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	u.EmailConfirmed = confirmed
	return nil
}

func (aggregateOps) EmailConfirmed(_ context.Context, u *models.User) (bool, error) {
	if u == nil {
		return false, fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	return u.EmailConfirmed, nil
}
