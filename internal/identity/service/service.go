// Package service is the framework-facing side of the identity area: it
// owns normalization and security-stamp rotation policy, and drives the
// store contract the way registration, external-login linking, and account
// management flows do. The store itself never computes these values.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"mongoidentity/internal/identity/metrics"
	"mongoidentity/internal/identity/models"
	"mongoidentity/internal/identity/store"
	"mongoidentity/pkg/platform/sentinel"
)

// Service orchestrates identity flows over the user and role stores. It
// holds no aggregate state between calls; each operation loads, mutates,
// and explicitly persists.
type Service struct {
	users   store.UserStore
	roles   store.RoleStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs the accounts service.
func New(users store.UserStore, roles store.RoleStore, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		users:   users,
		roles:   roles,
		logger:  logger,
		metrics: m,
	}
}

// normalize is the lookup canonicalization applied to usernames and
// emails before they reach the store. The store only ever sees the
// normalized value; it never folds case itself.
func normalize(value string) string {
	return strings.ToUpper(value)
}

// Register creates a new user with a fresh security stamp. The username
// must be unique under normalization.
func (s *Service) Register(ctx context.Context, userName, email string) (*models.User, error) {
	if userName == "" {
		return nil, fmt.Errorf("%w: username is required", sentinel.ErrInvalidArgument)
	}

	existing, err := s.users.FindByNormalizedUsername(ctx, normalize(userName))
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q is taken", sentinel.ErrConflict, userName)
	}

	u := models.NewUser(userName, normalize(userName))
	if email != "" {
		if err := s.users.SetEmail(ctx, u, email); err != nil {
			return nil, err
		}
		if err := s.users.SetNormalizedEmail(ctx, u, normalize(email)); err != nil {
			return nil, err
		}
	}
	if err := s.users.SetSecurityStamp(ctx, u, uuid.NewString()); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.UsersCreated.Inc()
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "username", userName)
	return u, nil
}

// User loads a user by id; absent users surface as ErrNotFound at this
// layer because callers of the service asked for a specific record.
func (s *Service) User(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	return u, nil
}

// DeleteUser removes the user's document.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	u, err := s.User(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, u); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.metrics.UsersDeleted.Inc()
	s.logger.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

// LinkLogin attaches an external provider credential and persists. A
// duplicate (provider, providerKey) pair on the user surfaces as
// ErrConflict from the store. Linking is credential-affecting, so the
// security stamp rotates in the same write.
func (s *Service) LinkLogin(ctx context.Context, userID string, login models.Login) (*models.User, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.AddLogin(ctx, u, login); err != nil {
		return nil, err
	}
	if err := s.users.SetSecurityStamp(ctx, u, uuid.NewString()); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("persist login: %w", err)
	}
	s.metrics.LoginsLinked.Inc()
	s.logger.InfoContext(ctx, "login linked", "user_id", u.ID, "provider", login.Provider)
	return u, nil
}

// UnlinkLogin removes every matching pair and persists; absent pairs are
// a no-op that still rotates the stamp and writes.
func (s *Service) UnlinkLogin(ctx context.Context, userID, provider, providerKey string) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.RemoveLogin(ctx, u, provider, providerKey); err != nil {
		return err
	}
	if err := s.users.SetSecurityStamp(ctx, u, uuid.NewString()); err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("persist login removal: %w", err)
	}
	return nil
}

// Logins returns the user's external logins in stored order.
func (s *Service) Logins(ctx context.Context, userID string) ([]models.Login, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.users.Logins(ctx, u)
}

// UserByLogin resolves the owner of an external credential, if any.
func (s *Service) UserByLogin(ctx context.Context, provider, providerKey string) (*models.User, error) {
	u, err := s.users.FindByLogin(ctx, provider, providerKey)
	if err != nil {
		return nil, fmt.Errorf("find by login: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("login %s: %w", provider, sentinel.ErrNotFound)
	}
	return u, nil
}

// GrantClaims appends claims in order and persists.
func (s *Service) GrantClaims(ctx context.Context, userID string, claims []models.Claim) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.AddClaims(ctx, u, claims); err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("persist claims: %w", err)
	}
	s.metrics.ClaimsGranted.Add(float64(len(claims)))
	return nil
}

// RevokeClaims removes every matching claim and persists.
func (s *Service) RevokeClaims(ctx context.Context, userID string, claims []models.Claim) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.RemoveClaims(ctx, u, claims); err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("persist claim removal: %w", err)
	}
	return nil
}

// UsersWithClaim lists every user carrying the claim, in no particular
// order.
func (s *Service) UsersWithClaim(ctx context.Context, claim models.Claim) ([]*models.User, error) {
	return s.users.FindUsersByClaim(ctx, claim)
}

// AssignRole records membership, creating the role definition on first
// use.
func (s *Service) AssignRole(ctx context.Context, userID, roleName string) error {
	if roleName == "" {
		return fmt.Errorf("%w: role name is required", sentinel.ErrInvalidArgument)
	}
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}

	def, err := s.roles.FindByNormalizedName(ctx, normalize(roleName))
	if err != nil {
		return fmt.Errorf("find role: %w", err)
	}
	if def == nil {
		def = &models.Role{Name: roleName, NormalizedName: normalize(roleName)}
		if err := s.roles.Create(ctx, def); err != nil {
			return fmt.Errorf("create role: %w", err)
		}
	}

	if !u.HasRole(roleName) {
		u.AddRole(roleName)
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("persist role: %w", err)
	}
	return nil
}

// WithdrawRole drops membership; absent membership is a no-op write.
func (s *Service) WithdrawRole(ctx context.Context, userID, roleName string) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	u.RemoveRole(roleName)
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("persist role removal: %w", err)
	}
	return nil
}

// SetPassword stores the framework-supplied hash and rotates the stamp.
// The service never hashes; verification lives with the caller.
func (s *Service) SetPassword(ctx context.Context, userID, passwordHash string) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, u, passwordHash); err != nil {
		return err
	}
	if err := s.users.SetSecurityStamp(ctx, u, uuid.NewString()); err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("persist password: %w", err)
	}
	return nil
}

// ConfirmEmail marks the address confirmed and persists.
func (s *Service) ConfirmEmail(ctx context.Context, userID string) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.SetEmailConfirmed(ctx, u, true); err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("persist email confirmation: %w", err)
	}
	return nil
}

// RotateSecurityStamp invalidates outstanding sessions by writing a fresh
// stamp. Returns the new stamp.
func (s *Service) RotateSecurityStamp(ctx context.Context, userID string) (string, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return "", err
	}
	stamp := uuid.NewString()
	if err := s.users.SetSecurityStamp(ctx, u, stamp); err != nil {
		return "", err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return "", fmt.Errorf("persist stamp: %w", err)
	}
	return stamp, nil
}
