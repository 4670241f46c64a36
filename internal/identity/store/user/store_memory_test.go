package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mongoidentity/internal/identity/models"
	"mongoidentity/pkg/platform/sentinel"
)

// MemoryStoreSuite exercises the full user store contract against the
// in-memory implementation. The Mongo integration suite re-runs the
// persistence-shaped scenarios against a real database.
type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) createUser(userName, normalized string) *models.User {
	u := models.NewUser(userName, normalized)
	s.Require().NoError(s.store.Create(s.ctx, u))
	s.Require().NotEmpty(u.ID)
	return u
}

func (s *MemoryStoreSuite) TestCreateThenFindByIDRoundTrip() {
	u := s.createUser("alice", "ALICE")
	u.Email = "alice@example.com"
	u.NormalizedEmail = "ALICE@EXAMPLE.COM"
	s.Require().NoError(s.store.Update(s.ctx, u))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(u, found)
}

func (s *MemoryStoreSuite) TestCreateRejectsNilUser() {
	err := s.store.Create(s.ctx, nil)
	s.Require().ErrorIs(err, sentinel.ErrInvalidArgument)
}

func (s *MemoryStoreSuite) TestUpdateReflectsFieldChange() {
	u := s.createUser("alice", "ALICE")

	s.Require().NoError(s.store.SetEmail(s.ctx, u, "new@example.com"))
	s.Require().NoError(s.store.Update(s.ctx, u))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("new@example.com", found.Email)
}

func (s *MemoryStoreSuite) TestUpdateMissingDocumentIsNotFound() {
	u := models.NewUser("ghost", "GHOST")
	u.ID = "64f1b2a3c4d5e6f708192a3b"

	err := s.store.Update(s.ctx, u)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDeleteIsIdempotent() {
	u := s.createUser("alice", "ALICE")

	s.Require().NoError(s.store.Delete(s.ctx, u))
	s.Require().NoError(s.store.Delete(s.ctx, u), "second delete is a no-op success")

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *MemoryStoreSuite) TestFindByIDRejectsMalformedIdentifiers() {
	s.createUser("alice", "ALICE")

	for _, id := range []string{"", "not-an-id", "64f1b2a3", "zzzzzzzzzzzzzzzzzzzzzzzz", "   "} {
		found, err := s.store.FindByID(s.ctx, id)
		s.Require().NoError(err, "malformed id %q must not error", id)
		s.Nil(found, "malformed id %q must read as not found", id)
	}
}

func (s *MemoryStoreSuite) TestNormalizedLookupsAreExactMatch() {
	u := s.createUser("alice", "ALICE")

	found, err := s.store.FindByNormalizedUsername(s.ctx, "ALICE")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(u.ID, found.ID)

	miss, err := s.store.FindByNormalizedUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Nil(miss, "no case folding at this layer")
}

func (s *MemoryStoreSuite) TestFindByNormalizedEmail() {
	u := s.createUser("alice", "ALICE")
	u.NormalizedEmail = "ALICE@EXAMPLE.COM"
	s.Require().NoError(s.store.Update(s.ctx, u))

	found, err := s.store.FindByNormalizedEmail(s.ctx, "ALICE@EXAMPLE.COM")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(u.ID, found.ID)
}

func (s *MemoryStoreSuite) TestAddLoginEnforcesPairUniqueness() {
	u := s.createUser("alice", "ALICE")

	s.Require().NoError(s.store.AddLogin(s.ctx, u, models.Login{Provider: "google", ProviderKey: "key-1"}))

	err := s.store.AddLogin(s.ctx, u, models.Login{Provider: "google", ProviderKey: "key-1", DisplayName: "other"})
	s.Require().ErrorIs(err, sentinel.ErrConflict, "same pair conflicts regardless of display name")

	s.Require().NoError(s.store.AddLogin(s.ctx, u, models.Login{Provider: "google", ProviderKey: "key-2"}))

	logins, err := s.store.Logins(s.ctx, u)
	s.Require().NoError(err)
	s.Len(logins, 2)
}

func (s *MemoryStoreSuite) TestAddLoginValidatesArguments() {
	u := s.createUser("alice", "ALICE")

	s.Require().ErrorIs(s.store.AddLogin(s.ctx, nil, models.Login{Provider: "p", ProviderKey: "k"}), sentinel.ErrInvalidArgument)
	s.Require().ErrorIs(s.store.AddLogin(s.ctx, u, models.Login{}), sentinel.ErrInvalidArgument)
}

func (s *MemoryStoreSuite) TestRemoveLoginAbsentPairIsNoOp() {
	u := s.createUser("alice", "ALICE")
	s.Require().NoError(s.store.AddLogin(s.ctx, u, models.Login{Provider: "github", ProviderKey: "key-2"}))

	s.Require().NoError(s.store.RemoveLogin(s.ctx, u, "google", "missing"))

	logins, err := s.store.Logins(s.ctx, u)
	s.Require().NoError(err)
	s.Len(logins, 1)
}

func (s *MemoryStoreSuite) TestFindByLogin() {
	u := s.createUser("alice", "ALICE")
	s.Require().NoError(s.store.AddLogin(s.ctx, u, models.Login{Provider: "google", ProviderKey: "key-1"}))
	s.Require().NoError(s.store.Update(s.ctx, u))

	found, err := s.store.FindByLogin(s.ctx, "google", "key-1")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(u.ID, found.ID)

	miss, err := s.store.FindByLogin(s.ctx, "google", "other")
	s.Require().NoError(err)
	s.Nil(miss)
}

func (s *MemoryStoreSuite) TestClaimManagement() {
	u := s.createUser("alice", "ALICE")

	claims := []models.Claim{
		{Type: "scope", Value: "read"},
		{Type: "scope", Value: "read"},
		{Type: "dept", Value: "eng"},
	}
	s.Require().NoError(s.store.AddClaims(s.ctx, u, claims))

	got, err := s.store.Claims(s.ctx, u)
	s.Require().NoError(err)
	s.Len(got, 3, "claim adds never dedup")

	s.Require().NoError(s.store.ReplaceClaim(s.ctx, u, models.Claim{Type: "dept", Value: "eng"}, models.Claim{Type: "dept", Value: "ops"}))
	s.False(u.HasClaim(models.Claim{Type: "dept", Value: "eng"}))
	s.True(u.HasClaim(models.Claim{Type: "dept", Value: "ops"}))

	s.Require().NoError(s.store.RemoveClaims(s.ctx, u, []models.Claim{{Type: "scope", Value: "read"}}))
	got, err = s.store.Claims(s.ctx, u)
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *MemoryStoreSuite) TestAddClaimsValidatesArguments() {
	u := s.createUser("alice", "ALICE")

	s.Require().ErrorIs(s.store.AddClaims(s.ctx, nil, []models.Claim{{Type: "t", Value: "v"}}), sentinel.ErrInvalidArgument)
	s.Require().ErrorIs(s.store.AddClaims(s.ctx, u, nil), sentinel.ErrInvalidArgument)
}

func (s *MemoryStoreSuite) TestFindUsersByClaim() {
	readers := models.Claim{Type: "scope", Value: "read"}

	u1 := s.createUser("alice", "ALICE")
	s.Require().NoError(s.store.AddClaims(s.ctx, u1, []models.Claim{readers}))
	s.Require().NoError(s.store.Update(s.ctx, u1))

	u2 := s.createUser("bob", "BOB")
	s.Require().NoError(s.store.AddClaims(s.ctx, u2, []models.Claim{readers}))
	s.Require().NoError(s.store.Update(s.ctx, u2))

	s.createUser("carol", "CAROL")

	matches, err := s.store.FindUsersByClaim(s.ctx, readers)
	s.Require().NoError(err)
	s.Len(matches, 2)

	ids := map[string]bool{}
	for _, m := range matches {
		ids[m.ID] = true
	}
	s.True(ids[u1.ID])
	s.True(ids[u2.ID])

	_, err = s.store.FindUsersByClaim(s.ctx, models.Claim{})
	s.Require().ErrorIs(err, sentinel.ErrInvalidArgument)
}

func (s *MemoryStoreSuite) TestCredentialFields() {
	u := s.createUser("alice", "ALICE")

	has, err := s.store.HasPassword(s.ctx, u)
	s.Require().NoError(err)
	s.False(has, "empty hash means no password set")

	s.Require().NoError(s.store.SetPasswordHash(s.ctx, u, "pbkdf2$abc"))
	hash, err := s.store.PasswordHash(s.ctx, u)
	s.Require().NoError(err)
	s.Equal("pbkdf2$abc", hash)

	s.Require().ErrorIs(s.store.SetSecurityStamp(s.ctx, u, ""), sentinel.ErrInvalidArgument)
	s.Require().NoError(s.store.SetSecurityStamp(s.ctx, u, "stamp-1"))
	stamp, err := s.store.SecurityStamp(s.ctx, u)
	s.Require().NoError(err)
	s.Equal("stamp-1", stamp)
}

func (s *MemoryStoreSuite) TestFlagFields() {
	u := s.createUser("alice", "ALICE")

	s.Require().NoError(s.store.SetTwoFactorEnabled(s.ctx, u, true))
	enabled, err := s.store.TwoFactorEnabled(s.ctx, u)
	s.Require().NoError(err)
	s.True(enabled)

	s.Require().ErrorIs(s.store.SetEmail(s.ctx, u, ""), sentinel.ErrInvalidArgument)
	s.Require().NoError(s.store.SetEmail(s.ctx, u, "alice@example.com"))
	email, err := s.store.Email(s.ctx, u)
	s.Require().NoError(err)
	s.Equal("alice@example.com", email)

	s.Require().NoError(s.store.SetNormalizedEmail(s.ctx, u, "ALICE@EXAMPLE.COM"))
	s.Require().NoError(s.store.SetEmailConfirmed(s.ctx, u, true))
	confirmed, err := s.store.EmailConfirmed(s.ctx, u)
	s.Require().NoError(err)
	s.True(confirmed)

	// Field mutations are memory-only until an explicit Update.
	stored, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(stored.TwoFactorEnabled, "unpersisted mutation must not be visible")

	s.Require().NoError(s.store.Update(s.ctx, u))
	stored, err = s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(stored.TwoFactorEnabled)
}
