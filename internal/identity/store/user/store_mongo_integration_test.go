//go:build integration

package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"

	"mongoidentity/internal/identity/models"
	"mongoidentity/internal/identity/store/user"
	"mongoidentity/pkg/platform/sentinel"
	"mongoidentity/pkg/testutil/containers"
)

const testDatabase = "mongoidentity_test"

type MongoStoreSuite struct {
	suite.Suite
	mongo *containers.MongoContainer
	db    *mongo.Database
	store *user.MongoStore
}

func TestMongoStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MongoStoreSuite))
}

func (s *MongoStoreSuite) SetupSuite() {
	s.mongo = containers.NewMongoContainer(s.T())
	s.db = s.mongo.Client.Database(testDatabase)
	s.store = user.NewMongo(s.db)
}

func (s *MongoStoreSuite) SetupTest() {
	s.Require().NoError(s.mongo.DropDatabase(context.Background(), testDatabase))
}

func (s *MongoStoreSuite) createUser(userName, normalized string) *models.User {
	u := models.NewUser(userName, normalized)
	s.Require().NoError(s.store.Create(context.Background(), u))
	s.Require().NotEmpty(u.ID)
	return u
}

func (s *MongoStoreSuite) TestCreateThenFindByIDRoundTrip() {
	ctx := context.Background()

	u := s.createUser("alice", "ALICE")
	u.Email = "alice@example.com"
	u.NormalizedEmail = "ALICE@EXAMPLE.COM"
	u.PasswordHash = "pbkdf2$abc"
	u.SecurityStamp = "stamp-1"
	u.TwoFactorEnabled = true
	s.Require().NoError(u.AddLogin(models.Login{Provider: "google", ProviderKey: "key-1", DisplayName: "Google"}))
	s.Require().NoError(u.AddClaim(models.Claim{Type: "scope", Value: "read"}))
	u.AddRole("admin")
	s.Require().NoError(s.store.Update(ctx, u))

	found, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(u.ID, found.ID)
	s.Equal("alice", found.UserName)
	s.Equal("ALICE", found.NormalizedUserName)
	s.Equal("alice@example.com", found.Email)
	s.Equal("ALICE@EXAMPLE.COM", found.NormalizedEmail)
	s.Equal("pbkdf2$abc", found.PasswordHash)
	s.Equal("stamp-1", found.SecurityStamp)
	s.True(found.TwoFactorEnabled)
	s.Equal(u.Logins, found.Logins)
	s.Equal(u.Claims, found.Claims)
	s.Equal(u.Roles, found.Roles)
}

func (s *MongoStoreSuite) TestCreateAssignsIDOnlyOnSuccess() {
	u := models.NewUser("alice", "ALICE")
	s.Require().NoError(s.store.Create(context.Background(), u))
	s.Require().NotEmpty(u.ID)

	// A second create gets a fresh id; documents never collide.
	other := models.NewUser("alice2", "ALICE2")
	s.Require().NoError(s.store.Create(context.Background(), other))
	s.NotEqual(u.ID, other.ID)
}

func (s *MongoStoreSuite) TestUpdateMissingDocumentIsNotFound() {
	ctx := context.Background()

	u := s.createUser("alice", "ALICE")
	s.Require().NoError(s.store.Delete(ctx, u))

	u.Email = "late@example.com"
	err := s.store.Update(ctx, u)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MongoStoreSuite) TestUpdateOverwritesWholeDocument() {
	ctx := context.Background()

	u := s.createUser("alice", "ALICE")
	s.Require().NoError(u.AddClaim(models.Claim{Type: "scope", Value: "read"}))
	s.Require().NoError(s.store.Update(ctx, u))

	u.Claims = []models.Claim{}
	u.UserName = "renamed"
	s.Require().NoError(s.store.Update(ctx, u))

	found, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("renamed", found.UserName)
	s.Empty(found.Claims, "replace is last-write-wins over the full document")
}

func (s *MongoStoreSuite) TestDeleteIsIdempotent() {
	ctx := context.Background()

	u := s.createUser("alice", "ALICE")
	s.Require().NoError(s.store.Delete(ctx, u))
	s.Require().NoError(s.store.Delete(ctx, u), "deleting an absent document succeeds")

	found, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *MongoStoreSuite) TestFindByIDShortCircuitsMalformedIdentifiers() {
	ctx := context.Background()
	s.createUser("alice", "ALICE")

	for _, id := range []string{"", "not-an-id", "64f1b2a3", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		found, err := s.store.FindByID(ctx, id)
		s.Require().NoError(err, "malformed id %q must not reach the driver", id)
		s.Nil(found)
	}
}

func (s *MongoStoreSuite) TestNormalizedUsernameLookupIsExactMatch() {
	ctx := context.Background()
	u := s.createUser("alice", "ALICE")

	found, err := s.store.FindByNormalizedUsername(ctx, "ALICE")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(u.ID, found.ID)

	miss, err := s.store.FindByNormalizedUsername(ctx, "alice")
	s.Require().NoError(err)
	s.Nil(miss, "no case folding at this layer")
}

func (s *MongoStoreSuite) TestFindByLoginScansEmbeddedArray() {
	ctx := context.Background()

	u := s.createUser("alice", "ALICE")
	s.Require().NoError(s.store.AddLogin(ctx, u, models.Login{Provider: "google", ProviderKey: "key-1"}))
	s.Require().NoError(s.store.Update(ctx, u))

	other := s.createUser("bob", "BOB")
	s.Require().NoError(s.store.AddLogin(ctx, other, models.Login{Provider: "google", ProviderKey: "key-2"}))
	s.Require().NoError(s.store.Update(ctx, other))

	found, err := s.store.FindByLogin(ctx, "google", "key-1")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(u.ID, found.ID)

	miss, err := s.store.FindByLogin(ctx, "google", "key-3")
	s.Require().NoError(err)
	s.Nil(miss)

	// Provider and key must both match; no cross-pairing.
	miss, err = s.store.FindByLogin(ctx, "github", "key-1")
	s.Require().NoError(err)
	s.Nil(miss)
}

func (s *MongoStoreSuite) TestFindUsersByClaim() {
	ctx := context.Background()
	readers := models.Claim{Type: "scope", Value: "read"}

	u1 := s.createUser("alice", "ALICE")
	s.Require().NoError(s.store.AddClaims(ctx, u1, []models.Claim{readers}))
	s.Require().NoError(s.store.Update(ctx, u1))

	u2 := s.createUser("bob", "BOB")
	s.Require().NoError(s.store.AddClaims(ctx, u2, []models.Claim{readers, {Type: "dept", Value: "eng"}}))
	s.Require().NoError(s.store.Update(ctx, u2))

	s.createUser("carol", "CAROL")

	matches, err := s.store.FindUsersByClaim(ctx, readers)
	s.Require().NoError(err)
	s.Len(matches, 2)
}

func (s *MongoStoreSuite) TestFindByNormalizedEmail() {
	ctx := context.Background()

	u := s.createUser("alice", "ALICE")
	s.Require().NoError(s.store.SetEmail(ctx, u, "alice@example.com"))
	s.Require().NoError(s.store.SetNormalizedEmail(ctx, u, "ALICE@EXAMPLE.COM"))
	s.Require().NoError(s.store.Update(ctx, u))

	found, err := s.store.FindByNormalizedEmail(ctx, "ALICE@EXAMPLE.COM")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(u.ID, found.ID)
}
