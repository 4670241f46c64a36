package user

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mongoidentity/internal/identity/models"
	"mongoidentity/internal/identity/store"
	"mongoidentity/pkg/platform/sentinel"
)

// Collection is the MongoDB collection user documents live in.
const Collection = "users"

var (
	_ store.UserStore = (*MongoStore)(nil)
	_ store.UserStore = (*MemoryStore)(nil)
	_ store.UserStore = (*CachedStore)(nil)
)

var tracer = otel.Tracer("mongoidentity/store/user")

// MongoStore persists user aggregates as single documents in one
// collection, identifier as the primary key. Each operation is a single
// document round trip; the engine's single-document atomicity is the only
// serialization this layer relies on, and concurrent updates against the
// same id resolve last-writer-wins.
type MongoStore struct {
	aggregateOps
	users *mongo.Collection
}

// NewMongo constructs a MongoDB-backed user store.
func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{users: db.Collection(Collection)}
}

// Create assigns a freshly generated ObjectID and inserts the document.
// The aggregate's ID field is only written after a successful insert so a
// failed create never leaves a partially assigned identifier behind.
func (s *MongoStore) Create(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	ctx, span := tracer.Start(ctx, "user.Create")
	defer span.End()

	doc := u.Clone()
	doc.ID = primitive.NewObjectID().Hex()

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		span.RecordError(err)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert user: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = doc.ID
	return nil
}

// Update replaces the whole stored document with the aggregate's current
// state. A missing document is surfaced as ErrNotFound rather than
// silently no-opping.
func (s *MongoStore) Update(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	ctx, span := tracer.Start(ctx, "user.Update")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", u.ID))

	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("replace user %s: %w", u.ID, sentinel.ErrNotFound)
	}
	return nil
}

// Delete removes the document. Deleting an already absent document
// succeeds; the desired end state is reached either way.
func (s *MongoStore) Delete(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	ctx, span := tracer.Start(ctx, "user.Delete")
	defer span.End()

	if _, err := s.users.DeleteOne(ctx, bson.M{"_id": u.ID}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// FindByID gates on identifier validity before touching the database:
// malformed input is an ordinary "no such user", not a driver error.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "user.FindByID")
	defer span.End()

	return s.findOne(ctx, span, bson.M{"_id": id})
}

// FindByNormalizedUsername looks up by the caller-normalized username.
// Exact match only; the store never case-folds.
func (s *MongoStore) FindByNormalizedUsername(ctx context.Context, normalized string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "user.FindByNormalizedUsername")
	defer span.End()

	return s.findOne(ctx, span, bson.M{"normalizedUserName": normalized})
}

// FindByNormalizedEmail looks up by the caller-normalized email address.
func (s *MongoStore) FindByNormalizedEmail(ctx context.Context, normalized string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "user.FindByNormalizedEmail")
	defer span.End()

	return s.findOne(ctx, span, bson.M{"normalizedEmail": normalized})
}

// FindByLogin scans the embedded login arrays for the pair. At most one
// user carries a given pair; the add-side conflict check enforces that,
// not a database constraint.
func (s *MongoStore) FindByLogin(ctx context.Context, provider, providerKey string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "user.FindByLogin")
	defer span.End()

	filter := bson.M{"logins": bson.M{"$elemMatch": bson.M{
		"provider":    provider,
		"providerKey": providerKey,
	}}}
	return s.findOne(ctx, span, filter)
}

// FindUsersByClaim returns every user whose embedded claims contain a
// matching (type, value) pair, in no particular order.
func (s *MongoStore) FindUsersByClaim(ctx context.Context, claim models.Claim) ([]*models.User, error) {
	if claim.IsZero() {
		return nil, fmt.Errorf("%w: claim is required", sentinel.ErrInvalidArgument)
	}
	ctx, span := tracer.Start(ctx, "user.FindUsersByClaim")
	defer span.End()

	filter := bson.M{"claims": bson.M{"$elemMatch": bson.M{
		"type":  claim.Type,
		"value": claim.Value,
	}}}
	cursor, err := s.users.Find(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find users by claim: %w", err)
	}
	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decode users by claim: %w", err)
	}
	return users, nil
}

func (s *MongoStore) findOne(ctx context.Context, span trace.Span, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
