package role

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"

	"mongoidentity/internal/identity/models"
	"mongoidentity/internal/identity/store"
	"mongoidentity/pkg/platform/sentinel"
)

// Collection is the MongoDB collection role documents live in.
const Collection = "roles"

var (
	_ store.RoleStore = (*MongoStore)(nil)
	_ store.RoleStore = (*MemoryStore)(nil)
)

var tracer = otel.Tracer("mongoidentity/store/role")

// MongoStore persists role definitions. Users only reference roles by
// name, so this store stays a plain id/name lookup table.
type MongoStore struct {
	roles *mongo.Collection
}

// NewMongo constructs a MongoDB-backed role store.
func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{roles: db.Collection(Collection)}
}

func (s *MongoStore) Create(ctx context.Context, r *models.Role) error {
	if r == nil {
		return fmt.Errorf("%w: role is required", sentinel.ErrInvalidArgument)
	}
	ctx, span := tracer.Start(ctx, "role.Create")
	defer span.End()

	doc := *r
	doc.ID = primitive.NewObjectID().Hex()

	if _, err := s.roles.InsertOne(ctx, doc); err != nil {
		span.RecordError(err)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert role: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert role: %w", err)
	}
	r.ID = doc.ID
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Role, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "role.FindByID")
	defer span.End()

	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByNormalizedName(ctx context.Context, normalized string) (*models.Role, error) {
	ctx, span := tracer.Start(ctx, "role.FindByNormalizedName")
	defer span.End()

	return s.findOne(ctx, bson.M{"normalizedName": normalized})
}

func (s *MongoStore) Delete(ctx context.Context, r *models.Role) error {
	if r == nil {
		return fmt.Errorf("%w: role is required", sentinel.ErrInvalidArgument)
	}
	ctx, span := tracer.Start(ctx, "role.Delete")
	defer span.End()

	if _, err := s.roles.DeleteOne(ctx, bson.M{"_id": r.ID}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.Role, error) {
	var r models.Role
	err := s.roles.FindOne(ctx, filter).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &r, nil
}
