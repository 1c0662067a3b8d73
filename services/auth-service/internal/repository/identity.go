package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/credential-api/shared/security"
)

var ErrIdentityNotFound = errors.New("identity not found")

// IdentityRepository defines the identity directory operations.
type IdentityRepository interface {
	// EnsureIdentity returns the identity for params.Email, creating it if it does not
	// exist. An existing identity is returned unchanged, including its password.
	EnsureIdentity(ctx context.Context, params EnsureIdentityParams) (*model.Identity, bool, error)
	GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)
	SetPassword(ctx context.Context, handle, newPassword string) error
}

// EnsureIdentityParams defines the fields of a newly created identity.
type EnsureIdentityParams struct {
	Email       string
	Password    string
	DisplayName string
}

const identityCollection = "identities"

type identityMongoRepository struct {
	db *mongo.Database
}

func NewIdentityMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) IdentityRepository {
	collection := db.Collection(identityCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create identity indexes")
	}

	return &identityMongoRepository{db: db}
}

func (r *identityMongoRepository) EnsureIdentity(
	ctx context.Context,
	params EnsureIdentityParams,
) (*model.Identity, bool, error) {
	existing, err := r.GetIdentityByEmail(ctx, params.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrIdentityNotFound) {
		return nil, false, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	newID := bson.NewObjectID()

	result := r.db.Collection(identityCollection).FindOneAndUpdate(
		ctx,
		bson.M{"email": params.Email},
		bson.M{"$setOnInsert": bson.M{
			"_id":           newID,
			"email":         params.Email,
			"display_name":  params.DisplayName,
			"password_hash": passwordHash,
			"created_at":    now,
			"updated_at":    now,
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if err := result.Err(); err != nil {
		// Two concurrent upserts can both miss the filter; the loser hits the unique index.
		if mongo.IsDuplicateKeyError(err) {
			existing, err := r.GetIdentityByEmail(ctx, params.Email)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	var identity model.Identity
	if err := result.Decode(&identity); err != nil {
		return nil, false, err
	}

	return &identity, identity.ID == newID, nil
}

func (r *identityMongoRepository) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	result := r.db.Collection(identityCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrIdentityNotFound
		}
		return nil, result.Err()
	}

	var identity model.Identity
	if err := result.Decode(&identity); err != nil {
		return nil, err
	}

	return &identity, nil
}

func (r *identityMongoRepository) SetPassword(ctx context.Context, handle, newPassword string) error {
	objectID, err := bson.ObjectIDFromHex(handle)
	if err != nil {
		return fmt.Errorf("invalid identity handle %q: %w", handle, err)
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	result, err := r.db.Collection(identityCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		}},
	)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrIdentityNotFound
	}

	return nil
}
