package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository defines the profile document operations.
type ProfileRepository interface {
	// UpsertProfile merges the non-empty fields of profile into the document keyed by
	// profile.IdentityHandle and returns the resulting document.
	UpsertProfile(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	GetProfile(ctx context.Context, handle string) (*model.Profile, error)
}

const profileCollection = "profiles"

type profileMongoRepository struct {
	db *mongo.Database
}

func NewProfileMongoRepository(db *mongo.Database) ProfileRepository {
	return &profileMongoRepository{db: db}
}

func (r *profileMongoRepository) UpsertProfile(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	if profile.IdentityHandle == "" {
		return nil, errors.New("profile identity handle is required")
	}

	now := time.Now()
	updateMap := ProfileMergeFields(profile)
	updateMap["updated_at"] = now

	result := r.db.Collection(profileCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": profile.IdentityHandle},
		bson.M{
			"$set":         updateMap,
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var stored model.Profile
	if err := result.Decode(&stored); err != nil {
		return nil, err
	}

	return &stored, nil
}

func (r *profileMongoRepository) GetProfile(ctx context.Context, handle string) (*model.Profile, error) {
	result := r.db.Collection(profileCollection).FindOne(ctx, bson.M{"_id": handle})
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, result.Err()
	}

	var profile model.Profile
	if err := result.Decode(&profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// ProfileMergeFields returns the document fields a merge-write of profile sets.
// Empty fields are left out so a merge never clears a stored value.
func ProfileMergeFields(profile *model.Profile) bson.M {
	fields := bson.M{}

	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}

	set("role", profile.Role)
	set("email", profile.Email)
	set("display_name", profile.DisplayName)
	set("business_name", profile.BusinessName)
	set("owner_name", profile.OwnerName)
	set("category", profile.Category)
	set("phone", profile.Phone)
	set("address", profile.Address)
	set("first_name", profile.FirstName)
	set("last_name", profile.LastName)
	set("dob", profile.DateOfBirth)
	set("region", profile.Region)

	return fields
}
