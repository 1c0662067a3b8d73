package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Identity represents a login-capable account in the identity directory.
// The hex form of ID is the identity handle shared with the profile store.
type Identity struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	DisplayName  string        `bson:"display_name"`
	PasswordHash string        `bson:"password_hash"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

// Handle returns the opaque identity handle.
func (i *Identity) Handle() string {
	return i.ID.Hex()
}
