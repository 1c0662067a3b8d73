package model

import (
	"time"
)

const (
	RoleProvider = "provider"
	RoleCustomer = "customer"
)

// Profile is the application-level document keyed by identity handle.
type Profile struct {
	IdentityHandle string    `bson:"_id"`
	Role           string    `bson:"role"`
	Email          string    `bson:"email,omitempty"`
	DisplayName    string    `bson:"display_name,omitempty"`
	BusinessName   string    `bson:"business_name,omitempty"`
	OwnerName      string    `bson:"owner_name,omitempty"`
	Category       string    `bson:"category,omitempty"`
	Phone          string    `bson:"phone,omitempty"`
	Address        string    `bson:"address,omitempty"`
	FirstName      string    `bson:"first_name,omitempty"`
	LastName       string    `bson:"last_name,omitempty"`
	DateOfBirth    string    `bson:"dob,omitempty"`
	Region         string    `bson:"region,omitempty"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

// ProvisionedAccount is the outcome of provisioning a login for an approved provider.
type ProvisionedAccount struct {
	IdentityHandle string
	Email          string
	DisplayName    string
	Created        bool
	Notified       bool
	Profile        *Profile
}
