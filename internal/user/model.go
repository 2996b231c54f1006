package user

import (
	"time"

	"github.com/gofrs/uuid"
)

const DefaultTimezone = "Europe/Paris"

// User is the single account type; every user acts as the site administrator.
type User struct {
	ID           int64     `json:"id" db:"id"`
	UUID         uuid.UUID `json:"uuid" db:"uuid"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Timezone     string    `json:"timezone" db:"timezone"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Timezone  string
}

// Patch lists the profile fields that may change; nil means "leave as is".
type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Timezone  *string
}

func (p Patch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Timezone == nil
}
