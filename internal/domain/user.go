package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// ParseUserID parses the canonical string form.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID{UUID: id}, nil
}

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// Visibility is a user's configured exposure level. It governs who may
// read the profile: everyone, or only the owner and accepted followers.
type Visibility string

const (
	VisibilityPublic        Visibility = "PUBLIC"
	VisibilityFollowersOnly Visibility = "FOLLOWERS_ONLY"
)

// DefaultVisibility applies to newly registered users.
const DefaultVisibility = VisibilityFollowersOnly

// Valid reports whether v is one of the enumerated visibility levels.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityFollowersOnly
}

// User is a registered account. Username and email are unique
// case-insensitively across all users. PasswordHash is an opaque
// encoded credential and must never leave the domain layer.
type User struct {
	ID           UserID
	Username     string
	Email        string
	PasswordHash string
	Visibility   Visibility
	AvatarURL    string
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the public projection of a user used in listings
// (search results, follower lists). It never carries credentials.
type Summary struct {
	ID         UserID
	Username   string
	AvatarURL  string
	Visibility Visibility
}

// Summary projects the user into its listing form.
func (u *User) Summary() Summary {
	return Summary{
		ID:         u.ID,
		Username:   u.Username,
		AvatarURL:  u.AvatarURL,
		Visibility: u.Visibility,
	}
}
