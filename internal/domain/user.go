package domain

import (
	"context"
	"regexp"
	"time"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like a deliverable email address.
func ValidEmail(s string) bool {
	return emailRegexp.MatchString(s)
}

// Identity is the authenticated principal behind a request.
// Organizers have persistent accounts; guests are anonymous.
type Identity struct {
	UserID    string `json:"user_id"`
	Anonymous bool   `json:"anonymous"`
}

// IsOrganizer reports whether the identity belongs to a persistent account.
func (i *Identity) IsOrganizer() bool {
	return i != nil && i.UserID != "" && !i.Anonymous
}

// User represents an organizer account
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an identity.
type TokenIssuer interface {
	Issue(identity Identity, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// UserRepository defines the interface for organizer storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// AuthService covers organizer email/password accounts and anonymous guest sessions.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*User, error)
	SignIn(ctx context.Context, email, password string) (token string, user *User, err error)
	SignInAnonymously(ctx context.Context) (token string, identity Identity, err error)
}
