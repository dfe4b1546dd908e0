package directory

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-shareit/internal/platform/domain"
)

// User is the local replica of a registered user.
type User struct {
	id        uuid.UUID
	name      string
	email     string
	updatedAt time.Time
}

// NewUser validates and builds a user record.
func NewUser(id uuid.UUID, name, email string) (*User, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	return &User{
		id:        id,
		name:      strings.TrimSpace(name),
		email:     email,
		updatedAt: time.Now().UTC(),
	}, nil
}

// ReconstructUser rebuilds a User from persistence data (no validation).
func ReconstructUser(id uuid.UUID, name, email string, updatedAt time.Time) *User {
	return &User{id: id, name: name, email: email, updatedAt: updatedAt}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// UserPatch carries the fields of a partial user update; nil means unchanged.
type UserPatch struct {
	Name  *string
	Email *string
}

// Update applies a partial update. Nothing changes unless every field is valid.
func (u *User) Update(p UserPatch) error {
	name, email := u.name, u.email
	if p.Name != nil {
		name = strings.TrimSpace(*p.Name)
		if name == "" {
			return domain.NewValidationError("user name cannot be blank")
		}
	}
	if p.Email != nil {
		email = strings.TrimSpace(*p.Email)
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	u.name, u.email = name, email
	u.updatedAt = time.Now().UTC()
	return nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return domain.NewValidationError("user email is invalid")
	}
	return nil
}
