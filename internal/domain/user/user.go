package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilat-cab/service-ride/internal/platform/auth"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// User is the aggregate root for an account.
type User struct {
	id           uuid.UUID
	email        string
	passwordHash string
	fullName     string
	phone        string
	role         string
	isActive     bool
	lastLoginAt  *time.Time
	version      int64
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates an active passenger account. passwordHash must already be hashed.
func NewUser(email, passwordHash, fullName, phone string) (*User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.NewValidationError("invalid email address")
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password is required")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, domain.NewValidationError("full name is required")
	}

	now := time.Now().UTC()
	return &User{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		fullName:     fullName,
		phone:        strings.TrimSpace(phone),
		role:         auth.RolePassenger,
		isActive:     true,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	email, passwordHash, fullName, phone, role string,
	isActive bool,
	lastLoginAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
) *User {
	return &User{
		id:           id,
		email:        email,
		passwordHash: passwordHash,
		fullName:     fullName,
		phone:        phone,
		role:         role,
		isActive:     isActive,
		lastLoginAt:  lastLoginAt,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		deletedAt:    deletedAt,
	}
}

// --- Getters ---

func (u *User) ID() uuid.UUID           { return u.id }
func (u *User) Email() string           { return u.email }
func (u *User) PasswordHash() string    { return u.passwordHash }
func (u *User) FullName() string        { return u.fullName }
func (u *User) Phone() string           { return u.phone }
func (u *User) Role() string            { return u.role }
func (u *User) IsActive() bool          { return u.isActive }
func (u *User) LastLoginAt() *time.Time { return u.lastLoginAt }
func (u *User) Version() int64          { return u.version }
func (u *User) CreatedAt() time.Time    { return u.createdAt }
func (u *User) UpdatedAt() time.Time    { return u.updatedAt }
func (u *User) DeletedAt() *time.Time   { return u.deletedAt }

// IsDeleted reports whether the account has been soft-deleted.
func (u *User) IsDeleted() bool { return u.deletedAt != nil }

// --- Behavior ---

// RecordLogin stamps the last successful signin.
func (u *User) RecordLogin(at time.Time) {
	at = at.UTC()
	u.lastLoginAt = &at
	u.touch()
}

// UpdateProfile applies partial updates; empty values are ignored.
func (u *User) UpdateProfile(fullName, phone string) {
	if name := strings.TrimSpace(fullName); name != "" {
		u.fullName = name
	}
	if p := strings.TrimSpace(phone); p != "" {
		u.phone = p
	}
	u.touch()
}

// ChangePassword replaces the stored hash.
func (u *User) ChangePassword(newHash string) error {
	if newHash == "" {
		return domain.NewValidationError("password is required")
	}
	u.passwordHash = newHash
	u.touch()
	return nil
}

// SetActive activates or deactivates the account.
func (u *User) SetActive(active bool) error {
	if u.IsDeleted() {
		return domain.NewInvalidStateMessage("account is deleted")
	}
	u.isActive = active
	u.touch()
	return nil
}

// SoftDelete marks the account deleted and inactive.
func (u *User) SoftDelete(at time.Time) error {
	if u.IsDeleted() {
		return domain.NewInvalidStateMessage("account is already deleted")
	}
	at = at.UTC()
	u.deletedAt = &at
	u.isActive = false
	u.touch()
	return nil
}

// Restore undoes a soft delete and reactivates the account.
func (u *User) Restore() error {
	if !u.IsDeleted() {
		return domain.NewInvalidStateMessage("account is not deleted")
	}
	u.deletedAt = nil
	u.isActive = true
	u.touch()
	return nil
}

func (u *User) touch() {
	u.version++
	u.updatedAt = time.Now().UTC()
}
