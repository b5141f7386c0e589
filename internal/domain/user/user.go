package user

import (
	"strings"
	"time"

	"admissions/internal/core"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role scopes what a token holder may do.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const minPasswordLen = 6

// User is an account holder. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// New validates the fields and hashes the password.
func New(name, email, phone, password string, role Role, now time.Time) (*User, error) {
	u := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Phone:     strings.TrimSpace(phone),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if u.Name == "" || u.Email == "" || password == "" {
		return nil, core.Invalid("new_user", "name, email and password are required")
	}
	if !strings.Contains(u.Email, "@") {
		return nil, core.Invalid("new_user", "email is invalid")
	}
	if role != RoleUser && role != RoleAdmin {
		return nil, core.Invalid("new_user", "unknown role")
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash.
func (u *User) SetPassword(password string) error {
	if len(password) < minPasswordLen {
		return core.Invalid("set_password", "password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.Internal("set_password", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares a candidate against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
