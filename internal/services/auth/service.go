package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"admissions/internal/core"
	"admissions/internal/domain/user"
	"admissions/internal/store/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session is returned on register and login
type Session struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
	Role  user.Role `json:"role"`
	Token string    `json:"token"`
}

// RegisterInput carries the fields of a new account
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Service handles accounts and tokens
type Service struct {
	users    repositories.UserRepository
	tokens   *TokenIssuer
	denylist repositories.TokenDenylist
	adminKey string
	now      func() time.Time
}

// NewService creates the auth service. denylist may be nil, in which case
// logout cannot revoke tokens. An empty adminKey disables admin registration.
func NewService(users repositories.UserRepository, tokens *TokenIssuer, denylist repositories.TokenDenylist, adminKey string) *Service {
	return &Service{users: users, tokens: tokens, denylist: denylist, adminKey: adminKey, now: time.Now}
}

// Register creates a regular user account
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if strings.TrimSpace(in.Phone) == "" {
		return nil, core.Invalid("register_user", "All fields are required")
	}
	return s.register(ctx, in, user.RoleUser)
}

// RegisterAdmin creates an admin account when secretKey matches the
// configured registration key
func (s *Service) RegisterAdmin(ctx context.Context, in RegisterInput, secretKey string) (*Session, error) {
	if s.adminKey == "" || subtle.ConstantTimeCompare([]byte(secretKey), []byte(s.adminKey)) != 1 {
		log.Warn().Str("email", in.Email).Msg("admin registration with invalid secret key")
		return nil, core.Unauthorized("register_admin", "Invalid Admin Secret Key")
	}
	return s.register(ctx, in, user.RoleAdmin)
}

func (s *Service) register(ctx context.Context, in RegisterInput, role user.Role) (*Session, error) {
	u, err := user.New(in.Name, in.Email, in.Phone, in.Password, role, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.ID.String()).Str("role", string(role)).Msg("account registered")
	return s.session(u)
}

// Login checks credentials for any role
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

// LoginAdmin is Login restricted to admin accounts
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, core.Forbidden("login_admin", "Access denied! Not an admin")
	}
	return s.session(u)
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*user.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, core.Invalid("login", "Email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if core.Is(err, core.KindNotFound) {
			return nil, core.Unauthorized("login", "Invalid credentials")
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, core.Unauthorized("login", "Invalid credentials")
	}
	return u, nil
}

func (s *Service) session(u *user.User) (*Session, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role, Token: token}, nil
}

// Authenticate parses a bearer token and rejects revoked ones
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, core.Internal("authenticate", err)
		}
		if revoked {
			return nil, core.Unauthorized("authenticate", "Token has been revoked")
		}
	}
	return claims, nil
}

// Logout revokes the presented token until it would have expired
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if s.denylist == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return core.Internal("logout", err)
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateProfile changes name and phone; empty values are left untouched
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) (*user.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n := strings.TrimSpace(name); n != "" {
		u.Name = n
	}
	if p := strings.TrimSpace(phone); p != "" {
		u.Phone = p
	}
	u.UpdatedAt = s.now()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdatePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.CheckPassword(current) {
		return core.Invalid("update_password", "Current password is incorrect")
	}
	if err := u.SetPassword(next); err != nil {
		return err
	}
	u.UpdatedAt = s.now()
	return s.users.Update(ctx, u)
}
