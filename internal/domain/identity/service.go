package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/arogya/acms/internal/platform/auth"
)

// ErrInvalidCredentials covers every authentication failure: unknown user,
// wrong password, wrong role. Callers must not leak which one it was.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// dummyHash is a throwaway bcrypt digest compared against when the
// username does not exist.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type Service struct {
	repo     Repository
	secret   []byte
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewService(repo Repository, secret string, tokenTTL time.Duration, log zerolog.Logger) *Service {
	return &Service{repo: repo, secret: []byte(secret), tokenTTL: tokenTTL, log: log}
}

// Authenticate checks username, password, and the role the user claimed at
// the login screen, and issues a session token on success.
func (s *Service) Authenticate(ctx context.Context, username, password, role string) (*User, string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		// Burn a hash comparison anyway so unknown usernames take as
		// long as wrong passwords.
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if u.Role != role {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.secret, auth.Actor{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
	}, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Create registers a staff account, hashing the supplied password.
func (s *Service) Create(ctx context.Context, username, name, role, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{Username: username, Name: name, Role: role, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// defaultAccounts are the development bootstrap users, one per role.
var defaultAccounts = []struct {
	username, name, role, password string
}{
	{"admin", "Admin User", auth.RoleAdmin, "admin123"},
	{"reception", "Reception Staff", auth.RoleReception, "reception123"},
	{"nurse", "Nurse Staff", auth.RoleNurse, "nurse123"},
	{"counselor", "Counselor Staff", auth.RoleCounselor, "counselor123"},
	{"doctor", "Dr. Smith", auth.RoleDoctor, "doctor123"},
	{"embryologist", "Embryologist Staff", auth.RoleEmbryologist, "embryo123"},
}

// SeedDefaults creates the six default accounts. Existing usernames are
// left untouched, so reseeding a populated database is safe.
func (s *Service) SeedDefaults(ctx context.Context) error {
	for _, a := range defaultAccounts {
		if _, err := s.repo.GetByUsername(ctx, a.username); err == nil {
			continue
		}
		if _, err := s.Create(ctx, a.username, a.name, a.role, a.password); err != nil {
			return fmt.Errorf("seed user %s: %w", a.username, err)
		}
		s.log.Info().Str("username", a.username).Str("role", a.role).Msg("seeded default user")
	}
	return nil
}
