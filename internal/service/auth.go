package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/harborpoint/customerd/internal/domain"
	"github.com/harborpoint/customerd/internal/store"
	"github.com/harborpoint/customerd/pkg/credx"
	"github.com/harborpoint/customerd/pkg/idx"
	"github.com/harborpoint/customerd/pkg/jwtx"
	"github.com/harborpoint/customerd/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so login failures don't reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrEmptyUsername      = errors.New("username must not be empty")
	ErrEmptyPassword      = errors.New("password must not be empty")
	ErrUnknownRole        = errors.New("unknown role")
)

// AuthResult is what a successful login yields.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	Store  store.Store
	Signer jwtx.Signer

	Issuer   string
	Audience []string
	TokenTTL time.Duration // zero means jwtx.DefaultTokenTTL
}

func (s *AuthService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return jwtx.DefaultTokenTTL
}

// Login verifies the username/password pair and issues a signed token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Look up the user
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("login attempt for unknown user", slog.String("username", username))
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	// 2. Verify the password against the stored hash and salt
	if !credx.Verify(password, user.PasswordHash, user.PasswordSalt) {
		l.Warn("login attempt with wrong password", slog.String("username", username))
		return AuthResult{}, ErrInvalidCredentials
	}

	// 3. Issue the token
	now := time.Now()
	claims := jwtx.NewClaims(user.Username, user.Role, s.Issuer, s.Audience, s.tokenTTL(), now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		l.Error("failed to sign token", slog.Any("error", err))
		return AuthResult{}, err
	}

	l.Info("user logged in",
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)
	return AuthResult{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// GetUser fetches an account by username.
func (s *AuthService) GetUser(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}

// Register creates a new account. An empty role defaults to User.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if username == "" {
		return domain.User{}, ErrEmptyUsername
	}
	if password == "" {
		return domain.User{}, ErrEmptyPassword
	}
	switch role {
	case "":
		role = domain.RoleUser
	case domain.RoleUser, domain.RoleAdmin:
	default:
		return domain.User{}, ErrUnknownRole
	}

	// 1. Cheap pre-check; the unique index is the authoritative guard.
	if _, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
		return domain.User{}, ErrDuplicateUsername
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	// 2. Derive credential material
	hash, salt, err := credx.Create(password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	// 3. Insert; a concurrent registration loses here
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateUsername
		}
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("username", username))
	return user, nil
}

// BootstrapAdmin creates an administrator account when the user table is
// empty. It is a no-op if any account exists or no credentials were
// configured.
func (s *AuthService) BootstrapAdmin(ctx context.Context, username, password string) error {
	l := slogx.FromContext(ctx)

	if username == "" || password == "" {
		return nil
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	hash, salt, err := credx.Create(password)
	if err != nil {
		return err
	}

	err = s.Store.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// Another instance may have bootstrapped first.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	l.Info("bootstrapped admin account", slog.String("username", username))
	return nil
}
