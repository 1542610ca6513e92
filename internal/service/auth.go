package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/repo"
)

// AdminUser is the only account; it is created by the first successful login.
const AdminUser = "admin"

type AuthService struct {
	users  repo.UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

type AuthOption func(*AuthService)

// WithClock overrides the time source used for issuing and checking tokens.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithHashCost sets the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.cost = cost }
}

func NewAuthService(users repo.UserRepository, secret string, ttl time.Duration, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks password against the admin account and returns a signed token.
func (s *AuthService) Login(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", invalid("password is required")
	}

	user, err := s.users.Get(ctx, AdminUser)
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		user, err = s.bootstrap(ctx, password)
		if err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	default:
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return "", ErrUnauthorized
		}
	}

	return s.issue(user.Username)
}

// bootstrap creates the admin account with the first password it sees.
func (s *AuthService) bootstrap(ctx context.Context, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(ctx, model.User{Username: AdminUser, PasswordHash: string(hash)})
	if errors.Is(err, repo.ErrorConflict) {
		// Кто-то успел создать админа раньше: проверяем пароль по его хэшу.
		existing, err := s.users.Get(ctx, AdminUser)
		if err != nil {
			return model.User{}, err
		}
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
			return model.User{}, ErrUnauthorized
		}
		return existing, nil
	}
	return user, err
}

func (s *AuthService) issue(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify returns the token's subject or ErrUnauthorized.
func (s *AuthService) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return claims.Subject, nil
}
