package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"gitgrok.app/api/common/id"
	"gitgrok.app/api/core/config"
	"gitgrok.app/api/internal/model"
	"gitgrok.app/api/internal/store"
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	// ParseToken validates a bearer token and returns the user id it was issued for.
	ParseToken(token string) (int64, error)
}

type authService struct {
	userStore store.UserStore
	cfg       config.JWTConfig
	cost      int
	now       func() time.Time
}

func NewAuthService(userStore store.UserStore, cfg config.JWTConfig) AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &authService{
		userStore: userStore,
		cfg:       cfg,
		cost:      bcrypt.DefaultCost,
		now:       time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, "", classify("auth.signup", fmt.Errorf("%w: All fields are required", ErrMissingField))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, "", classify("auth.signup", fmt.Errorf("hashing password: %w", err))
	}

	user := &model.User{
		ID:           id.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", classify("auth.signup", ErrUserExists)
		}
		slog.ErrorContext(ctx, "failed to create user", "error", err)
		return nil, "", classify("auth.signup", fmt.Errorf("creating user: %w", err))
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, "", classify("auth.signup", err)
	}

	slog.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", classify("auth.login", fmt.Errorf("%w: Please provide email and password", ErrMissingField))
	}

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", classify("auth.login", ErrInvalidCredentials)
		}
		return nil, "", classify("auth.login", fmt.Errorf("getting user by email: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.InfoContext(ctx, "login rejected", "user_id", user.ID)
		return nil, "", classify("auth.login", ErrInvalidCredentials)
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, "", classify("auth.login", err)
	}
	return user, token, nil
}

func (s *authService) ParseToken(token string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, classify("auth.token", ErrTokenExpired)
		}
		return 0, classify("auth.token", fmt.Errorf("%w: %w", ErrInvalidToken, err))
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, classify("auth.token", fmt.Errorf("%w: bad subject", ErrInvalidToken))
	}
	return userID, nil
}

func (s *authService) issue(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
