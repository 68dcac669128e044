package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// RoleAdmin is the only role the admin API accepts.
const RoleAdmin = "admin"

type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	admins   AdminUserStore
	username string
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

type AuthConfig struct {
	Username string
	Password string
	Secret   string
	TTL      time.Duration
}

func NewAuthService(cfg AuthConfig, admins AdminUserStore) *AuthService {
	return &AuthService{
		admins:   admins,
		username: cfg.Username,
		password: cfg.Password,
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TTL,
		now:      time.Now,
	}
}

// Login checks the environment admin first, then stored admin users, and returns a
// signed token on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", invalidf("username and password are required")
	}
	ok, err := s.checkCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrUnauthorized
	}
	return s.Issue(username)
}

func (s *AuthService) checkCredentials(ctx context.Context, username, password string) (bool, error) {
	if s.username != "" && s.password != "" {
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
		if userOK && passOK {
			return true, nil
		}
	}
	if s.admins == nil {
		return false, nil
	}
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("find admin: %w", err)
	}
	if admin == nil {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *AuthService) Issue(username string) (string, error) {
	now := s.now().UTC()
	claims := AdminClaims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify rejects tokens that are malformed, signed with another key or method,
// expired, or not carrying the admin role.
func (s *AuthService) Verify(token string) (*AdminClaims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}
	if claims.Role != RoleAdmin || claims.Username == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// HashPassword produces the bcrypt hash stored for admin users.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", invalidf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
