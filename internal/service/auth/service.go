package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/stockledger/internal/config"
)

const issuer = "stockledger"

var (
	// ErrInvalidCredentials is returned for an unknown id or a wrong secret alike.
	ErrInvalidCredentials = errors.New("invalid user id or secret")

	// ErrInvalidToken is returned for tokens that are malformed, expired or not ours.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// dummyHash is compared against when the id is unknown so both failure paths cost one bcrypt run.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("stockledger-unknown-user"), bcrypt.MinCost)

// Token is an issued bearer token.
type Token struct {
	Value     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims defines the JWT claims structure.
type Claims struct {
	jwt.RegisteredClaims
}

// Service checks logins against the configured allow-list and signs tokens.
type Service struct {
	users  map[string]string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates an auth service from configuration.
func NewService(cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  cfg.Users,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
		logger: logger,
	}
}

// Login verifies id and secret and returns a signed token.
func (s *Service) Login(id, secret string) (Token, error) {
	hash, ok := s.users[id]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		s.logger.Info("login rejected", zap.String("user", id), zap.String("reason", "unknown user"))
		return Token{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		s.logger.Info("login rejected", zap.String("user", id), zap.String("reason", "secret mismatch"))
		return Token{}, ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("login accepted", zap.String("user", id))
	return Token{Value: signed, UserID: id, ExpiresAt: expires.UTC()}, nil
}

// Verify parses a token and returns the user id it was issued to. Users
// removed from the allow-list are rejected even with an unexpired token.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if _, ok := s.users[claims.Subject]; !ok {
		return "", fmt.Errorf("%w: user %s is not allowed", ErrInvalidToken, claims.Subject)
	}
	return claims.Subject, nil
}
