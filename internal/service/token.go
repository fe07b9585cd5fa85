package service

import (
	"errors"
	"time"

	apperrors "github.com/contactbook/backend/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Token scopes. Each token family carries its own scope claim so a leaked
// confirmation link can never be replayed as an API credential.
const (
	ScopeAccess        = "access_token"
	ScopeRefresh       = "refresh_token"
	ScopeEmail         = "email_token"
	ScopeResetPassword = "reset_password"
)

type tokenClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
	now        func() time.Time // injectable for tests
}

func NewTokenService(secret string, accessTTL, refreshTTL, emailTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		emailTTL:   emailTTL,
		now:        time.Now,
	}
}

// HashPassword hashes a plaintext password with bcrypt.
// The same plaintext yields a different hash on every call (salted).
func (s *TokenService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the hash.
// bcrypt performs a constant-time comparison internally.
func (s *TokenService) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateAccessToken issues a short-lived access token for the subject email
func (s *TokenService) CreateAccessToken(email string) (string, error) {
	return s.sign(email, ScopeAccess, s.accessTTL)
}

// CreateRefreshToken issues a long-lived refresh token for the subject email
func (s *TokenService) CreateRefreshToken(email string) (string, error) {
	return s.sign(email, ScopeRefresh, s.refreshTTL)
}

// CreateEmailToken issues a confirmation-link token for the subject email
func (s *TokenService) CreateEmailToken(email string) (string, error) {
	return s.sign(email, ScopeEmail, s.emailTTL)
}

// CreateResetPasswordToken issues a reset-password token for the subject email
func (s *TokenService) CreateResetPasswordToken(email string) (string, error) {
	return s.sign(email, ScopeResetPassword, s.emailTTL)
}

// DecodeAccessToken verifies an access token and returns its subject email
func (s *TokenService) DecodeAccessToken(token string) (string, error) {
	return s.decode(token, ScopeAccess)
}

// DecodeRefreshToken verifies a refresh token and returns its subject email.
// Fails with ErrInvalidTokenScope when the token belongs to another family,
// ErrTokenExpired past expiry, ErrInvalidToken otherwise.
func (s *TokenService) DecodeRefreshToken(token string) (string, error) {
	return s.decode(token, ScopeRefresh)
}

// EmailFromToken verifies an email-scoped token and returns its subject email
func (s *TokenService) EmailFromToken(token string) (string, error) {
	return s.decode(token, ScopeEmail)
}

// VerifyResetPasswordToken verifies a reset token. It never returns an error:
// any invalid token yields ok=false and the caller decides to respond 400.
func (s *TokenService) VerifyResetPasswordToken(token string) (string, bool) {
	email, err := s.decode(token, ScopeResetPassword)
	if err != nil {
		return "", false
	}
	return email, true
}

func (s *TokenService) sign(email, scope string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) decode(tokenString, wantScope string) (string, error) {
	now := s.now()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return "", apperrors.ErrInvalidToken
	}
	if claims.Scope != wantScope {
		return "", apperrors.ErrInvalidTokenScope
	}
	if claims.Subject == "" {
		return "", apperrors.ErrInvalidToken
	}

	return claims.Subject, nil
}
