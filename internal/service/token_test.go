package service

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/contactbook/backend/internal/errors"
)

func newTestTokenService() *TokenService {
	return NewTokenService("test-secret-key", 30*time.Minute, 7*24*time.Hour, 24*time.Hour)
}

func TestHashAndVerifyPassword(t *testing.T) {
	s := newTestTokenService()

	hash, err := s.HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if hash == "s3cret-pw" {
		t.Fatal("Expected hash to differ from plaintext")
	}

	if !s.VerifyPassword("s3cret-pw", hash) {
		t.Error("Expected matching password to verify")
	}
	if s.VerifyPassword("wrong-pw", hash) {
		t.Error("Expected non-matching password to fail verification")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	s := newTestTokenService()

	h1, err := s.HashPassword("same-input")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	h2, err := s.HashPassword("same-input")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Error("Expected two hashes of the same input to differ")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newTestTokenService()

	token, err := s.CreateAccessToken("ann@x.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	email, err := s.DecodeAccessToken(token)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if email != "ann@x.com" {
		t.Errorf("Expected subject ann@x.com, got %s", email)
	}
}

func TestTokenScopeSeparation(t *testing.T) {
	s := newTestTokenService()

	access, err := s.CreateAccessToken("ann@x.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	refresh, err := s.CreateRefreshToken("ann@x.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	emailTok, err := s.CreateEmailToken("ann@x.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// An access token must not decode as a refresh token, and vice versa
	if _, err := s.DecodeRefreshToken(access); !errors.Is(err, apperrors.ErrInvalidTokenScope) {
		t.Errorf("Expected ErrInvalidTokenScope decoding access token as refresh, got %v", err)
	}
	if _, err := s.DecodeAccessToken(refresh); !errors.Is(err, apperrors.ErrInvalidTokenScope) {
		t.Errorf("Expected ErrInvalidTokenScope decoding refresh token as access, got %v", err)
	}

	// A leaked confirmation link is not an API credential
	if _, err := s.DecodeAccessToken(emailTok); !errors.Is(err, apperrors.ErrInvalidTokenScope) {
		t.Errorf("Expected ErrInvalidTokenScope decoding email token as access, got %v", err)
	}
	if _, err := s.EmailFromToken(access); !errors.Is(err, apperrors.ErrInvalidTokenScope) {
		t.Errorf("Expected ErrInvalidTokenScope decoding access token as email, got %v", err)
	}
}

func TestExpiredTokenFails(t *testing.T) {
	s := newTestTokenService()

	token, err := s.CreateAccessToken("ann@x.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Move the clock past expiry
	s.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	if _, err := s.DecodeAccessToken(token); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestMalformedTokenFails(t *testing.T) {
	s := newTestTokenService()

	if _, err := s.DecodeRefreshToken("not-a-jwt"); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestBadSignatureFails(t *testing.T) {
	s := newTestTokenService()
	other := NewTokenService("different-secret", 30*time.Minute, 7*24*time.Hour, 24*time.Hour)

	token, err := other.CreateRefreshToken("ann@x.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := s.DecodeRefreshToken(token); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestVerifyResetPasswordTokenSentinel(t *testing.T) {
	s := newTestTokenService()

	token, err := s.CreateResetPasswordToken("ann@x.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	email, ok := s.VerifyResetPasswordToken(token)
	if !ok || email != "ann@x.com" {
		t.Errorf("Expected valid reset token to verify, got ok=%v email=%s", ok, email)
	}

	// Never raises for invalid input, only the ok sentinel
	if _, ok := s.VerifyResetPasswordToken("garbage"); ok {
		t.Error("Expected garbage reset token to fail verification")
	}

	// A reset token is scoped apart from the email-confirmation family
	emailTok, err := s.CreateEmailToken("ann@x.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := s.VerifyResetPasswordToken(emailTok); ok {
		t.Error("Expected email-scoped token to fail reset verification")
	}
}
