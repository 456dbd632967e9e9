package jwt

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestService(t *testing.T, expirationMins int) *Service {
	t.Helper()
	dir := t.TempDir()
	privPath := filepath.Join(dir, "jwt_private.pem")
	pubPath := filepath.Join(dir, "jwt_public.pem")

	if err := GenerateKeyPair(privPath, pubPath); err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}

	svc, err := NewService(Config{
		PrivateKeyPath: privPath,
		Issuer:         "nutrilife-campus-test",
		ExpirationMins: expirationMins,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService(t, 60)

	token, err := svc.GenerateAccessToken("user-1", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("expected user ID user-1, got %s", claims.UserID)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("expected email admin@example.com, got %s", claims.Email)
	}
	if !claims.IsAdmin() {
		t.Error("expected admin claims")
	}
	if claims.Issuer != "nutrilife-campus-test" {
		t.Errorf("expected issuer nutrilife-campus-test, got %s", claims.Issuer)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(t, 60)
	svc.expiration = -time.Minute

	token, err := svc.GenerateAccessToken("user-1", "user@example.com", "user")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	_, err = svc.ValidateAccessToken(token)
	if err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateWrongKey(t *testing.T) {
	signer := newTestService(t, 60)
	verifier := newTestService(t, 60)

	token, err := signer.GenerateAccessToken("user-1", "user@example.com", "user")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	_, err = verifier.ValidateAccessToken(token)
	if err != ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	svc := newTestService(t, 60)

	_, err := svc.ValidateAccessToken("not-a-token")
	if err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGenerateWithoutPrivateKey(t *testing.T) {
	dir := t.TempDir()
	privPath := filepath.Join(dir, "jwt_private.pem")
	pubPath := filepath.Join(dir, "jwt_public.pem")
	if err := GenerateKeyPair(privPath, pubPath); err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}

	svc, err := NewService(Config{PublicKeyPath: pubPath})
	if err != nil {
		t.Fatalf("failed to create validation-only service: %v", err)
	}

	_, err = svc.GenerateAccessToken("user-1", "", "user")
	if err != ErrNoSigningKey {
		t.Errorf("expected ErrNoSigningKey, got %v", err)
	}
}
