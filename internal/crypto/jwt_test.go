package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testClientID = "5f0c7b8e-3f4a-4b8e-9a57-0c2d9c1e6f10"

func signClaims(t *testing.T, claims ClientClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}
	return s
}

func TestIssueAndParseClientToken(t *testing.T) {
	token, err := IssueClientToken(testClientID, "billing-worker", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("IssueClientToken() unexpected error: %v", err)
	}

	claims, err := ParseClientToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseClientToken() unexpected error: %v", err)
	}
	if claims.Subject != testClientID {
		t.Errorf("Subject = %q, want %q", claims.Subject, testClientID)
	}
	if claims.ClientName != "billing-worker" {
		t.Errorf("ClientName = %q, want %q", claims.ClientName, "billing-worker")
	}
}

func TestParseClientTokenRejects(t *testing.T) {
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   testClientID,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	tests := []struct {
		name   string
		mutate func(c *jwt.RegisteredClaims)
		secret string
	}{
		{name: "wrong secret", mutate: func(*jwt.RegisteredClaims) {}, secret: "other-secret"},
		{name: "wrong issuer", mutate: func(c *jwt.RegisteredClaims) { c.Issuer = "vaultpass" }, secret: "test-secret"},
		{name: "wrong audience", mutate: func(c *jwt.RegisteredClaims) { c.Audience = jwt.ClaimStrings{"other"} }, secret: "test-secret"},
		{name: "expired", mutate: func(c *jwt.RegisteredClaims) { c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute)) }, secret: "test-secret"},
		{name: "missing subject", mutate: func(c *jwt.RegisteredClaims) { c.Subject = "" }, secret: "test-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := valid
			tt.mutate(&rc)
			token := signClaims(t, ClientClaims{RegisteredClaims: rc}, tt.secret)

			if _, err := ParseClientToken(token, "test-secret"); err != ErrInvalidToken {
				t.Errorf("ParseClientToken() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestParseClientTokenGarbage(t *testing.T) {
	if _, err := ParseClientToken("not.a.jwt", "test-secret"); err != ErrInvalidToken {
		t.Errorf("ParseClientToken() error = %v, want %v", err, ErrInvalidToken)
	}
}
