package crypto

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"
)

func TestParseKeySize(t *testing.T) {
	tests := []struct {
		bits    int
		want    KeySize
		wantErr error
	}{
		{bits: 0, want: KeySize4096},
		{bits: 2048, want: KeySize2048},
		{bits: 4096, want: KeySize4096},
		{bits: 1024, wantErr: ErrUnsupportedKeySize},
		{bits: 3072, wantErr: ErrUnsupportedKeySize},
	}

	for _, tt := range tests {
		got, err := ParseKeySize(tt.bits)
		if err != tt.wantErr {
			t.Errorf("ParseKeySize(%d) error = %v, want %v", tt.bits, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKeySize(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}
}

func TestGenerateAsyncUnsupportedSize(t *testing.T) {
	gen := NewKeyPairGenerator(DefaultSource())

	res, ok := <-gen.GenerateAsync(context.Background(), KeySize(1024))
	if !ok {
		t.Fatal("expected a result before the channel closes")
	}
	if res.Err != ErrUnsupportedKeySize {
		t.Errorf("GenerateAsync() error = %v, want %v", res.Err, ErrUnsupportedKeySize)
	}
	if res.KeyPair != nil {
		t.Error("GenerateAsync() returned a key pair alongside an error")
	}
}

func TestGenerateAsyncDeliversOnce(t *testing.T) {
	gen := NewKeyPairGenerator(DefaultSource())
	ch := gen.GenerateAsync(context.Background(), KeySize2048)

	var results []KeyPairResult
	timeout := time.After(30 * time.Second)
	for done := false; !done; {
		select {
		case res, ok := <-ch:
			if !ok {
				done = true
				break
			}
			results = append(results, res)
		case <-timeout:
			t.Fatal("timed out waiting for key pair")
		}
	}

	if len(results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(results))
	}
	res := results[0]
	if res.Err != nil {
		t.Fatalf("GenerateAsync() unexpected error: %v", res.Err)
	}
	if res.KeyPair.Size != KeySize2048 {
		t.Errorf("Size = %d, want %d", res.KeyPair.Size, KeySize2048)
	}
	if bits := res.KeyPair.Public.N.BitLen(); bits != 2048 {
		t.Errorf("modulus = %d bits, want 2048", bits)
	}
	if err := res.KeyPair.Private.Validate(); err != nil {
		t.Errorf("private key failed validation: %v", err)
	}

	assertEncodings(t, res.KeyPair)
}

func TestGenerateCancelledContext(t *testing.T) {
	gen := NewKeyPairGenerator(DefaultSource())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	kp, err := gen.Generate(ctx, KeySize2048)
	if err != context.Canceled {
		t.Errorf("Generate() error = %v, want %v", err, context.Canceled)
	}
	if kp != nil {
		t.Error("Generate() returned a key pair for a cancelled context")
	}
}

func assertEncodings(t *testing.T, kp *KeyPair) {
	t.Helper()

	block, _ := pem.Decode(kp.PrivateKeyPEM())
	if block == nil || block.Type != pemBlockPrivateKeyName {
		t.Fatal("private key PEM did not decode")
	}
	if _, err := x509.ParsePKCS1PrivateKey(block.Bytes); err != nil {
		t.Errorf("ParsePKCS1PrivateKey() unexpected error: %v", err)
	}

	pubPEM, err := kp.PublicKeyPEM()
	if err != nil {
		t.Fatalf("PublicKeyPEM() unexpected error: %v", err)
	}
	block, _ = pem.Decode(pubPEM)
	if block == nil || block.Type != pemBlockPublicKeyName {
		t.Fatal("public key PEM did not decode")
	}
	if _, err := x509.ParsePKIXPublicKey(block.Bytes); err != nil {
		t.Errorf("ParsePKIXPublicKey() unexpected error: %v", err)
	}

	authorized, err := kp.AuthorizedKey()
	if err != nil {
		t.Fatalf("AuthorizedKey() unexpected error: %v", err)
	}
	if !strings.HasPrefix(authorized, "ssh-rsa ") {
		t.Errorf("AuthorizedKey() = %q, want ssh-rsa prefix", authorized)
	}
}
