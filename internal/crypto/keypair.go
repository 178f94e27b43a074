package crypto

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

const (
	pemBlockPublicKeyName  = "PUBLIC KEY"
	pemBlockPrivateKeyName = "RSA PRIVATE KEY"
)

var ErrUnsupportedKeySize = errors.New("unsupported key size: valid sizes are 2048 and 4096")

// KeySize is the RSA modulus length in bits.
type KeySize int

const (
	KeySize2048 KeySize = 2048
	KeySize4096 KeySize = 4096

	DefaultKeySize = KeySize4096
)

// Valid reports whether k is one of the supported sizes.
func (k KeySize) Valid() bool {
	return k == KeySize2048 || k == KeySize4096
}

// ParseKeySize maps a raw bit count to a KeySize. Zero selects DefaultKeySize.
func ParseKeySize(bits int) (KeySize, error) {
	if bits == 0 {
		return DefaultKeySize, nil
	}
	k := KeySize(bits)
	if !k.Valid() {
		return 0, ErrUnsupportedKeySize
	}
	return k, nil
}

// KeyPair is a generated RSA key pair.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
	Size    KeySize
}

// PrivateKeyPEM encodes the private key as a PKCS#1 PEM block.
func (kp *KeyPair) PrivateKeyPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  pemBlockPrivateKeyName,
		Bytes: x509.MarshalPKCS1PrivateKey(kp.Private),
	})
}

// PublicKeyPEM encodes the public key as a PKIX PEM block.
func (kp *KeyPair) PublicKeyPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(kp.Public)
	if err != nil {
		return nil, fmt.Errorf("marshalling public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  pemBlockPublicKeyName,
		Bytes: der,
	}), nil
}

// AuthorizedKey encodes the public key in OpenSSH authorized_keys format.
func (kp *KeyPair) AuthorizedKey() (string, error) {
	pub, err := ssh.NewPublicKey(kp.Public)
	if err != nil {
		return "", fmt.Errorf("converting public key: %w", err)
	}
	return string(ssh.MarshalAuthorizedKey(pub)), nil
}

// KeyPairResult carries the outcome of an asynchronous key-pair generation.
// Exactly one of KeyPair and Err is set.
type KeyPairResult struct {
	KeyPair *KeyPair
	Err     error
}

// KeyPairGenerator produces RSA key pairs seeded from a shared Source.
type KeyPairGenerator struct {
	src *Source
}

// NewKeyPairGenerator creates a KeyPairGenerator drawing from src.
func NewKeyPairGenerator(src *Source) *KeyPairGenerator {
	return &KeyPairGenerator{src: src}
}

// Generate blocks until a key pair of the given size is produced.
func (g *KeyPairGenerator) Generate(ctx context.Context, size KeySize) (*KeyPair, error) {
	select {
	case res := <-g.GenerateAsync(ctx, size):
		return res.KeyPair, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GenerateAsync starts key generation on its own goroutine and returns
// immediately. The returned channel yields exactly one result and is then closed.
//
// RSA generation cannot be interrupted once started; a cancelled ctx only
// discards the result.
func (g *KeyPairGenerator) GenerateAsync(ctx context.Context, size KeySize) <-chan KeyPairResult {
	out := make(chan KeyPairResult, 1)

	if !size.Valid() {
		out <- KeyPairResult{Err: ErrUnsupportedKeySize}
		close(out)
		return out
	}

	go func() {
		defer close(out)

		if err := ctx.Err(); err != nil {
			out <- KeyPairResult{Err: err}
			return
		}

		priv, err := rsa.GenerateKey(g.src, int(size))
		if err != nil {
			out <- KeyPairResult{Err: fmt.Errorf("generating %d-bit RSA key: %w", size, err)}
			return
		}
		if err := ctx.Err(); err != nil {
			out <- KeyPairResult{Err: err}
			return
		}

		out <- KeyPairResult{KeyPair: &KeyPair{
			Private: priv,
			Public:  &priv.PublicKey,
			Size:    size,
		}}
	}()

	return out
}
