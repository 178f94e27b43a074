package crypto

import (
	"errors"
	"fmt"
)

const (
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	numberChars    = "0123456789"
	symbolChars    = "`~!@#$%^&*()-_=+[{]}\\|;:'\",<.>/?"

	// StandardSymbols is the default alphabet for local password generation.
	StandardSymbols = lowercaseChars + uppercaseChars + numberChars + symbolChars

	MinLength = 1
	MaxLength = 4096
)

var (
	ErrInvalidLength    = fmt.Errorf("invalid length: valid range is %d to %d", MinLength, MaxLength)
	ErrEmptyAlphabet    = errors.New("alphabet must contain at least one symbol")
	ErrNoCharacterTypes = errors.New("at least one character type must be selected")
)

// PasswordSpec describes a single password request.
type PasswordSpec struct {
	Length   int
	Alphabet []rune
}

// AlphabetOptions builds an alphabet from character classes.
type AlphabetOptions struct {
	Uppercase bool
	Lowercase bool
	Numbers   bool
	Symbols   bool
}

// DefaultAlphabetOptions enables every character class.
func DefaultAlphabetOptions() AlphabetOptions {
	return AlphabetOptions{
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// Alphabet returns the concatenation of the enabled character classes.
func (o AlphabetOptions) Alphabet() ([]rune, error) {
	var pool string
	if o.Lowercase {
		pool += lowercaseChars
	}
	if o.Uppercase {
		pool += uppercaseChars
	}
	if o.Numbers {
		pool += numberChars
	}
	if o.Symbols {
		pool += symbolChars
	}
	if pool == "" {
		return nil, ErrNoCharacterTypes
	}
	return []rune(pool), nil
}

// ValidateLength reports ErrInvalidLength when n is outside [MinLength, MaxLength].
func ValidateLength(n int) error {
	if n < MinLength || n > MaxLength {
		return ErrInvalidLength
	}
	return nil
}

// GeneratePassword draws spec.Length symbols uniformly from spec.Alphabet.
// A nil alphabet falls back to StandardSymbols; a non-nil empty one is rejected.
func GeneratePassword(src *Source, spec PasswordSpec) (string, error) {
	if err := ValidateLength(spec.Length); err != nil {
		return "", err
	}

	alphabet := spec.Alphabet
	if alphabet == nil {
		alphabet = []rune(StandardSymbols)
	}
	if len(alphabet) == 0 {
		return "", ErrEmptyAlphabet
	}

	result := make([]rune, spec.Length)
	for i := range result {
		idx, err := src.Intn(len(alphabet))
		if err != nil {
			return "", fmt.Errorf("drawing symbol: %w", err)
		}
		result[i] = alphabet[idx]
	}

	return string(result), nil
}
