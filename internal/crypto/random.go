package crypto

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"sync"
)

var ErrInvalidBound = errors.New("random bound must be positive")

// Source is the process-wide CSPRNG handle shared by all generators.
// Reads are serialized so a single Source is safe for concurrent use,
// including with readers that are not goroutine-safe themselves.
type Source struct {
	mu sync.Mutex
	r  io.Reader
}

// NewSource wraps r. A nil reader falls back to crypto/rand.Reader.
func NewSource(r io.Reader) *Source {
	if r == nil {
		r = rand.Reader
	}
	return &Source{r: r}
}

// DefaultSource returns a Source backed by the operating system CSPRNG.
func DefaultSource() *Source {
	return NewSource(rand.Reader)
}

// Read fills p with random bytes.
func (s *Source) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.ReadFull(s.r, p)
}

// Intn returns a uniformly distributed integer in [0, n).
func (s *Source) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidBound
	}
	v, err := rand.Int(s, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
