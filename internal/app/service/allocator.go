package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/linklite/linklite/internal/app/repository"
)

// codeAlphabet contains every character a short code may be built from.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// DefaultCodeLength is the length of generated codes. 62^6 candidates
	// keeps the collision probability negligible at this scale.
	DefaultCodeLength = 6
	// maxAllocAttempts bounds random retries so a pathological store never
	// turns allocation into an infinite loop.
	maxAllocAttempts = 5

	// expectedCodes / filterFPRate size the issued-code bloom filter.
	expectedCodes = 1_000_000
	filterFPRate  = 0.001
)

// codePattern is the accepted format for custom codes, applied uniformly to
// every call site.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,8}$`)

var (
	// ErrInvalidCode signals a custom code outside the accepted format.
	ErrInvalidCode = errors.New("code must be 3-8 characters (letters and numbers only)")
	// ErrCodeTaken signals that the requested code has already been issued.
	ErrCodeTaken = errors.New("code is already in use")
	// ErrAllocationExhausted signals that every random attempt collided.
	ErrAllocationExhausted = errors.New("could not allocate a unique code")
)

// CodeGenerator produces candidate short codes. Pluggable so the uniform
// random generator can be swapped (sequential, hash-based) without touching
// the allocator's retry logic.
type CodeGenerator interface {
	Next() (string, error)
}

type randomGenerator struct {
	length int
}

// NewRandomGenerator returns a CodeGenerator drawing uniformly from the
// alphanumeric alphabet using crypto/rand.
func NewRandomGenerator(length int) CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &randomGenerator{length: length}
}

func (g *randomGenerator) Next() (string, error) {
	b := make([]byte, g.length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// Allocator hands out unique short codes. It is query-only: the caller
// persists the record, and the unique index on links.code remains the
// authoritative defense against the check/insert race.
//
// Codes ever observed by this process are remembered in a bloom filter, so a
// code freed by a hard delete is not reissued. The filter has no false
// negatives; a false positive merely burns one retry (or rejects a custom
// code that was never used, at ~0.1% probability).
type Allocator struct {
	repo repository.LinkRepository
	gen  CodeGenerator

	mu   sync.Mutex
	seen *bloom.BloomFilter
}

// NewAllocator builds an allocator over the given repository and generator.
func NewAllocator(repo repository.LinkRepository, gen CodeGenerator) *Allocator {
	if gen == nil {
		gen = NewRandomGenerator(DefaultCodeLength)
	}
	return &Allocator{
		repo: repo,
		gen:  gen,
		seen: bloom.NewWithEstimates(expectedCodes, filterFPRate),
	}
}

// Seed loads every stored code into the issued-code filter. Called once at
// startup, before the server accepts requests.
func (a *Allocator) Seed(ctx context.Context) error {
	codes, err := a.repo.AllCodes(ctx)
	if err != nil {
		return fmt.Errorf("seed allocator: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, code := range codes {
		a.seen.AddString(code)
	}
	return nil
}

// MarkIssued records a code as issued. The caller invokes it after the store
// accepted the insert.
func (a *Allocator) MarkIssued(code string) {
	a.mu.Lock()
	a.seen.AddString(code)
	a.mu.Unlock()
}

// Allocate validates a requested custom code or draws random candidates until
// one is free, giving up after maxAllocAttempts collisions.
func (a *Allocator) Allocate(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		if !codePattern.MatchString(requested) {
			return "", ErrInvalidCode
		}
		taken, err := a.isTaken(ctx, requested)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrCodeTaken
		}
		return requested, nil
	}

	for i := 0; i < maxAllocAttempts; i++ {
		code, err := a.gen.Next()
		if err != nil {
			return "", err
		}
		taken, err := a.isTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrAllocationExhausted
}

func (a *Allocator) isTaken(ctx context.Context, code string) (bool, error) {
	a.mu.Lock()
	seen := a.seen.TestString(code)
	a.mu.Unlock()

	// Once seen, always taken: hard-deleted codes stay in the filter and
	// are never handed out again.
	if seen {
		return true, nil
	}

	// Filter-negative codes may still exist in the store (rows created by
	// another replica since Seed).
	exists, err := a.repo.ExistsByCode(ctx, code)
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	if exists {
		a.MarkIssued(code)
	}
	return exists, nil
}
