package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrTooLong is returned when the input exceeds what the hasher can encode.
var ErrTooLong = errors.New("password exceeds 72 bytes")

type Hasher interface {
	Hash(plain string) (string, error)
	Compare(stored, plain string) bool
}

// PlainHasher keeps the password as submitted.
type PlainHasher struct{}

func (PlainHasher) Hash(plain string) (string, error) { return plain, nil }

func (PlainHasher) Compare(stored, plain string) bool { return stored == plain }

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	if len(plain) > 72 {
		return "", ErrTooLong
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("cannot hash password: %w", err)
	}
	return string(bytes), nil
}

func (h *BcryptHasher) Compare(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// New picks the bcrypt hasher when hashing is enabled.
func New(hashPasswords bool) Hasher {
	if hashPasswords {
		return NewBcryptHasher(bcrypt.DefaultCost)
	}
	return PlainHasher{}
}
