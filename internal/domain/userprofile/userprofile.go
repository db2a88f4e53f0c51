package userprofile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MaxNameLength     = 100
	MaxTelphoneLength = 20
	MaxEmailLength    = 254
	MaxPasswordLength = 128
)

type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Telphone  string    `json:"telphone"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrEmailTaken is returned by Repository.Create when the email is already stored.
var ErrEmailTaken = errors.New("user profile with this email already exists")

// Repository is the storage a profile is written to. Create must be atomic
// and must reject a second profile with the same email.
type Repository interface {
	Create(ctx context.Context, p *UserProfile) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
