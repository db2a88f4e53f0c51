package persistence

import (
	"context"
	"sync"

	"github.com/sencity/user-service/internal/domain/userprofile"
)

// InMemoryUserProfileRepo keeps profiles in a map keyed by email. The
// mutex gives Create the same all-or-nothing uniqueness guarantee as the
// database constraint.
type InMemoryUserProfileRepo struct {
	mu      sync.RWMutex
	byEmail map[string]userprofile.UserProfile
}

func NewInMemoryUserProfileRepo() *InMemoryUserProfileRepo {
	return &InMemoryUserProfileRepo{byEmail: make(map[string]userprofile.UserProfile)}
}

func (r *InMemoryUserProfileRepo) Create(ctx context.Context, p *userprofile.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[p.Email]; ok {
		return userprofile.ErrEmailTaken
	}
	stored := *p
	if p.Address != nil {
		addr := *p.Address
		stored.Address = &addr
	}
	r.byEmail[p.Email] = stored
	return nil
}

func (r *InMemoryUserProfileRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *InMemoryUserProfileRepo) FindByEmail(email string) (userprofile.UserProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byEmail[email]
	return p, ok
}

func (r *InMemoryUserProfileRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}
