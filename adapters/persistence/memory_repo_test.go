package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sencity/user-service/internal/domain/userprofile"
)

func newProfile(email string) *userprofile.UserProfile {
	return &userprofile.UserProfile{
		ID:        uuid.New(),
		Name:      "Choi",
		Telphone:  "01000000000",
		Email:     email,
		Password:  "pw",
		CreatedAt: time.Now().UTC(),
	}
}

func TestInMemoryRepo_CreateAndExists(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserProfileRepo()

	require.NoError(t, repo.Create(ctx, newProfile("a@example.com")))

	exists, err := repo.ExistsByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "A@example.com")
	require.NoError(t, err)
	assert.False(t, exists, "lookup is case-sensitive")
}

func TestInMemoryRepo_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserProfileRepo()

	require.NoError(t, repo.Create(ctx, newProfile("a@example.com")))
	err := repo.Create(ctx, newProfile("a@example.com"))

	assert.ErrorIs(t, err, userprofile.ErrEmailTaken)
	assert.Equal(t, 1, repo.Count())
}

func TestInMemoryRepo_ConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserProfileRepo()

	const racers = 16
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, newProfile("race@example.com"))
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, userprofile.ErrEmailTaken)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, repo.Count())
}

func TestInMemoryRepo_ConcurrentDistinctEmails(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserProfileRepo()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Create(ctx, newProfile(fmt.Sprintf("user%d@example.com", i))))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, repo.Count())
}

func TestInMemoryRepo_StoresCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserProfileRepo()
	addr := "Seoul"
	p := newProfile("copy@example.com")
	p.Address = &addr

	require.NoError(t, repo.Create(ctx, p))
	addr = "Busan"
	p.Name = "changed"

	stored, ok := repo.FindByEmail("copy@example.com")
	require.True(t, ok)
	assert.Equal(t, "Choi", stored.Name)
	assert.Equal(t, "Seoul", *stored.Address)
}
