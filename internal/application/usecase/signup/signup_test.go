package signup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sencity/user-service/adapters/persistence"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/apperror"
	"github.com/sencity/user-service/pkg/logger"
	"github.com/sencity/user-service/pkg/password"
)

type recordingPublisher struct {
	events chan userprofile.RegisteredEvent
	err    error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan userprofile.RegisteredEvent, 8)}
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, evt userprofile.RegisteredEvent) error {
	p.events <- evt
	return p.err
}

type failingRepo struct{ err error }

func (r failingRepo) Create(context.Context, *userprofile.UserProfile) error { return r.err }

func (r failingRepo) ExistsByEmail(context.Context, string) (bool, error) { return false, r.err }

func submission(email string) userprofile.Submission {
	return userprofile.Submission{
		Name:     userprofile.Text("Kim"),
		Telphone: userprofile.Text("01012345678"),
		Email:    userprofile.Text(email),
		Password: userprofile.Text("plain-pw"),
		Address:  userprofile.Text("Seoul"),
	}
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.ErrorIs(t, err, apperror.ErrValidation)
	return appErr.Fields
}

func TestSignUp_Success(t *testing.T) {
	repo := persistence.NewInMemoryUserProfileRepo()
	pub := newRecordingPublisher()
	uc := NewSignUpUseCase(repo, password.PlainHasher{}, pub, logger.NewNopLogger())

	out, err := uc.Execute(context.Background(), SignUpInput{Submission: submission("a@example.com")})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.Count())

	stored, ok := repo.FindByEmail("a@example.com")
	require.True(t, ok)
	assert.Equal(t, out.ProfileID, stored.ID)
	assert.Equal(t, "Kim", stored.Name)
	assert.Equal(t, "01012345678", stored.Telphone)
	assert.Equal(t, "plain-pw", stored.Password)
	require.NotNil(t, stored.Address)
	assert.Equal(t, "Seoul", *stored.Address)

	select {
	case evt := <-pub.events:
		assert.Equal(t, out.ProfileID, evt.ProfileID)
		assert.Equal(t, userprofile.EventTypeRegistered, evt.EventType)
	case <-time.After(time.Second):
		t.Fatal("registered event was not published")
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	repo := persistence.NewInMemoryUserProfileRepo()
	uc := NewSignUpUseCase(repo, nil, nil, logger.NewNopLogger())
	ctx := context.Background()

	_, err := uc.Execute(ctx, SignUpInput{Submission: submission("a@example.com")})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, SignUpInput{Submission: submission("a@example.com")})

	assert.Equal(t, map[string][]string{"email": {userprofile.MsgEmailTaken}}, fieldErrors(t, err))
	assert.Equal(t, 1, repo.Count())
}

func TestSignUp_MissingName(t *testing.T) {
	repo := persistence.NewInMemoryUserProfileRepo()
	uc := NewSignUpUseCase(repo, nil, nil, logger.NewNopLogger())
	sub := submission("a@example.com")
	sub.Name = userprofile.Field{}

	_, err := uc.Execute(context.Background(), SignUpInput{Submission: sub})

	assert.Equal(t, []string{userprofile.MsgRequired}, fieldErrors(t, err)["name"])
	assert.Equal(t, 0, repo.Count())
}

func TestSignUp_InvalidEmail(t *testing.T) {
	repo := persistence.NewInMemoryUserProfileRepo()
	uc := NewSignUpUseCase(repo, nil, nil, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), SignUpInput{Submission: submission("not-an-email")})

	assert.Equal(t, []string{userprofile.MsgInvalidEmail}, fieldErrors(t, err)["email"])
	assert.Equal(t, 0, repo.Count())
}

func TestSignUp_ConcurrentSameEmail(t *testing.T) {
	repo := persistence.NewInMemoryUserProfileRepo()
	uc := NewSignUpUseCase(repo, nil, nil, logger.NewNopLogger())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = uc.Execute(context.Background(), SignUpInput{Submission: submission("same@example.com")})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, []string{userprofile.MsgEmailTaken}, fieldErrors(t, err)["email"])
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, repo.Count())
}

func TestSignUp_HashesWhenEnabled(t *testing.T) {
	repo := persistence.NewInMemoryUserProfileRepo()
	uc := NewSignUpUseCase(repo, password.NewBcryptHasher(bcrypt.MinCost), nil, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), SignUpInput{Submission: submission("h@example.com")})
	require.NoError(t, err)

	stored, _ := repo.FindByEmail("h@example.com")
	assert.NotEqual(t, "plain-pw", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("plain-pw")))
}

func TestSignUp_PasswordTooLongForBcrypt(t *testing.T) {
	repo := persistence.NewInMemoryUserProfileRepo()
	uc := NewSignUpUseCase(repo, password.NewBcryptHasher(bcrypt.MinCost), nil, logger.NewNopLogger())
	sub := submission("long@example.com")
	sub.Password = userprofile.Text(strings.Repeat("x", 100))

	_, err := uc.Execute(context.Background(), SignUpInput{Submission: sub})

	assert.Contains(t, fieldErrors(t, err), "password")
	assert.Equal(t, 0, repo.Count())
}

func TestSignUp_StorageFailure(t *testing.T) {
	storageErr := apperror.NewInternal("failed to save user profile", errors.New("connection refused"))
	pub := newRecordingPublisher()
	uc := NewSignUpUseCase(failingRepo{err: storageErr}, nil, pub, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), SignUpInput{Submission: submission("a@example.com")})

	assert.ErrorIs(t, err, apperror.ErrInternal)
	assert.Empty(t, pub.events)
}

func TestSignUp_PublishFailureDoesNotFailSignup(t *testing.T) {
	repo := persistence.NewInMemoryUserProfileRepo()
	pub := newRecordingPublisher()
	pub.err = errors.New("broker down")
	uc := NewSignUpUseCase(repo, nil, pub, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), SignUpInput{Submission: submission("a@example.com")})

	require.NoError(t, err)
	select {
	case <-pub.events:
	case <-time.After(time.Second):
		t.Fatal("publish was not attempted")
	}
	assert.Equal(t, 1, repo.Count())
}

type blockingPublisher struct {
	release chan struct{}
	done    atomic.Bool
}

func (p *blockingPublisher) PublishUserRegistered(context.Context, userprofile.RegisteredEvent) error {
	<-p.release
	p.done.Store(true)
	return nil
}

func TestSignUp_WaitDrainsPendingPublishes(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	uc := NewSignUpUseCase(persistence.NewInMemoryUserProfileRepo(), nil, pub, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), SignUpInput{Submission: submission("a@example.com")})
	require.NoError(t, err)

	waited := make(chan struct{})
	go func() {
		uc.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned before the publish finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(pub.release)

	select {
	case <-waited:
		assert.True(t, pub.done.Load())
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the publish finished")
	}
}
