package signup

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sencity/user-service/internal/application/service"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/apperror"
	"github.com/sencity/user-service/pkg/logger"
	"github.com/sencity/user-service/pkg/password"
)

const msgPasswordTooLongToHash = "Ensure this field has no more than 72 bytes."

type SignUpUseCase struct {
	repo      userprofile.Repository
	hasher    password.Hasher
	publisher service.EventPublisher
	logger    logger.Logger

	publishing sync.WaitGroup
}

func NewSignUpUseCase(repo userprofile.Repository, hasher password.Hasher, publisher service.EventPublisher, log logger.Logger) *SignUpUseCase {
	if hasher == nil {
		hasher = password.PlainHasher{}
	}
	return &SignUpUseCase{
		repo:      repo,
		hasher:    hasher,
		publisher: publisher,
		logger:    log,
	}
}

type SignUpInput struct {
	Submission userprofile.Submission
}

type SignUpOutput struct {
	ProfileID uuid.UUID
}

var tracer = otel.Tracer("signup_usecase")

// Execute validates the submission and stores exactly one profile, or
// nothing at all. A duplicate email is reported as an email field error.
func (uc *SignUpUseCase) Execute(ctx context.Context, input SignUpInput) (*SignUpOutput, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()

	sub := input.Submission
	if errs := sub.Validate(); !errs.Empty() {
		err := apperror.NewValidation(errs)
		span.RecordError(err)
		return nil, err
	}

	storedPassword, err := uc.hasher.Hash(sub.Password.Value)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			err = apperror.NewValidation(userprofile.FieldErrors{userprofile.FieldPassword: {msgPasswordTooLongToHash}})
		} else {
			uc.logger.Error("Failed to hash password", err)
			err = apperror.NewInternal("failed to hash password", err)
		}
		span.RecordError(err)
		return nil, err
	}

	p := &userprofile.UserProfile{
		ID:        uuid.New(),
		Name:      sub.Name.Value,
		Telphone:  sub.Telphone.Value,
		Email:     sub.Email.Value,
		Password:  storedPassword,
		Address:   sub.AddressValue(),
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		if errors.Is(err, userprofile.ErrEmailTaken) {
			uc.logger.Info("Signup rejected, email already registered", zap.String("email", p.Email))
			err = apperror.NewValidation(userprofile.FieldErrors{userprofile.FieldEmail: {userprofile.MsgEmailTaken}})
		}
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("profile_id", p.ID.String()))
	uc.logger.Info("User profile created", zap.String("profile_id", p.ID.String()))

	if uc.publisher != nil {
		evt := userprofile.NewRegisteredEvent(p)
		uc.publishing.Add(1)
		go func() {
			defer uc.publishing.Done()
			if err := uc.publisher.PublishUserRegistered(context.Background(), evt); err != nil {
				uc.logger.Error("Failed to publish user registered event", err, zap.String("profile_id", evt.ProfileID.String()))
			}
		}()
	}

	return &SignUpOutput{ProfileID: p.ID}, nil
}

// Wait blocks until every event publish started by Execute has finished.
// Call it before closing the publisher.
func (uc *SignUpUseCase) Wait() {
	uc.publishing.Wait()
}
