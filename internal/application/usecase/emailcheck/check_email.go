package emailcheck

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/apperror"
	"github.com/sencity/user-service/pkg/logger"
)

type CheckEmailUseCase struct {
	repo   userprofile.Repository
	logger logger.Logger
}

func NewCheckEmailUseCase(repo userprofile.Repository, log logger.Logger) *CheckEmailUseCase {
	return &CheckEmailUseCase{repo: repo, logger: log}
}

type CheckEmailInput struct {
	Email string
}

type CheckEmailOutput struct {
	IsDuplicate bool
}

var tracer = otel.Tracer("emailcheck_usecase")

// Execute reports whether a profile with exactly this email is stored.
func (uc *CheckEmailUseCase) Execute(ctx context.Context, input CheckEmailInput) (*CheckEmailOutput, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()

	if input.Email == "" {
		err := apperror.NewMissingParam(userprofile.FieldEmail)
		span.RecordError(err)
		return nil, err
	}

	exists, err := uc.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		uc.logger.Error("Failed to check email", err)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("is_duplicate", exists))
	return &CheckEmailOutput{IsDuplicate: exists}, nil
}
