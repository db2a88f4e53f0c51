package service

import (
	"context"

	"github.com/sencity/user-service/internal/domain/userprofile"
)

type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, evt userprofile.RegisteredEvent) error
}
