package mocks

import (
	"context"

	"fables-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock FableEventPublisher
type FableEventPublisher struct {
	mock.Mock
}

func (m *FableEventPublisher) PublishFableEvent(ctx context.Context, payload models.FableEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
