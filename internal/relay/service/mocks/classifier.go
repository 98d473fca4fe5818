package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

type Classifier struct {
	mock.Mock
}

func (m *Classifier) Classify(ctx context.Context, event *models.Event) models.NotificationType {
	args := m.Called(ctx, event)
	return args.Get(0).(models.NotificationType)
}

func NewClassifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *Classifier {
	m := &Classifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
