package mocks

import (
	"context"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/stretchr/testify/mock"
)

type WebhookSender struct {
	mock.Mock
}

func (m *WebhookSender) Send(ctx context.Context, webhookURL string, payload *models.Payload) error {
	args := m.Called(ctx, webhookURL, payload)
	return args.Error(0)
}

func NewWebhookSender(t interface {
	mock.TestingT
	Cleanup(func())
}) *WebhookSender {
	m := &WebhookSender{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

type DeadLetterSink struct {
	mock.Mock
}

func (m *DeadLetterSink) Publish(ctx context.Context, letter *models.DeadLetter) error {
	args := m.Called(ctx, letter)
	return args.Error(0)
}

func (m *DeadLetterSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

func NewDeadLetterSink(t interface {
	mock.TestingT
	Cleanup(func())
}) *DeadLetterSink {
	m := &DeadLetterSink{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
