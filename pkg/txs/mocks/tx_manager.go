package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type TxManager struct {
	mock.Mock
}

func (m *TxManager) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error {
	args := m.Called(ctx, txFunc)
	return args.Error(0)
}

func NewTxManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *TxManager {
	m := &TxManager{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
