package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"minga/internal/model"
)

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Check(ctx context.Context) (model.HealthStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.HealthStatus), args.Error(1)
}
