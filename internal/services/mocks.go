package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/myspares/catalog-platform/internal/models"
	"github.com/stretchr/testify/mock"
)

// Hand-rolled testify mocks for the service interfaces, used by the
// handler tests.

type MockCartService struct {
	mock.Mock
}

func NewMockCartService() *MockCartService {
	return &MockCartService{}
}

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, req)
	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID uuid.UUID, req *models.RemoveCartItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, req)
	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

func NewMockAuditService() *MockAuditService {
	return &MockAuditService{}
}

func (m *MockAuditService) Query(ctx context.Context, query *models.AuditQuery) (*models.PaginatedResponse, error) {
	args := m.Called(ctx, query)
	if result, ok := args.Get(0).(*models.PaginatedResponse); ok {
		return result, args.Error(1)
	}

	return nil, args.Error(1)
}
