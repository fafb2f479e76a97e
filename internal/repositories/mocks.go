package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/myspares/catalog-platform/internal/models"
	"github.com/stretchr/testify/mock"
)

// Testify mocks for the repository interfaces, shared by the service,
// reconciler, and janitor tests.

type MockBrandRepository struct {
	mock.Mock
}

func NewMockBrandRepository() *MockBrandRepository {
	return &MockBrandRepository{}
}

func (m *MockBrandRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	args := m.Called(ctx, brand)

	return args.Error(0)
}

func (m *MockBrandRepository) GetBrandByCode(ctx context.Context, code string) (*models.Brand, error) {
	args := m.Called(ctx, code)
	if brand, ok := args.Get(0).(*models.Brand); ok {
		return brand, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockBrandRepository) GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	args := m.Called(ctx, id)
	if brand, ok := args.Get(0).(*models.Brand); ok {
		return brand, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockBrandRepository) ListBrands(ctx context.Context) ([]*models.Brand, error) {
	args := m.Called(ctx)
	if brands, ok := args.Get(0).([]*models.Brand); ok {
		return brands, args.Error(1)
	}

	return nil, args.Error(1)
}

type MockBikeModelRepository struct {
	mock.Mock
}

func NewMockBikeModelRepository() *MockBikeModelRepository {
	return &MockBikeModelRepository{}
}

func (m *MockBikeModelRepository) CreateBikeModel(ctx context.Context, model *models.BikeModel) error {
	args := m.Called(ctx, model)

	return args.Error(0)
}

func (m *MockBikeModelRepository) GetModelByCode(ctx context.Context, code string) (*models.BikeModel, error) {
	args := m.Called(ctx, code)
	if model, ok := args.Get(0).(*models.BikeModel); ok {
		return model, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockBikeModelRepository) GetModelByID(ctx context.Context, id uuid.UUID) (*models.BikeModel, error) {
	args := m.Called(ctx, id)
	if model, ok := args.Get(0).(*models.BikeModel); ok {
		return model, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockBikeModelRepository) ListModelsByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BikeModel, error) {
	args := m.Called(ctx, brandID)
	if bikeModels, ok := args.Get(0).([]*models.BikeModel); ok {
		return bikeModels, args.Error(1)
	}

	return nil, args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{}
}

func (m *MockCategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)

	return args.Error(0)
}

func (m *MockCategoryRepository) GetCategoryByCode(ctx context.Context, code string) (*models.Category, error) {
	args := m.Called(ctx, code)
	if category, ok := args.Get(0).(*models.Category); ok {
		return category, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockCategoryRepository) ListCategoriesByModel(ctx context.Context, modelID uuid.UUID) ([]*models.Category, error) {
	args := m.Called(ctx, modelID)
	if categories, ok := args.Get(0).([]*models.Category); ok {
		return categories, args.Error(1)
	}

	return nil, args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{}
}

func (m *MockProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)

	return args.Error(0)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	args := m.Called(ctx, code)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockProductRepository) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, page, size int) ([]*models.Product, int, error) {
	args := m.Called(ctx, categoryID, page, size)
	if products, ok := args.Get(0).([]*models.Product); ok {
		return products, args.Int(1), args.Error(2)
	}

	return nil, args.Int(1), args.Error(2)
}

func (m *MockProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)

	return args.Error(0)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, code string, delta int) (int, error) {
	args := m.Called(ctx, code, delta)

	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{}
}

func (m *MockCartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)

	return args.Error(0)
}

func (m *MockCartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockCartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)

	return args.Error(0)
}

func (m *MockCartRepository) ListCartsWithProduct(ctx context.Context, productID uuid.UUID) ([]*models.Cart, error) {
	args := m.Called(ctx, productID)
	if carts, ok := args.Get(0).([]*models.Cart); ok {
		return carts, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockCartRepository) ListCarts(ctx context.Context) ([]*models.Cart, error) {
	args := m.Called(ctx)
	if carts, ok := args.Get(0).([]*models.Cart); ok {
		return carts, args.Error(1)
	}

	return nil, args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Insert(ctx context.Context, record *models.AuditRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *MockAuditRepository) Query(ctx context.Context, query *models.AuditQuery) ([]*models.AuditRecord, int, error) {
	args := m.Called(ctx, query)
	if records, ok := args.Get(0).([]*models.AuditRecord); ok {
		return records, args.Int(1), args.Error(2)
	}

	return nil, args.Int(1), args.Error(2)
}

func (m *MockAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)

	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) CreatePendingRegistration(ctx context.Context, pending *models.PendingRegistration) error {
	args := m.Called(ctx, pending)

	return args.Error(0)
}

func (m *MockUserRepository) GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error) {
	args := m.Called(ctx, email)
	if pending, ok := args.Get(0).(*models.PendingRegistration); ok {
		return pending, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) DeletePendingRegistration(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockUserRepository) DeletePendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) RevokeToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)

	return args.Error(0)
}

func (m *MockUserRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)

	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) DeleteRevokedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)

	return args.Get(0).(int64), args.Error(1)
}

type MockRateLimitRepository struct {
	mock.Mock
}

func NewMockRateLimitRepository() *MockRateLimitRepository {
	return &MockRateLimitRepository{}
}

func (m *MockRateLimitRepository) CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error) {
	args := m.Called(ctx, username)

	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}
