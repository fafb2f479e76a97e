package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/myspares/catalog-platform/internal/cascade"
	appErrors "github.com/myspares/catalog-platform/internal/errors"
	"github.com/myspares/catalog-platform/internal/models"
	repository "github.com/myspares/catalog-platform/internal/repositories"
	service "github.com/myspares/catalog-platform/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubtreeDeleter struct {
	mock.Mock
}

func (m *MockSubtreeDeleter) DeleteSubtree(ctx context.Context, kind cascade.RootKind, rootID uuid.UUID) error {
	args := m.Called(ctx, kind, rootID)

	return args.Error(0)
}

type catalogMocks struct {
	brands     *repository.MockBrandRepository
	bikeModels *repository.MockBikeModelRepository
	categories *repository.MockCategoryRepository
	products   *repository.MockProductRepository
	deleter    *MockSubtreeDeleter
}

func newCatalogService() (service.CatalogService, *catalogMocks) {
	m := &catalogMocks{
		brands:     repository.NewMockBrandRepository(),
		bikeModels: repository.NewMockBikeModelRepository(),
		categories: repository.NewMockCategoryRepository(),
		products:   repository.NewMockProductRepository(),
		deleter:    &MockSubtreeDeleter{},
	}

	svc := service.NewCatalogService(m.brands, m.bikeModels, m.categories, m.products, m.deleter, nil)

	return svc, m
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)

	return parsed
}

func TestCreateBrand(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Code Uppercased", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.brands.On("CreateBrand", ctx, mock.AnythingOfType("*models.Brand")).Return(nil).Once()

		// Act
		brand, err := svc.CreateBrand(ctx, &models.CreateBrandRequest{BrandName: "Hero", BrandCode: "hero"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "HERO", brand.BrandCode)
		assert.NotEqual(t, uuid.Nil, brand.ID)
		m.brands.AssertExpectations(t)
	})

	t.Run("Failure - Duplicate Code", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.brands.On("CreateBrand", ctx, mock.AnythingOfType("*models.Brand")).
			Return(&pq.Error{Code: "23505"}).Once()

		// Act
		_, err := svc.CreateBrand(ctx, &models.CreateBrandRequest{BrandName: "Hero", BrandCode: "HERO"})

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, appErr.Code)
	})
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	brandID := uuid.New()
	modelID := uuid.New()
	categoryID := uuid.New()

	brand := &models.Brand{ID: brandID, BrandCode: "HERO"}
	model := &models.BikeModel{ID: modelID, BrandID: brandID, ModelCode: "SPLENDOR"}
	category := &models.Category{ID: categoryID, BrandID: brandID, ModelID: modelID, CategoryCode: "ENGINE"}

	t.Run("Success - Compound Code Prefix", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.categories.On("GetCategoryByCode", ctx, "ENGINE").Return(category, nil).Once()
		m.brands.On("GetBrandByID", ctx, brandID).Return(brand, nil).Once()
		m.bikeModels.On("GetModelByID", ctx, modelID).Return(model, nil).Once()
		m.products.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		// Act
		product, err := svc.CreateProduct(ctx, "ENGINE", &models.CreateProductRequest{
			Name:        "Clutch Plate",
			ProductCode: "clutch-01",
			Price:       450,
			Stock:       20,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "CLUTCH-01", product.ProductCode)
		assert.Equal(t, "HERO-SPLENDOR-ENGINE-CLUTCH-01", product.CodePrefix)
		assert.Equal(t, categoryID, product.CategoryID)
		assert.Equal(t, brandID, product.BrandID)
		m.products.AssertExpectations(t)
	})

	t.Run("Short Description Is Sanitized", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.categories.On("GetCategoryByCode", ctx, "ENGINE").Return(category, nil).Once()
		m.brands.On("GetBrandByID", ctx, brandID).Return(brand, nil).Once()
		m.bikeModels.On("GetModelByID", ctx, modelID).Return(model, nil).Once()
		m.products.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		// Act
		product, err := svc.CreateProduct(ctx, "ENGINE", &models.CreateProductRequest{
			Name:        "Clutch Plate",
			ProductCode: "CLUTCH-02",
			ShortDesc:   `Genuine part <script>alert("x")</script>`,
			Price:       450,
		})

		// Assert
		require.NoError(t, err)
		assert.NotContains(t, product.ShortDesc, "<script>")
		assert.Contains(t, product.ShortDesc, "Genuine part")
	})

	t.Run("Failure - Category Not Found", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.categories.On("GetCategoryByCode", ctx, "MISSING").Return(nil, sql.ErrNoRows).Once()

		// Act
		_, err := svc.CreateProduct(ctx, "MISSING", &models.CreateProductRequest{Name: "X", ProductCode: "X", Price: 1})

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	existing := func() *models.Product {
		return &models.Product{ID: productID, ProductCode: "CLUTCH-01", Name: "Clutch Plate", Price: 450, Stock: 20}
	}

	t.Run("Success - Offer Attached", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.products.On("GetProductByCode", ctx, "CLUTCH-01").Return(existing(), nil).Once()
		m.products.On("UpdateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		offer := &models.Offer{
			DiscountPercent: 20,
			ValidFrom:       mustTime(t, "2026-09-01T00:00:00Z"),
			ValidTo:         mustTime(t, "2026-09-15T00:00:00Z"),
			Description:     "Festival sale",
		}

		// Act
		product, err := svc.UpdateProduct(ctx, "CLUTCH-01", &models.UpdateProductRequest{Offer: offer})

		// Assert
		require.NoError(t, err)
		require.NotNil(t, product.Offer)
		assert.Equal(t, float64(20), product.Offer.DiscountPercent)
		m.products.AssertExpectations(t)
	})

	t.Run("Failure - Inverted Offer Window", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.products.On("GetProductByCode", ctx, "CLUTCH-01").Return(existing(), nil).Once()

		offer := &models.Offer{
			DiscountPercent: 20,
			ValidFrom:       mustTime(t, "2026-09-15T00:00:00Z"),
			ValidTo:         mustTime(t, "2026-09-01T00:00:00Z"),
		}

		// Act
		_, err := svc.UpdateProduct(ctx, "CLUTCH-01", &models.UpdateProductRequest{Offer: offer})

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
		m.products.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Partial Update Leaves Other Fields Alone", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.products.On("GetProductByCode", ctx, "CLUTCH-01").Return(existing(), nil).Once()
		m.products.On("UpdateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		newPrice := 499.0

		// Act
		product, err := svc.UpdateProduct(ctx, "CLUTCH-01", &models.UpdateProductRequest{Price: &newPrice})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 499.0, product.Price)
		assert.Equal(t, "Clutch Plate", product.Name)
	})
}

func TestDeleteBrandCascades(t *testing.T) {
	ctx := context.Background()
	brandID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.brands.On("GetBrandByCode", ctx, "HERO").
			Return(&models.Brand{ID: brandID, BrandCode: "HERO"}, nil).Once()
		m.deleter.On("DeleteSubtree", ctx, cascade.RootBrand, brandID).Return(nil).Once()

		// Act
		err := svc.DeleteBrand(ctx, "HERO")

		// Assert
		require.NoError(t, err)
		m.deleter.AssertExpectations(t)
	})

	t.Run("Partial Failure Propagates", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.brands.On("GetBrandByCode", ctx, "HERO").
			Return(&models.Brand{ID: brandID, BrandCode: "HERO"}, nil).Once()
		m.deleter.On("DeleteSubtree", ctx, cascade.RootBrand, brandID).
			Return(appErrors.PartialFailureError("Subtree delete stopped at categories")).Once()

		// Act
		err := svc.DeleteBrand(ctx, "HERO")

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodePartialFailure, appErr.Code)
	})
}

func TestStockAdjustment(t *testing.T) {
	ctx := context.Background()

	t.Run("Reduce Sends Negative Delta", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.products.On("AdjustStock", ctx, "CLUTCH-01", -5).Return(7, nil).Once()

		// Act
		stock, err := svc.ReduceStock(ctx, "CLUTCH-01", 5)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 7, stock)
		m.products.AssertExpectations(t)
	})

	t.Run("Add Sends Positive Delta", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.products.On("AdjustStock", ctx, "CLUTCH-01", 5).Return(17, nil).Once()

		// Act
		stock, err := svc.AddStock(ctx, "CLUTCH-01", 5)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 17, stock)
	})

	t.Run("Unknown Product", func(t *testing.T) {
		// Arrange
		svc, m := newCatalogService()

		m.products.On("AdjustStock", ctx, "GHOST", -1).Return(0, sql.ErrNoRows).Once()

		// Act
		_, err := svc.ReduceStock(ctx, "GHOST", 1)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}
