package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appErrors "github.com/myspares/catalog-platform/internal/errors"
	"github.com/myspares/catalog-platform/internal/models"
	repository "github.com/myspares/catalog-platform/internal/repositories"
	service "github.com/myspares/catalog-platform/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success - Existing Cart", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		existing := &models.Cart{ID: uuid.New(), UserID: userID, Items: map[string]models.CartItem{}}
		mockCarts.On("GetCartByUserID", ctx, userID).Return(existing, nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		cart, err := cartService.GetCart(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, existing.ID, cart.ID)
		mockCarts.AssertExpectations(t)
	})

	t.Run("Success - Lazily Created On First Use", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		mockCarts.On("GetCartByUserID", ctx, userID).Return(nil, sql.ErrNoRows).Once()
		mockCarts.On("CreateCart", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		cart, err := cartService.GetCart(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, cart.UserID)
		assert.NotEqual(t, uuid.Nil, cart.ID)
		assert.Empty(t, cart.Items)
		mockCarts.AssertExpectations(t)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		mockCarts.On("GetCartByUserID", ctx, userID).Return(nil, errors.New("connection refused")).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		cart, err := cartService.GetCart(ctx, userID)

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
	})
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	product := &models.Product{ID: productID, Price: 40, Stock: 10}

	t.Run("Success - New Line Item", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: map[string]models.CartItem{}}

		mockProducts.On("GetProductByID", ctx, productID).Return(product, nil)
		mockCarts.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
		mockCarts.On("UpdateCart", ctx, cart).Return(nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		updated, err := cartService.AddItem(ctx, userID, &models.AddCartItemRequest{ProductID: productID, Quantity: 2})

		// Assert
		require.NoError(t, err)

		item := updated.Items[productID.String()]
		assert.Equal(t, 2, item.Quantity)
		assert.WithinDuration(t, time.Now(), item.AddedAt, time.Second)
		assert.Equal(t, float64(80), updated.Subtotal)
		mockCarts.AssertExpectations(t)
	})

	t.Run("Success - Quantity Accumulates", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 3, AddedAt: time.Now().Add(-time.Hour)},
		}}

		mockProducts.On("GetProductByID", ctx, productID).Return(product, nil)
		mockCarts.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
		mockCarts.On("UpdateCart", ctx, cart).Return(nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		updated, err := cartService.AddItem(ctx, userID, &models.AddCartItemRequest{ProductID: productID, Quantity: 2})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Items[productID.String()].Quantity)
	})

	t.Run("Quantity Capped At Stock", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: map[string]models.CartItem{}}

		mockProducts.On("GetProductByID", ctx, productID).Return(product, nil)
		mockCarts.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
		mockCarts.On("UpdateCart", ctx, cart).Return(nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		updated, err := cartService.AddItem(ctx, userID, &models.AddCartItemRequest{ProductID: productID, Quantity: 25})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 10, updated.Items[productID.String()].Quantity)
	})

	t.Run("Failure - Out Of Stock", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		mockProducts.On("GetProductByID", ctx, productID).
			Return(&models.Product{ID: productID, Price: 40, Stock: 0}, nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		_, err := cartService.AddItem(ctx, userID, &models.AddCartItemRequest{ProductID: productID, Quantity: 1})

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
	})

	t.Run("Failure - Product Not Found", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		mockProducts.On("GetProductByID", ctx, productID).Return(nil, sql.ErrNoRows).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		_, err := cartService.AddItem(ctx, userID, &models.AddCartItemRequest{ProductID: productID, Quantity: 1})

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})

	t.Run("Subtotal Uses Effective Price During Offer", func(t *testing.T) {
		// Arrange: 50% off while the offer window is open
		discounted := &models.Product{
			ID:    productID,
			Price: 40,
			Stock: 10,
			Offer: &models.Offer{
				DiscountPercent: 50,
				ValidFrom:       time.Now().Add(-time.Hour),
				ValidTo:         time.Now().Add(time.Hour),
			},
		}

		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: map[string]models.CartItem{}}

		mockProducts.On("GetProductByID", ctx, productID).Return(discounted, nil)
		mockCarts.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
		mockCarts.On("UpdateCart", ctx, cart).Return(nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		updated, err := cartService.AddItem(ctx, userID, &models.AddCartItemRequest{ProductID: productID, Quantity: 2})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, float64(40), updated.Subtotal)
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	product := &models.Product{ID: productID, Price: 10, Stock: 10}

	t.Run("Quantity Decremented", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 3},
		}}

		mockProducts.On("GetProductByID", ctx, productID).Return(product, nil)
		mockCarts.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
		mockCarts.On("UpdateCart", ctx, cart).Return(nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		updated, err := cartService.RemoveItem(ctx, userID, &models.RemoveCartItemRequest{ProductID: productID, Quantity: 1})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Items[productID.String()].Quantity)
		assert.Equal(t, float64(20), updated.Subtotal)
	})

	t.Run("Line Dropped At Zero", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: map[string]models.CartItem{
			productID.String(): {ProductID: productID, Quantity: 2},
		}}

		mockCarts.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
		mockCarts.On("UpdateCart", ctx, cart).Return(nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		updated, err := cartService.RemoveItem(ctx, userID, &models.RemoveCartItemRequest{ProductID: productID, Quantity: 5})

		// Assert
		require.NoError(t, err)
		assert.Empty(t, updated.Items)
		assert.Equal(t, float64(0), updated.Subtotal)
	})

	t.Run("Absent Line Is A No-Op", func(t *testing.T) {
		// Arrange
		mockCarts := repository.NewMockCartRepository()
		mockProducts := repository.NewMockProductRepository()

		cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: map[string]models.CartItem{}}

		mockCarts.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()

		cartService := service.NewCartService(mockCarts, mockProducts)

		// Act
		updated, err := cartService.RemoveItem(ctx, userID, &models.RemoveCartItemRequest{ProductID: productID, Quantity: 1})

		// Assert
		require.NoError(t, err)
		assert.Empty(t, updated.Items)
		mockCarts.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
	})
}
