package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	appErrors "github.com/myspares/catalog-platform/internal/errors"
	"github.com/myspares/catalog-platform/internal/models"
	repository "github.com/myspares/catalog-platform/internal/repositories"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, req *models.RemoveCartItemRequest) (*models.Cart, error)
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

// GetCart returns the user's cart, creating an empty one on first use.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	cart = &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items:  map[string]models.CartItem{},
	}

	if err := s.carts.CreateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to create cart").WithError(err)
	}

	return cart, nil
}

// AddItem puts a product line in the cart, or raises the quantity of an
// existing line. The requested quantity is capped at the product's stock.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {
	product, err := s.products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, appErrors.NotFoundError("Product not found").WithError(err)
	}

	if product.Stock <= 0 {
		return nil, appErrors.BadRequestError("Product is out of stock")
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := req.ProductID.String()

	item, ok := cart.Items[key]
	if !ok {
		item = models.CartItem{ProductID: req.ProductID, AddedAt: time.Now().UTC()}
	}

	item.Quantity += req.Quantity
	if item.Quantity > product.Stock {
		item.Quantity = product.Stock
	}

	cart.Items[key] = item

	return s.save(ctx, cart)
}

// RemoveItem lowers a line's quantity, dropping the line entirely once it
// reaches zero. Removing from an absent line is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, req *models.RemoveCartItemRequest) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := req.ProductID.String()

	item, ok := cart.Items[key]
	if !ok {
		return cart, nil
	}

	item.Quantity -= req.Quantity
	if item.Quantity <= 0 {
		delete(cart.Items, key)
	} else {
		cart.Items[key] = item
	}

	return s.save(ctx, cart)
}

// save recomputes the subtotal from current effective prices and persists
// the cart in one update.
func (s *cartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	now := time.Now().UTC()

	var subtotal float64

	for key, item := range cart.Items {
		product, err := s.products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				delete(cart.Items, key)

				continue
			}

			return nil, appErrors.DatabaseError("Failed to price cart").WithError(err)
		}

		subtotal += product.EffectivePrice(now) * float64(item.Quantity)
	}

	cart.Subtotal = subtotal

	if err := s.carts.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}
