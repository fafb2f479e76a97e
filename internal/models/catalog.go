package models

import (
	"time"

	"github.com/google/uuid"
)

// Catalog hierarchy: Brand -> BikeModel -> Category -> Product.
// Every non-root node keeps its parent id. Codes are unique across the
// whole catalog so a code alone identifies a node in API paths.

type Brand struct {
	ID        uuid.UUID `json:"id"`
	BrandName string    `json:"brand_name"`
	BrandCode string    `json:"brand_code"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BikeModel struct {
	ID        uuid.UUID `json:"id"`
	BrandID   uuid.UUID `json:"brand_id"`
	ModelName string    `json:"model_name"`
	ModelCode string    `json:"model_code"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID           uuid.UUID `json:"id"`
	BrandID      uuid.UUID `json:"brand_id"`
	ModelID      uuid.UUID `json:"model_id"`
	Name         string    `json:"name"`
	CategoryCode string    `json:"category_code"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Offer is an optional time-bounded discount on a product. The discount
// only applies while the current time falls inside [ValidFrom, ValidTo].
type Offer struct {
	DiscountPercent float64   `json:"discount_percent"`
	ValidFrom       time.Time `json:"valid_from"`
	ValidTo         time.Time `json:"valid_to"`
	Description     string    `json:"description,omitempty"`
}

// Active reports whether the offer applies at the given instant.
func (o *Offer) Active(now time.Time) bool {
	if o == nil {
		return false
	}

	return !now.Before(o.ValidFrom) && !now.After(o.ValidTo)
}

type Product struct {
	ID          uuid.UUID `json:"id"`
	BrandID     uuid.UUID `json:"brand_id"`
	ModelID     uuid.UUID `json:"model_id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	ProductCode string    `json:"product_code"`
	CodePrefix  string    `json:"code_prefix"`
	ShortDesc   string    `json:"short_desc,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url,omitempty"`
	Offer       *Offer    `json:"offers,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EffectivePrice returns the unit price after applying a currently valid
// offer, if any.
func (p *Product) EffectivePrice(now time.Time) float64 {
	if p.Offer.Active(now) {
		return p.Price * (1 - p.Offer.DiscountPercent/100)
	}

	return p.Price
}

type CreateBrandRequest struct {
	BrandName string `json:"brand_name" validate:"required,min=2,max=50"`
	BrandCode string `json:"brand_code" validate:"required,uppercase,min=2,max=10"`
	ImageURL  string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type CreateBikeModelRequest struct {
	ModelName string `json:"model_name" validate:"required,min=1,max=100"`
	ModelCode string `json:"model_code" validate:"required,min=1,max=20"`
	ImageURL  string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type CreateCategoryRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	CategoryCode string `json:"category_code" validate:"required,min=1,max=20"`
	ImageURL     string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	ProductCode string  `json:"product_code" validate:"required,min=1,max=30"`
	ShortDesc   string  `json:"short_desc,omitempty"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    string  `json:"image_url,omitempty" validate:"omitempty,url"`
}

type UpdateProductRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	ShortDesc *string  `json:"short_desc,omitempty"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	ImageURL  *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	Offer     *Offer   `json:"offers,omitempty"`
}

type UpdateStockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}
