package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/microcosm-cc/bluemonday"
	"github.com/myspares/catalog-platform/internal/cache"
	"github.com/myspares/catalog-platform/internal/cascade"
	appErrors "github.com/myspares/catalog-platform/internal/errors"
	"github.com/myspares/catalog-platform/internal/models"
	repository "github.com/myspares/catalog-platform/internal/repositories"
)

type CatalogService interface {
	CreateBrand(ctx context.Context, req *models.CreateBrandRequest) (*models.Brand, error)
	GetBrand(ctx context.Context, brandCode string) (*models.Brand, error)
	ListBrands(ctx context.Context) ([]*models.Brand, error)
	DeleteBrand(ctx context.Context, brandCode string) error

	CreateBikeModel(ctx context.Context, brandCode string, req *models.CreateBikeModelRequest) (*models.BikeModel, error)
	ListModels(ctx context.Context, brandCode string) ([]*models.BikeModel, error)
	DeleteModel(ctx context.Context, modelCode string) error

	CreateCategory(ctx context.Context, modelCode string, req *models.CreateCategoryRequest) (*models.Category, error)
	ListCategories(ctx context.Context, modelCode string) ([]*models.Category, error)
	DeleteCategory(ctx context.Context, categoryCode string) error

	CreateProduct(ctx context.Context, categoryCode string, req *models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, productCode string) (*models.Product, error)
	ListProducts(ctx context.Context, categoryCode string, page, pageSize int) ([]*models.Product, int, error)
	UpdateProduct(ctx context.Context, productCode string, req *models.UpdateProductRequest) (*models.Product, error)
	GetStock(ctx context.Context, productCode string) (int, error)
	AddStock(ctx context.Context, productCode string, quantity int) (int, error)
	ReduceStock(ctx context.Context, productCode string, quantity int) (int, error)
	DeleteProduct(ctx context.Context, productCode string) error
}

type catalogService struct {
	brands     repository.BrandRepository
	bikeModels repository.BikeModelRepository
	categories repository.CategoryRepository
	products   repository.ProductRepository
	deleter    cascade.SubtreeDeleter
	cache      cache.Cache
	sanitizer  *bluemonday.Policy
}

func NewCatalogService(brands repository.BrandRepository, bikeModels repository.BikeModelRepository, categories repository.CategoryRepository, products repository.ProductRepository, deleter cascade.SubtreeDeleter, cacheStore cache.Cache) CatalogService {
	return &catalogService{
		brands:     brands,
		bikeModels: bikeModels,
		categories: categories,
		products:   products,
		deleter:    deleter,
		cache:      cacheStore,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	// 23505 = unique_violation
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *catalogService) CreateBrand(ctx context.Context, req *models.CreateBrandRequest) (*models.Brand, error) {
	brand := &models.Brand{
		ID:        uuid.New(),
		BrandName: req.BrandName,
		BrandCode: strings.ToUpper(req.BrandCode),
		ImageURL:  req.ImageURL,
	}

	err := s.brands.CreateBrand(ctx, brand)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, appErrors.DuplicateEntryError("Brand code already exists").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create brand").WithError(err)
	}

	return brand, nil
}

func (s *catalogService) GetBrand(ctx context.Context, brandCode string) (*models.Brand, error) {
	brand, err := s.brands.GetBrandByCode(ctx, brandCode)
	if err != nil {
		return nil, appErrors.NotFoundError("Brand not found").WithError(err)
	}

	return brand, nil
}

func (s *catalogService) ListBrands(ctx context.Context) ([]*models.Brand, error) {
	brands, err := s.brands.ListBrands(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch brands").WithError(err)
	}

	return brands, nil
}

// DeleteBrand removes the brand and everything beneath it. Carts holding
// the removed products are fixed up by the change feed, not here.
func (s *catalogService) DeleteBrand(ctx context.Context, brandCode string) error {
	brand, err := s.brands.GetBrandByCode(ctx, brandCode)
	if err != nil {
		return appErrors.NotFoundError("Brand not found").WithError(err)
	}

	if err := s.deleter.DeleteSubtree(ctx, cascade.RootBrand, brand.ID); err != nil {
		return err
	}

	s.invalidate(ctx, cache.Key(cache.BrandKeyPrefix, brandCode))

	return nil
}

func (s *catalogService) CreateBikeModel(ctx context.Context, brandCode string, req *models.CreateBikeModelRequest) (*models.BikeModel, error) {
	brand, err := s.brands.GetBrandByCode(ctx, brandCode)
	if err != nil {
		return nil, appErrors.NotFoundError("Brand not found").WithError(err)
	}

	model := &models.BikeModel{
		ID:        uuid.New(),
		BrandID:   brand.ID,
		ModelName: req.ModelName,
		ModelCode: strings.ToUpper(req.ModelCode),
		ImageURL:  req.ImageURL,
	}

	err = s.bikeModels.CreateBikeModel(ctx, model)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, appErrors.DuplicateEntryError("Model code already exists").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create bike model").WithError(err)
	}

	return model, nil
}

func (s *catalogService) ListModels(ctx context.Context, brandCode string) ([]*models.BikeModel, error) {
	brand, err := s.brands.GetBrandByCode(ctx, brandCode)
	if err != nil {
		return nil, appErrors.NotFoundError("Brand not found").WithError(err)
	}

	bikeModels, err := s.bikeModels.ListModelsByBrand(ctx, brand.ID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch bike models").WithError(err)
	}

	return bikeModels, nil
}

func (s *catalogService) DeleteModel(ctx context.Context, modelCode string) error {
	model, err := s.bikeModels.GetModelByCode(ctx, modelCode)
	if err != nil {
		return appErrors.NotFoundError("Bike model not found").WithError(err)
	}

	return s.deleter.DeleteSubtree(ctx, cascade.RootModel, model.ID)
}

func (s *catalogService) CreateCategory(ctx context.Context, modelCode string, req *models.CreateCategoryRequest) (*models.Category, error) {
	model, err := s.bikeModels.GetModelByCode(ctx, modelCode)
	if err != nil {
		return nil, appErrors.NotFoundError("Bike model not found").WithError(err)
	}

	category := &models.Category{
		ID:           uuid.New(),
		BrandID:      model.BrandID,
		ModelID:      model.ID,
		Name:         req.Name,
		CategoryCode: strings.ToUpper(req.CategoryCode),
		ImageURL:     req.ImageURL,
	}

	err = s.categories.CreateCategory(ctx, category)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, appErrors.DuplicateEntryError("Category code already exists").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create category").WithError(err)
	}

	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context, modelCode string) ([]*models.Category, error) {
	model, err := s.bikeModels.GetModelByCode(ctx, modelCode)
	if err != nil {
		return nil, appErrors.NotFoundError("Bike model not found").WithError(err)
	}

	categories, err := s.categories.ListCategoriesByModel(ctx, model.ID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch categories").WithError(err)
	}

	return categories, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, categoryCode string) error {
	category, err := s.categories.GetCategoryByCode(ctx, categoryCode)
	if err != nil {
		return appErrors.NotFoundError("Category not found").WithError(err)
	}

	return s.deleter.DeleteSubtree(ctx, cascade.RootCategory, category.ID)
}

func (s *catalogService) CreateProduct(ctx context.Context, categoryCode string, req *models.CreateProductRequest) (*models.Product, error) {
	category, err := s.categories.GetCategoryByCode(ctx, categoryCode)
	if err != nil {
		return nil, appErrors.NotFoundError("Category not found").WithError(err)
	}

	productCode := strings.ToUpper(req.ProductCode)

	prefix, err := s.codePrefix(ctx, category, productCode)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		BrandID:     category.BrandID,
		ModelID:     category.ModelID,
		CategoryID:  category.ID,
		Name:        req.Name,
		ProductCode: productCode,
		CodePrefix:  prefix,
		ShortDesc:   s.sanitizer.Sanitize(req.ShortDesc),
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}

	err = s.products.CreateProduct(ctx, product)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, appErrors.DuplicateEntryError("Product code already exists").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

// codePrefix builds the BRAND-MODEL-CATEGORY-PRODUCT compound code that
// identifies a product across the whole catalog.
func (s *catalogService) codePrefix(ctx context.Context, category *models.Category, productCode string) (string, error) {
	brand, err := s.brands.GetBrandByID(ctx, category.BrandID)
	if err != nil {
		return "", appErrors.DatabaseError("Failed to resolve brand for code prefix").WithError(err)
	}

	model, err := s.bikeModels.GetModelByID(ctx, category.ModelID)
	if err != nil {
		return "", appErrors.DatabaseError("Failed to resolve model for code prefix").WithError(err)
	}

	return fmt.Sprintf("%s-%s-%s-%s", brand.BrandCode, model.ModelCode, category.CategoryCode, productCode), nil
}

func (s *catalogService) GetProduct(ctx context.Context, productCode string) (*models.Product, error) {
	cacheKey := cache.Key(cache.ProductKeyPrefix, productCode)

	if s.cache != nil {
		var cached models.Product
		if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	product, err := s.products.GetProductByCode(ctx, productCode)
	if err != nil {
		return nil, appErrors.NotFoundError("Product not found").WithError(err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, product, 0)
	}

	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, categoryCode string, page, pageSize int) ([]*models.Product, int, error) {
	category, err := s.categories.GetCategoryByCode(ctx, categoryCode)
	if err != nil {
		return nil, 0, appErrors.NotFoundError("Category not found").WithError(err)
	}

	products, total, err := s.products.ListProductsByCategory(ctx, category.ID, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productCode string, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.products.GetProductByCode(ctx, productCode)
	if err != nil {
		return nil, appErrors.NotFoundError("Product not found").WithError(err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}

	if req.ShortDesc != nil {
		product.ShortDesc = s.sanitizer.Sanitize(*req.ShortDesc)
	}

	if req.Price != nil {
		product.Price = *req.Price
	}

	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}

	if req.Offer != nil {
		if !req.Offer.ValidTo.After(req.Offer.ValidFrom) {
			return nil, appErrors.ValidationError("Offer window must end after it starts")
		}

		if req.Offer.DiscountPercent < 0 || req.Offer.DiscountPercent > 100 {
			return nil, appErrors.ValidationError("Discount percent must be between 0 and 100")
		}

		offer := *req.Offer
		offer.Description = s.sanitizer.Sanitize(offer.Description)
		product.Offer = &offer
	}

	err = s.products.UpdateProduct(ctx, product)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidate(ctx, cache.Key(cache.ProductKeyPrefix, productCode))

	return product, nil
}

func (s *catalogService) GetStock(ctx context.Context, productCode string) (int, error) {
	product, err := s.products.GetProductByCode(ctx, productCode)
	if err != nil {
		return 0, appErrors.NotFoundError("Product not found").WithError(err)
	}

	return product.Stock, nil
}

func (s *catalogService) AddStock(ctx context.Context, productCode string, quantity int) (int, error) {
	return s.adjustStock(ctx, productCode, quantity)
}

func (s *catalogService) ReduceStock(ctx context.Context, productCode string, quantity int) (int, error) {
	return s.adjustStock(ctx, productCode, -quantity)
}

func (s *catalogService) adjustStock(ctx context.Context, productCode string, delta int) (int, error) {
	stock, err := s.products.AdjustStock(ctx, productCode, delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return 0, appErrors.DatabaseError("Failed to adjust stock").WithError(err)
	}

	s.invalidate(ctx, cache.Key(cache.ProductKeyPrefix, productCode))

	return stock, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productCode string) error {
	product, err := s.products.GetProductByCode(ctx, productCode)
	if err != nil {
		return appErrors.NotFoundError("Product not found").WithError(err)
	}

	if err := s.products.DeleteProduct(ctx, product.ID); err != nil {
		return appErrors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.invalidate(ctx, cache.Key(cache.ProductKeyPrefix, productCode))

	return nil
}

func (s *catalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}

	_ = s.cache.Delete(ctx, keys...)
}
