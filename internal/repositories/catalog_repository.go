package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/myspares/catalog-platform/internal/models"
	"github.com/myspares/catalog-platform/internal/utils"
)

type BrandRepository interface {
	CreateBrand(ctx context.Context, brand *models.Brand) error
	GetBrandByCode(ctx context.Context, code string) (*models.Brand, error)
	GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	ListBrands(ctx context.Context) ([]*models.Brand, error)
}

type BikeModelRepository interface {
	CreateBikeModel(ctx context.Context, model *models.BikeModel) error
	GetModelByCode(ctx context.Context, code string) (*models.BikeModel, error)
	GetModelByID(ctx context.Context, id uuid.UUID) (*models.BikeModel, error)
	ListModelsByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BikeModel, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByCode(ctx context.Context, code string) (*models.Category, error)
	ListCategoriesByModel(ctx context.Context, modelID uuid.UUID) ([]*models.Category, error)
}

type brandRepository struct {
	DB *sql.DB
}

func NewBrandRepo(db *sql.DB) BrandRepository {
	return &brandRepository{DB: db}
}

func (r *brandRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO brands (id, brand_name, brand_code, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, brand.ID, brand.BrandName, brand.BrandCode, brand.ImageURL).Scan(&brand.CreatedAt)
}

func (r *brandRepository) GetBrandByCode(ctx context.Context, code string) (*models.Brand, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_name, brand_code, image_url, created_at
		FROM brands
		WHERE brand_code = $1
	`

	brand := &models.Brand{}

	err := r.DB.QueryRowContext(dbCtx, query, code).Scan(&brand.ID, &brand.BrandName, &brand.BrandCode, &brand.ImageURL, &brand.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return brand, nil
}

func (r *brandRepository) GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_name, brand_code, image_url, created_at
		FROM brands
		WHERE id = $1
	`

	brand := &models.Brand{}

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&brand.ID, &brand.BrandName, &brand.BrandCode, &brand.ImageURL, &brand.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return brand, nil
}

func (r *brandRepository) ListBrands(ctx context.Context) ([]*models.Brand, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_name, brand_code, image_url, created_at
		FROM brands
		ORDER BY brand_code
	`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	defer rows.Close()

	var brands []*models.Brand

	for rows.Next() {
		brand := &models.Brand{}

		if err := rows.Scan(&brand.ID, &brand.BrandName, &brand.BrandCode, &brand.ImageURL, &brand.CreatedAt); err != nil {
			return nil, err
		}

		brands = append(brands, brand)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return brands, nil
}

type bikeModelRepository struct {
	DB *sql.DB
}

func NewBikeModelRepo(db *sql.DB) BikeModelRepository {
	return &bikeModelRepository{DB: db}
}

func (r *bikeModelRepository) CreateBikeModel(ctx context.Context, model *models.BikeModel) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO bike_models (id, brand_id, model_name, model_code, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, model.ID, model.BrandID, model.ModelName, model.ModelCode, model.ImageURL).Scan(&model.CreatedAt)
}

func (r *bikeModelRepository) GetModelByCode(ctx context.Context, code string) (*models.BikeModel, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_id, model_name, model_code, image_url, created_at
		FROM bike_models
		WHERE model_code = $1
	`

	model := &models.BikeModel{}

	err := r.DB.QueryRowContext(dbCtx, query, code).Scan(&model.ID, &model.BrandID, &model.ModelName, &model.ModelCode, &model.ImageURL, &model.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return model, nil
}

func (r *bikeModelRepository) GetModelByID(ctx context.Context, id uuid.UUID) (*models.BikeModel, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_id, model_name, model_code, image_url, created_at
		FROM bike_models
		WHERE id = $1
	`

	model := &models.BikeModel{}

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&model.ID, &model.BrandID, &model.ModelName, &model.ModelCode, &model.ImageURL, &model.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return model, nil
}

func (r *bikeModelRepository) ListModelsByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BikeModel, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_id, model_name, model_code, image_url, created_at
		FROM bike_models
		WHERE brand_id = $1
		ORDER BY model_code
	`

	rows, err := r.DB.QueryContext(dbCtx, query, brandID)
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	defer rows.Close()

	var bikeModels []*models.BikeModel

	for rows.Next() {
		model := &models.BikeModel{}

		if err := rows.Scan(&model.ID, &model.BrandID, &model.ModelName, &model.ModelCode, &model.ImageURL, &model.CreatedAt); err != nil {
			return nil, err
		}

		bikeModels = append(bikeModels, model)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bikeModels, nil
}

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepo(db *sql.DB) CategoryRepository {
	return &categoryRepository{DB: db}
}

func (r *categoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO categories (id, brand_id, model_id, name, category_code, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, category.ID, category.BrandID, category.ModelID, category.Name, category.CategoryCode, category.ImageURL).Scan(&category.CreatedAt)
}

func (r *categoryRepository) GetCategoryByCode(ctx context.Context, code string) (*models.Category, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_id, model_id, name, category_code, image_url, created_at
		FROM categories
		WHERE category_code = $1
	`

	category := &models.Category{}

	err := r.DB.QueryRowContext(dbCtx, query, code).Scan(&category.ID, &category.BrandID, &category.ModelID, &category.Name, &category.CategoryCode, &category.ImageURL, &category.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return category, nil
}

func (r *categoryRepository) ListCategoriesByModel(ctx context.Context, modelID uuid.UUID) ([]*models.Category, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_id, model_id, name, category_code, image_url, created_at
		FROM categories
		WHERE model_id = $1
		ORDER BY category_code
	`

	rows, err := r.DB.QueryContext(dbCtx, query, modelID)
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	defer rows.Close()

	var categories []*models.Category

	for rows.Next() {
		category := &models.Category{}

		if err := rows.Scan(&category.ID, &category.BrandID, &category.ModelID, &category.Name, &category.CategoryCode, &category.ImageURL, &category.CreatedAt); err != nil {
			return nil, err
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}
