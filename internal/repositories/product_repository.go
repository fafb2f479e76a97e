package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/myspares/catalog-platform/internal/models"
	"github.com/myspares/catalog-platform/internal/utils"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductByCode(ctx context.Context, code string) (*models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, page, size int) ([]*models.Product, int, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	AdjustStock(ctx context.Context, code string, delta int) (int, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, brand_id, model_id, category_id, name, product_code, code_prefix, short_desc, price, stock, image_url, offers, created_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	product := &models.Product{}

	var offersJSON []byte

	err := row.Scan(&product.ID, &product.BrandID, &product.ModelID, &product.CategoryID,
		&product.Name, &product.ProductCode, &product.CodePrefix, &product.ShortDesc,
		&product.Price, &product.Stock, &product.ImageURL, &offersJSON, &product.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(offersJSON) > 0 {
		offer := &models.Offer{}
		if err := json.Unmarshal(offersJSON, offer); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product offers: %w", err)
		}

		product.Offer = offer
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var offersJSON []byte

	if product.Offer != nil {
		data, err := json.Marshal(product.Offer)
		if err != nil {
			return fmt.Errorf("failed to marshal product offers: %w", err)
		}

		offersJSON = data
	}

	query := `
		INSERT INTO products (id, brand_id, model_id, category_id, name, product_code, code_prefix, short_desc, price, stock, image_url, offers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.ID, product.BrandID, product.ModelID, product.CategoryID,
		product.Name, product.ProductCode, product.CodePrefix, product.ShortDesc,
		product.Price, product.Stock, product.ImageURL, offersJSON).Scan(&product.CreatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

func (r *productRepository) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE product_code = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

func (r *productRepository) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, page, size int) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM products WHERE category_id = $1`

	err := r.DB.QueryRowContext(dbCtx, countQuery, categoryID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	// Offset
	offset := (page - 1) * size

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE category_id = $1
		ORDER BY product_code
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(dbCtx, query, categoryID, size, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var offersJSON []byte

	if product.Offer != nil {
		data, err := json.Marshal(product.Offer)
		if err != nil {
			return fmt.Errorf("failed to marshal product offers: %w", err)
		}

		offersJSON = data
	}

	query := `
		UPDATE products
		SET name = $1, short_desc = $2, price = $3, image_url = $4, offers = $5
		WHERE id = $6
	`

	result, err := r.DB.ExecContext(dbCtx, query, product.Name, product.ShortDesc, product.Price, product.ImageURL, offersJSON, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update the product: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// AdjustStock applies a stock delta as one atomic update and returns the
// resulting stock level. The stock decrease itself is what triggers cart
// reconciliation, via the change feed.
func (r *productRepository) AdjustStock(ctx context.Context, code string, delta int) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET stock = GREATEST(stock + $1, 0)
		WHERE product_code = $2
		RETURNING stock
	`

	var stock int

	err := r.DB.QueryRowContext(dbCtx, query, delta, code).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}

		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	return stock, nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete the product: %w", err)
	}

	deletedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get deleted rows: %w", err)
	}

	if deletedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
