package repository

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/myspares/catalog-platform/internal/config"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/lib/pq"
)

type Repository struct {
	DB *sql.DB

	Brand     BrandRepository
	BikeModel BikeModelRepository
	Category  CategoryRepository
	Product   ProductRepository
	Cart      CartRepository
	Audit     AuditRepository
	User      UserRepository
}

func New(cfg *config.Config) (*Repository, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL))

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{
		DB:        db,
		Brand:     NewBrandRepo(db),
		BikeModel: NewBikeModelRepo(db),
		Category:  NewCategoryRepo(db),
		Product:   NewProductRepo(db),
		Cart:      NewCartRepo(db),
		Audit:     NewAuditRepo(db),
		User:      NewUserRepo(db),
	}, nil
}

func (p *Repository) Close() error {
	return p.DB.Close()
}
