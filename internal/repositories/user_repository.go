package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/myspares/catalog-platform/internal/models"
	"github.com/myspares/catalog-platform/internal/utils"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	CreatePendingRegistration(ctx context.Context, pending *models.PendingRegistration) error
	GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error)
	DeletePendingRegistration(ctx context.Context, id uuid.UUID) error
	DeletePendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	RevokeToken(ctx context.Context, tokenID string) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	DeleteRevokedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, user.ID, user.Name, user.Email, user.Password).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(dbCtx, query, email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return user, nil
}

func (r *userRepository) CreatePendingRegistration(ctx context.Context, pending *models.PendingRegistration) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO pending_registrations (id, name, email, password_hash, verification_code)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash,
		    verification_code = EXCLUDED.verification_code, created_at = NOW()
		RETURNING created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, pending.ID, pending.Name, pending.Email, pending.PasswordHash, pending.VerificationCode).Scan(&pending.CreatedAt)
}

func (r *userRepository) GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, password_hash, verification_code, created_at
		FROM pending_registrations
		WHERE email = $1
	`

	pending := &models.PendingRegistration{}

	err := r.DB.QueryRowContext(dbCtx, query, email).Scan(&pending.ID, &pending.Name, &pending.Email, &pending.PasswordHash, &pending.VerificationCode, &pending.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return pending, nil
}

func (r *userRepository) DeletePendingRegistration(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	_, err := r.DB.ExecContext(dbCtx, `DELETE FROM pending_registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending registration: %w", err)
	}

	return nil
}

func (r *userRepository) DeletePendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM pending_registrations WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired pending registrations: %w", err)
	}

	return result.RowsAffected()
}

func (r *userRepository) RevokeToken(ctx context.Context, tokenID string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO revoked_tokens (token_id)
		VALUES ($1)
		ON CONFLICT (token_id) DO NOTHING
	`

	_, err := r.DB.ExecContext(dbCtx, query, tokenID)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

func (r *userRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var revoked bool

	err := r.DB.QueryRowContext(dbCtx, `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_id = $1)`, tokenID).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("querying database: %w", err)
	}

	return revoked, nil
}

func (r *userRepository) DeleteRevokedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM revoked_tokens WHERE revoked_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired revoked tokens: %w", err)
	}

	return result.RowsAffected()
}
