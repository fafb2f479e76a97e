package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/myspares/catalog-platform/internal/models"
	"github.com/myspares/catalog-platform/internal/utils"
)

type AuditRepository interface {
	Insert(ctx context.Context, record *models.AuditRecord) error
	Query(ctx context.Context, query *models.AuditQuery) ([]*models.AuditRecord, int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditRepository struct {
	DB *sql.DB
}

func NewAuditRepo(db *sql.DB) AuditRepository {
	return &auditRepository{DB: db}
}

func (r *auditRepository) Insert(ctx context.Context, record *models.AuditRecord) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO audit_records (id, collection, operation, document_key, full_document, updated_fields, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var fullDocument []byte
	if len(record.FullDocument) > 0 {
		fullDocument = record.FullDocument
	}

	_, err := r.DB.ExecContext(dbCtx, query, record.ID, record.Collection, record.Operation,
		record.DocumentKey, fullDocument, pq.Array(record.UpdatedFields), record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}

	return nil
}

// Query filters the audit stream by collection, operation, time range,
// and a free-text match against the document snapshot.
func (r *auditRepository) Query(ctx context.Context, q *models.AuditQuery) ([]*models.AuditRecord, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	where := " WHERE 1=1"

	var args []any

	addArg := func(clause string, value any) {
		args = append(args, value)
		where += clause + "$" + strconv.Itoa(len(args))
	}

	if q.Collection != "" {
		addArg(" AND collection = ", q.Collection)
	}

	if q.Operation != "" {
		addArg(" AND operation = ", q.Operation)
	}

	if !q.From.IsZero() {
		addArg(" AND timestamp >= ", q.From)
	}

	if !q.To.IsZero() {
		addArg(" AND timestamp <= ", q.To)
	}

	if q.Match != "" {
		addArg(" AND full_document::text ILIKE ", "%"+q.Match+"%")
	}

	var total int

	if err := r.DB.QueryRowContext(dbCtx, "SELECT COUNT(*) FROM audit_records"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("querying database: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	size := q.PageSize
	if size < 1 {
		size = 50
	}

	query := `SELECT id, collection, operation, document_key, full_document, updated_fields, timestamp FROM audit_records` + where

	args = append(args, size)
	query += " ORDER BY timestamp DESC LIMIT $" + strconv.Itoa(len(args))

	args = append(args, (page-1)*size)
	query += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying database: %w", err)
	}

	defer rows.Close()

	var records []*models.AuditRecord

	for rows.Next() {
		record := &models.AuditRecord{}

		var fullDocument []byte

		if err := rows.Scan(&record.ID, &record.Collection, &record.Operation, &record.DocumentKey,
			&fullDocument, pq.Array(&record.UpdatedFields), &record.Timestamp); err != nil {
			return nil, 0, err
		}

		record.FullDocument = fullDocument
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *auditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM audit_records WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired audit records: %w", err)
	}

	return result.RowsAffected()
}
