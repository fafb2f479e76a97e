package service

import (
	"context"

	appErrors "github.com/myspares/catalog-platform/internal/errors"
	"github.com/myspares/catalog-platform/internal/models"
	repository "github.com/myspares/catalog-platform/internal/repositories"
)

type AuditService interface {
	Query(ctx context.Context, query *models.AuditQuery) (*models.PaginatedResponse, error)
}

type auditService struct {
	audits repository.AuditRepository
}

func NewAuditService(audits repository.AuditRepository) AuditService {
	return &auditService{audits: audits}
}

func (s *auditService) Query(ctx context.Context, query *models.AuditQuery) (*models.PaginatedResponse, error) {
	if !query.To.IsZero() && !query.From.IsZero() && query.To.Before(query.From) {
		return nil, appErrors.ValidationError("Query window must end after it starts")
	}

	records, total, err := s.audits.Query(ctx, query)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to query audit records").WithError(err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}

	size := query.PageSize
	if size < 1 {
		size = 50
	}

	return &models.PaginatedResponse{
		Data:     records,
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}
