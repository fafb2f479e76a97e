package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	appErrors "github.com/myspares/catalog-platform/internal/errors"
	"github.com/myspares/catalog-platform/internal/models"
	service "github.com/myspares/catalog-platform/internal/services"
	"github.com/myspares/catalog-platform/internal/utils/response"
)

type AuditHandler struct {
	auditService service.AuditService
	validator    *validator.Validate
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService, validator: validator.New()}
}

// Query serves GET /audit with filters passed as query parameters. Time
// bounds are RFC 3339.
func (h *AuditHandler) Query() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()

		query := &models.AuditQuery{
			Collection: params.Get("collection"),
			Operation:  params.Get("operation"),
			Match:      params.Get("match"),
		}

		if raw := params.Get("from"); raw != "" {
			from, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				response.Error(w, appErrors.ValidationError("from must be an RFC 3339 timestamp"))

				return
			}

			query.From = from
		}

		if raw := params.Get("to"); raw != "" {
			to, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				response.Error(w, appErrors.ValidationError("to must be an RFC 3339 timestamp"))

				return
			}

			query.To = to
		}

		if raw := params.Get("page"); raw != "" {
			if page, err := strconv.Atoi(raw); err == nil {
				query.Page = page
			}
		}

		if raw := params.Get("pageSize"); raw != "" {
			if size, err := strconv.Atoi(raw); err == nil {
				query.PageSize = size
			}
		}

		if err := h.validator.Struct(query); err != nil {
			response.Error(w, appErrors.ValidationError("Invalid audit query").WithError(err))

			return
		}

		result, err := h.auditService.Query(r.Context(), query)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}
