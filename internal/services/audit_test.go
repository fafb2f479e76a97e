package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	appErrors "github.com/myspares/catalog-platform/internal/errors"
	"github.com/myspares/catalog-platform/internal/models"
	repository "github.com/myspares/catalog-platform/internal/repositories"
	service "github.com/myspares/catalog-platform/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Defaults Applied", func(t *testing.T) {
		// Arrange
		mockAudits := repository.NewMockAuditRepository()
		svc := service.NewAuditService(mockAudits)

		records := []*models.AuditRecord{
			{ID: uuid.New(), Collection: "products", Operation: "update", Timestamp: time.Now()},
		}

		mockAudits.On("Query", ctx, mock.AnythingOfType("*models.AuditQuery")).Return(records, 1, nil).Once()

		// Act
		result, err := svc.Query(ctx, &models.AuditQuery{Collection: "products"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 50, result.PageSize)
		assert.Equal(t, records, result.Data)
	})

	t.Run("Failure - Window Ends Before It Starts", func(t *testing.T) {
		// Arrange
		mockAudits := repository.NewMockAuditRepository()
		svc := service.NewAuditService(mockAudits)

		from := time.Now()

		// Act
		_, err := svc.Query(ctx, &models.AuditQuery{From: from, To: from.Add(-time.Hour)})

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
		mockAudits.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Repository Error", func(t *testing.T) {
		// Arrange
		mockAudits := repository.NewMockAuditRepository()
		svc := service.NewAuditService(mockAudits)

		mockAudits.On("Query", ctx, mock.AnythingOfType("*models.AuditQuery")).
			Return(nil, 0, sql.ErrConnDone).Once()

		// Act
		_, err := svc.Query(ctx, &models.AuditQuery{})

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
	})
}
