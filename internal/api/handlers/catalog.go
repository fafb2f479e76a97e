package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/myspares/catalog-platform/internal/models"
	service "github.com/myspares/catalog-platform/internal/services"
	"github.com/myspares/catalog-platform/internal/utils"
	"github.com/myspares/catalog-platform/internal/utils/response"
)

type CatalogHandler struct {
	catalogService service.CatalogService
	validator      *validator.Validate
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, validator: validator.New()}
}

func (h *CatalogHandler) CreateBrand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateBrandRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		brand, err := h.catalogService.CreateBrand(r.Context(), &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Brand created", slog.String("brandCode", brand.BrandCode))
		response.Success(w, http.StatusCreated, brand)
	}
}

func (h *CatalogHandler) ListBrands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brands, err := h.catalogService.ListBrands(r.Context())
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, brands)
	}
}

func (h *CatalogHandler) GetBrand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brand, err := h.catalogService.GetBrand(r.Context(), r.PathValue("brandCode"))
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, brand)
	}
}

func (h *CatalogHandler) DeleteBrand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brandCode := r.PathValue("brandCode")

		if err := h.catalogService.DeleteBrand(r.Context(), brandCode); err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Brand subtree deleted", slog.String("brandCode", brandCode))
		response.Success(w, http.StatusOK, map[string]string{"deleted": brandCode})
	}
}

func (h *CatalogHandler) CreateModel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateBikeModelRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		model, err := h.catalogService.CreateBikeModel(r.Context(), r.PathValue("brandCode"), &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Bike model created", slog.String("modelCode", model.ModelCode))
		response.Success(w, http.StatusCreated, model)
	}
}

func (h *CatalogHandler) ListModels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bikeModels, err := h.catalogService.ListModels(r.Context(), r.PathValue("brandCode"))
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, bikeModels)
	}
}

func (h *CatalogHandler) DeleteModel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelCode := r.PathValue("modelCode")

		if err := h.catalogService.DeleteModel(r.Context(), modelCode); err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Model subtree deleted", slog.String("modelCode", modelCode))
		response.Success(w, http.StatusOK, map[string]string{"deleted": modelCode})
	}
}

func (h *CatalogHandler) CreateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateCategoryRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		category, err := h.catalogService.CreateCategory(r.Context(), r.PathValue("modelCode"), &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Category created", slog.String("categoryCode", category.CategoryCode))
		response.Success(w, http.StatusCreated, category)
	}
}

func (h *CatalogHandler) ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.catalogService.ListCategories(r.Context(), r.PathValue("modelCode"))
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, categories)
	}
}

func (h *CatalogHandler) DeleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryCode := r.PathValue("categoryCode")

		if err := h.catalogService.DeleteCategory(r.Context(), categoryCode); err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Category subtree deleted", slog.String("categoryCode", categoryCode))
		response.Success(w, http.StatusOK, map[string]string{"deleted": categoryCode})
	}
}

func (h *CatalogHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateProductRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.catalogService.CreateProduct(r.Context(), r.PathValue("categoryCode"), &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Product created", slog.String("codePrefix", product.CodePrefix))
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *CatalogHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := paginationParams(r)

		products, total, err := h.catalogService.ListProducts(r.Context(), r.PathValue("categoryCode"), page, pageSize)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     products,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}

func (h *CatalogHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := h.catalogService.GetProduct(r.Context(), r.PathValue("productCode"))
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *CatalogHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.UpdateProductRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.catalogService.UpdateProduct(r.Context(), r.PathValue("productCode"), &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Product updated", slog.String("productCode", product.ProductCode))
		response.Success(w, http.StatusOK, product)
	}
}

func (h *CatalogHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productCode := r.PathValue("productCode")

		if err := h.catalogService.DeleteProduct(r.Context(), productCode); err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Product deleted", slog.String("productCode", productCode))
		response.Success(w, http.StatusOK, map[string]string{"deleted": productCode})
	}
}

func (h *CatalogHandler) GetStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stock, err := h.catalogService.GetStock(r.Context(), r.PathValue("productCode"))
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]int{"stock": stock})
	}
}

func (h *CatalogHandler) AddStock() http.HandlerFunc {
	return h.stockHandler(h.catalogService.AddStock)
}

func (h *CatalogHandler) ReduceStock() http.HandlerFunc {
	return h.stockHandler(h.catalogService.ReduceStock)
}

func (h *CatalogHandler) stockHandler(adjust func(ctx context.Context, productCode string, quantity int) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.UpdateStockRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		productCode := r.PathValue("productCode")

		stock, err := adjust(r.Context(), productCode, req.Quantity)
		if err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("Stock adjusted", slog.String("productCode", productCode), slog.Int("stock", stock))
		response.Success(w, http.StatusOK, map[string]int{"stock": stock})
	}
}

func paginationParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return page, pageSize
}
