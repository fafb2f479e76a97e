package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	appErrors "github.com/myspares/catalog-platform/internal/errors"
	"github.com/myspares/catalog-platform/internal/models"
	service "github.com/myspares/catalog-platform/internal/services"
	"github.com/myspares/catalog-platform/internal/utils"
	"github.com/myspares/catalog-platform/internal/utils/response"
)

type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService, validator: validator.New()}
}

func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		pending, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			slog.Error("User registration failed", slog.String("email", req.Email), slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("Registration pending verification", slog.String("email", pending.Email))
		response.Success(w, http.StatusAccepted, map[string]string{
			"message": "Verification code sent. Confirm within 24 hours.",
			"email":   pending.Email,
		})
	}
}

func (h *UserHandler) VerifyRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.VerifyRegistrationRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.VerifyRegistration(r.Context(), &req)
		if err != nil {
			slog.Warn("Registration verification failed", slog.String("email", req.Email), slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		slog.Info("User registered", slog.String("userId", user.ID.String()))
		response.Success(w, http.StatusCreated, user)
	}
}

func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		resp, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			slog.Warn("Login failed", slog.String("email", req.Email), slog.String("error", err.Error()))

			if resp != nil {
				status := http.StatusUnauthorized
				if resp.RetryAfter > 0 {
					status = http.StatusTooManyRequests
				}

				response.WriteJson(w, status, resp)

				return
			}

			response.Error(w, err)

			return
		}

		slog.Info("User logged in", slog.String("email", req.Email))
		response.Success(w, http.StatusOK, resp)
	}
}

func (h *UserHandler) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFromContext(r)
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))

			return
		}

		if err := h.userService.Logout(r.Context(), claims); err != nil {
			response.Error(w, err)

			return
		}

		slog.Info("User logged out", slog.String("userId", claims.UserID.String()))
		response.Success(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

func (h *UserHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFromContext(r)
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))

			return
		}

		user, err := h.userService.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, user)
	}
}
