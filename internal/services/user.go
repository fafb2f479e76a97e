package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	appErrors "github.com/myspares/catalog-platform/internal/errors"
	"github.com/myspares/catalog-platform/internal/models"
	repository "github.com/myspares/catalog-platform/internal/repositories"
	sendGrid "github.com/myspares/catalog-platform/pkg/sendGrid"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.PendingRegistration, error)
	VerifyRegistration(ctx context.Context, req *models.VerifyRegistrationRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, claims *models.Claims) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userService struct {
	users       repository.UserRepository
	rateLimiter repository.RateLimitRepository
	email       sendGrid.EmailService
	jwtKey      []byte
	jwtExpiry   time.Duration
}

func NewUserService(users repository.UserRepository, rateLimiter repository.RateLimitRepository, email sendGrid.EmailService, jwtKey []byte, jwtExpiryHours int) UserService {
	return &userService{
		users:       users,
		rateLimiter: rateLimiter,
		email:       email,
		jwtKey:      jwtKey,
		jwtExpiry:   time.Duration(jwtExpiryHours) * time.Hour,
	}
}

// Register parks the account as a pending registration and emails a
// six digit code. The account only becomes real after verification;
// unverified registrations expire and are swept by the janitor.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.PendingRegistration, error) {
	existingUser, _ := s.users.GetUserByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, appErrors.DuplicateEntryError("Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.InternalError("Failed to secure password").WithError(err)
	}

	code, err := verificationCode()
	if err != nil {
		return nil, appErrors.InternalError("Failed to generate verification code").WithError(err)
	}

	pending := &models.PendingRegistration{
		ID:               uuid.New(),
		Name:             req.Name,
		Email:            req.Email,
		PasswordHash:     string(hashedPassword),
		VerificationCode: code,
	}

	if err := s.users.CreatePendingRegistration(ctx, pending); err != nil {
		return nil, appErrors.DatabaseError("Failed to store registration").WithError(err)
	}

	if err := s.email.SendVerificationCode(ctx, pending.Email, pending.Name, code); err != nil {
		return nil, appErrors.ThirdPartyError("Failed to send verification email").WithError(err)
	}

	return pending, nil
}

// VerifyRegistration promotes a pending registration into a real user
// when the submitted code matches.
func (s *userService) VerifyRegistration(ctx context.Context, req *models.VerifyRegistrationRequest) (*models.User, error) {
	pending, err := s.users.GetPendingRegistration(ctx, req.Email)
	if err != nil {
		return nil, appErrors.NotFoundError("No pending registration for this email").WithError(err)
	}

	if pending.VerificationCode != req.Code {
		return nil, appErrors.UnauthorizedError("Verification code does not match")
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     pending.Name,
		Email:    pending.Email,
		Password: pending.PasswordHash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, appErrors.DatabaseError("Failed to create user").WithError(err)
	}

	if err := s.users.DeletePendingRegistration(ctx, pending.ID); err != nil {
		slog.Warn("verified registration left behind, janitor will sweep it",
			slog.String("email", pending.Email), slog.Any("error", err))
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	allowed, remaining, retryAfter, err := s.rateLimiter.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, appErrors.InternalError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			RetryAfter: retryAfter,
			Message:    "Too many login attempts. Please try again later.",
		}, appErrors.TooManyRequestsError("Too many login attempts")
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return &models.LoginResponse{
			Success:        false,
			RemainingTries: remaining,
			Message:        "Invalid email or password",
		}, appErrors.UnauthorizedError("Invalid email or password").WithError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return &models.LoginResponse{
			Success:        false,
			RemainingTries: remaining,
			Message:        "Invalid email or password",
		}, appErrors.UnauthorizedError("Invalid email or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, appErrors.InternalError("Failed to issue token").WithError(err)
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: int(s.jwtExpiry.Seconds()),
	}, nil
}

// Logout revokes the token's jti. The auth middleware rejects revoked
// tokens until they expire, after which the janitor drops the row.
func (s *userService) Logout(ctx context.Context, claims *models.Claims) error {
	if claims.ID == "" {
		return appErrors.BadRequestError("Token carries no id to revoke")
	}

	if err := s.users.RevokeToken(ctx, claims.ID); err != nil {
		return appErrors.DatabaseError("Failed to revoke token").WithError(err)
	}

	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("User not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch user").WithError(err)
	}

	return user, nil
}

func (s *userService) issueToken(user *models.User) (string, error) {
	now := time.Now()

	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.jwtKey)
}

func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
