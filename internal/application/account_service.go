package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kilat-cab/service-ride/internal/domain/events"
	userDomain "github.com/kilat-cab/service-ride/internal/domain/user"
	"github.com/kilat-cab/service-ride/internal/platform/auth"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// SignupRequest holds the data needed to create an account.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required,max=150"`
	Phone    string `json:"phone" binding:"max=30"`
}

// SigninRequest holds signin credentials.
type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"max=150"`
	Phone    string `json:"phone" binding:"max=30"`
}

// ChangePasswordRequest holds the current and the new password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UserDTO is the API representation of an account.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// AuthResult is returned by signup, signin and refresh.
type AuthResult struct {
	User   UserDTO         `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// AccountService implements signup, signin and the account lifecycle.
type AccountService struct {
	repo       userDomain.UserRepository
	jwtManager *auth.JWTManager
	publisher  EventPublisher
	logger     *zap.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	repo userDomain.UserRepository,
	jwtManager *auth.JWTManager,
	publisher EventPublisher,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		repo:       repo,
		jwtManager: jwtManager,
		publisher:  publisher,
		logger:     logger,
	}
}

// Signup registers a passenger account and signs it in.
func (s *AccountService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	if len(req.Password) < auth.MinPasswordLength {
		return nil, domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	email := userDomain.NormalizeEmail(req.Email)
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, domain.NewConflictError("email is already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := userDomain.NewUser(email, hash, req.FullName, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID().String()))

	evt := events.UserRegisteredEvent{
		UserID:     u.ID(),
		Email:      u.Email(),
		Role:       u.Role(),
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicUserEvents, events.UserRegistered, u.ID().String(), evt)

	return s.issueTokens(u)
}

// Signin verifies credentials and returns fresh tokens.
func (s *AccountService) Signin(ctx context.Context, req SigninRequest) (*AuthResult, error) {
	u, err := s.repo.FindByEmail(ctx, userDomain.NormalizeEmail(req.Email))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash(), req.Password) {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}
	if !u.IsActive() {
		return nil, domain.NewInvalidStateMessage("account is inactive")
	}

	u.RecordLogin(time.Now())
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", zap.String("user_id", u.ID().String()))
	return s.issueTokens(u)
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AccountService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResult, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("invalid refresh token")
		}
		return nil, err
	}
	if !u.IsActive() {
		return nil, domain.NewInvalidStateMessage("account is inactive")
	}
	return s.issueTokens(u)
}

// GetProfile returns the caller's account.
func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toUserDTO(u)
	return &result, nil
}

// UpdateProfile changes name and/or phone.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.UpdateProfile(req.FullName, req.Phone)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	result := toUserDTO(u)
	return &result, nil
}

// ChangePassword verifies the current password and stores the new one.
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	if len(req.NewPassword) < auth.MinPasswordLength {
		return domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash(), req.CurrentPassword) {
		return domain.NewUnauthorizedError("current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := u.ChangePassword(hash); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("user_id", userID.String()))
	return nil
}

// DeleteAccount soft-deletes the caller's account.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := u.SoftDelete(now); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.logger.Info("account deleted", zap.String("user_id", userID.String()))

	evt := events.UserAccountDeletedEvent{
		UserID:     u.ID(),
		DeletedAt:  now,
		OccurredAt: now,
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicUserEvents, events.UserAccountDeleted, u.ID().String(), evt)
	return nil
}

// --- Admin methods ---

// ListUsers returns a paginated list of live accounts (admin).
func (s *AccountService) ListUsers(ctx context.Context, page, limit int) ([]UserDTO, int64, error) {
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos, total, nil
}

// SetActive activates or deactivates an account (admin).
func (s *AccountService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.SetActive(active); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("account activity changed",
		zap.String("user_id", userID.String()),
		zap.Bool("active", active),
	)
	result := toUserDTO(u)
	return &result, nil
}

// RestoreAccount undoes a soft delete (admin).
func (s *AccountService) RestoreAccount(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.repo.FindByIDIncludingDeleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		exists, err := s.repo.ExistsByEmail(ctx, u.Email())
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, domain.NewConflictError("email has been registered by another account")
		}
	}
	if err := u.Restore(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("account restored", zap.String("user_id", userID.String()))
	result := toUserDTO(u)
	return &result, nil
}

// --- Helpers ---

func (s *AccountService) issueTokens(u *userDomain.User) (*AuthResult, error) {
	tokens, err := s.jwtManager.GenerateTokenPair(u.ID(), u.Role())
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &AuthResult{User: toUserDTO(u), Tokens: tokens}, nil
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:          u.ID(),
		Email:       u.Email(),
		FullName:    u.FullName(),
		Phone:       u.Phone(),
		Role:        u.Role(),
		IsActive:    u.IsActive(),
		LastLoginAt: u.LastLoginAt(),
		CreatedAt:   u.CreatedAt(),
		UpdatedAt:   u.UpdatedAt(),
		DeletedAt:   u.DeletedAt(),
	}
}
