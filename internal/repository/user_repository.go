package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userDomain "github.com/kilat-cab/service-ride/internal/domain/user"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// UserModel is the GORM model for the users table. DeletedAt enables gorm's
// soft-delete scoping on every query that is not Unscoped. The partial email
// index mirrors migrations/000001 so AutoMigrate enforces the same uniqueness.
type UserModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email_live,where:deleted_at IS NULL"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	FullName     string         `gorm:"type:varchar(150);not null"`
	Phone        string         `gorm:"type:varchar(30)"`
	Role         string         `gorm:"type:varchar(20);not null;default:'passenger'"`
	IsActive     bool           `gorm:"not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"type:timestamptz"`
	Version      int64          `gorm:"not null;default:1"`
	CreatedAt    time.Time      `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time      `gorm:"type:timestamptz;not null"`
	DeletedAt    gorm.DeletedAt `gorm:"type:timestamptz;index"`
}

func (UserModel) TableName() string { return "users" }

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id), id.String())
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	return r.findOne(r.db.WithContext(ctx).Where("email = ?", email), email)
}

func (r *GormUserRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return r.findOne(r.db.WithContext(ctx).Unscoped().Where("id = ?", id), id.String())
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormUserRepository) List(ctx context.Context, page, limit int) ([]*userDomain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var models []UserModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*userDomain.User, len(models))
	for i := range models {
		users[i] = toUserDomain(&models[i])
	}
	return users, total, nil
}

func (r *GormUserRepository) Save(ctx context.Context, u *userDomain.User) error {
	if err := r.db.WithContext(ctx).Create(toUserModel(u)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("email is already registered")
		}
		return err
	}
	return nil
}

// Update writes every mutable column. It is unscoped so that soft deletes
// and restores go through the same optimistic-locking path.
func (r *GormUserRepository) Update(ctx context.Context, u *userDomain.User) error {
	model := toUserModel(u)
	previousVersion := u.Version() - 1

	result := r.db.WithContext(ctx).
		Unscoped().
		Model(&UserModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"password_hash": model.PasswordHash,
			"full_name":     model.FullName,
			"phone":         model.Phone,
			"role":          model.Role,
			"is_active":     model.IsActive,
			"last_login_at": model.LastLoginAt,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
			"deleted_at":    model.DeletedAt,
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("email is already registered")
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("user was modified by another transaction")
	}
	return nil
}

func (r *GormUserRepository) findOne(q *gorm.DB, key string) (*userDomain.User, error) {
	var model UserModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", key)
		}
		return nil, err
	}
	return toUserDomain(&model), nil
}

// --- Conversions ---

func toUserModel(u *userDomain.User) *UserModel {
	var deletedAt gorm.DeletedAt
	if d := u.DeletedAt(); d != nil {
		deletedAt = gorm.DeletedAt{Time: *d, Valid: true}
	}
	return &UserModel{
		ID:           u.ID(),
		Email:        u.Email(),
		PasswordHash: u.PasswordHash(),
		FullName:     u.FullName(),
		Phone:        u.Phone(),
		Role:         u.Role(),
		IsActive:     u.IsActive(),
		LastLoginAt:  u.LastLoginAt(),
		Version:      u.Version(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
		DeletedAt:    deletedAt,
	}
}

func toUserDomain(m *UserModel) *userDomain.User {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		deletedAt = &t
	}
	return userDomain.Reconstruct(
		m.ID,
		m.Email, m.PasswordHash, m.FullName, m.Phone, m.Role,
		m.IsActive,
		m.LastLoginAt,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
		deletedAt,
	)
}
