package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/linkpro/linkpro/internal/app/apperrors"
	"github.com/linkpro/linkpro/internal/app/model"
	"gorm.io/gorm"
)

// UserRepository defines the data access contract for users and credentials.
type UserRepository interface {
	Create(ctx context.Context, user *model.User, cred *model.Credential) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetCredential(ctx context.Context, userID string) (*model.Credential, error)
	UpdateTheme(ctx context.Context, userID, theme string) error
	Search(ctx context.Context, query string) ([]model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a GORM-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and its credential in one transaction so a failed
// credential write never leaves a user without a password.
func (r *userRepository) Create(ctx context.Context, user *model.User, cred *model.Credential) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(cred).Error
	})
	if err != nil {
		return storageErr("create user", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storageErr("get user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storageErr("get user by email", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("lower(username) = lower(?)", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storageErr("get user by username", err)
	}
	return &user, nil
}

func (r *userRepository) GetCredential(ctx context.Context, userID string) (*model.Credential, error) {
	var cred model.Credential
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storageErr("get credential", err)
	}
	return &cred, nil
}

func (r *userRepository) UpdateTheme(ctx context.Context, userID, theme string) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("theme", theme)
	if result.Error != nil {
		return storageErr("update theme", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Search matches users whose name or username contains the query,
// case-insensitively.
func (r *userRepository) Search(ctx context.Context, query string) ([]model.User, error) {
	pattern := "%" + query + "%"
	var users []model.User
	if err := r.db.WithContext(ctx).
		Where("lower(name) LIKE lower(?) OR lower(username) LIKE lower(?)", pattern, pattern).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, storageErr("search users", err)
	}
	return users, nil
}

func (r *userRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, storageErr("list users", err)
	}
	return users, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrStorageUnavailable, op, err)
}
