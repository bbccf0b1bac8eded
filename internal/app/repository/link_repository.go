package repository

import (
	"context"
	"errors"
	"time"

	"github.com/linkpro/linkpro/internal/app/apperrors"
	"github.com/linkpro/linkpro/internal/app/model"
	"gorm.io/gorm"
)

// LinkRepository defines the data access contract for profile links.
type LinkRepository interface {
	Create(ctx context.Context, link *model.ProfileLink) error
	GetByID(ctx context.Context, id string) (*model.ProfileLink, error)
	ListByOwner(ctx context.Context, userID string) ([]model.ProfileLink, error)
	GetByOwnerAndPlatform(ctx context.Context, userID, platform string) (*model.ProfileLink, error)
	RecordVisit(ctx context.Context, linkID string, log *model.ClickLog) (*model.ProfileLink, error)
	SnapshotByOwner(ctx context.Context, userID string) ([]model.ProfileLink, []model.ClickLog, error)
	Delete(ctx context.Context, id string) error
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.ProfileLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return storageErr("create link", err)
	}
	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id string) (*model.ProfileLink, error) {
	var link model.ProfileLink
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, storageErr("get link", err)
	}
	return &link, nil
}

// ListByOwner returns the owner's links in insertion order.
func (r *linkRepository) ListByOwner(ctx context.Context, userID string) ([]model.ProfileLink, error) {
	var links []model.ProfileLink
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&links).Error; err != nil {
		return nil, storageErr("list links", err)
	}
	return links, nil
}

func (r *linkRepository) GetByOwnerAndPlatform(ctx context.Context, userID, platform string) (*model.ProfileLink, error) {
	var link model.ProfileLink
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND lower(platform) = lower(?)", userID, platform).
		Order("created_at ASC, id ASC").
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, storageErr("get link by platform", err)
	}
	return &link, nil
}

// RecordVisit increments the click counter and appends the click log in one
// transaction. A concurrent reader never observes the log entry without the
// counter already applied, or the counter without the entry.
func (r *linkRepository) RecordVisit(ctx context.Context, linkID string, log *model.ClickLog) (*model.ProfileLink, error) {
	var updated model.ProfileLink
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.ProfileLink{}).
			Where("id = ?", linkID).
			Updates(map[string]interface{}{
				"clicks":     gorm.Expr("clicks + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrLinkNotFound
		}
		if err := tx.Create(log).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", linkID).First(&updated).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrLinkNotFound) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, storageErr("record visit", err)
	}
	return &updated, nil
}

// SnapshotByOwner reads the owner's links and their click logs inside one
// transaction, so both sides of a committed visit appear together. A visit
// committing between the two reads can never split the snapshot the way two
// independent queries would.
func (r *linkRepository) SnapshotByOwner(ctx context.Context, userID string) ([]model.ProfileLink, []model.ClickLog, error) {
	var links []model.ProfileLink
	var logs []model.ClickLog
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ?", userID).
			Order("created_at ASC, id ASC").
			Find(&links).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		ids := make([]string, 0, len(links))
		for _, l := range links {
			ids = append(ids, l.ID)
		}
		return tx.
			Where("link_id IN ?", ids).
			Order("timestamp ASC, id ASC").
			Find(&logs).Error
	})
	if err != nil {
		return nil, nil, storageErr("snapshot links", err)
	}
	return links, logs, nil
}

func (r *linkRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProfileLink{})
	if result.Error != nil {
		return storageErr("delete link", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLinkNotFound
	}
	return nil
}
