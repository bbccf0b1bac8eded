package repository

import (
	"context"

	"github.com/linkpro/linkpro/internal/app/model"
	"gorm.io/gorm"
)

// ClickLogRepository defines the data access contract for the append-only
// click log. Append never validates the link reference: dangling entries are
// tolerated and resolve to a placeholder title downstream.
type ClickLogRepository interface {
	Append(ctx context.Context, log *model.ClickLog) error
	ListByLinkIDs(ctx context.Context, linkIDs []string) ([]model.ClickLog, error)
}

type clickLogRepository struct {
	db *gorm.DB
}

// NewClickLogRepository returns a GORM-backed ClickLogRepository.
func NewClickLogRepository(db *gorm.DB) ClickLogRepository {
	return &clickLogRepository{db: db}
}

func (r *clickLogRepository) Append(ctx context.Context, log *model.ClickLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return storageErr("append click log", err)
	}
	return nil
}

// ListByLinkIDs returns matching entries in append order.
func (r *clickLogRepository) ListByLinkIDs(ctx context.Context, linkIDs []string) ([]model.ClickLog, error) {
	if len(linkIDs) == 0 {
		return nil, nil
	}
	var logs []model.ClickLog
	if err := r.db.WithContext(ctx).
		Where("link_id IN ?", linkIDs).
		Order("timestamp ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, storageErr("list click logs", err)
	}
	return logs, nil
}
