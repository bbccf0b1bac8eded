package repository

import (
	"context"
	"errors"

	"github.com/linkpro/linkpro/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository persists the single "current session" pointer that lets a
// restarted process restore its authenticated user.
type SessionRepository interface {
	Save(ctx context.Context, session *model.Session) error
	Load(ctx context.Context) (*model.Session, error)
	Clear(ctx context.Context) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository returns a GORM-backed SessionRepository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Save(ctx context.Context, session *model.Session) error {
	session.Key = model.SessionKey
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(session).Error
	if err != nil {
		return storageErr("save session", err)
	}
	return nil
}

// Load returns the persisted session, or (nil, nil) when none exists.
// Absence is a normal terminal state, not an error.
func (r *sessionRepository) Load(ctx context.Context) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).Where("key = ?", model.SessionKey).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr("load session", err)
	}
	return &session, nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("key = ?", model.SessionKey).Delete(&model.Session{}).Error; err != nil {
		return storageErr("clear session", err)
	}
	return nil
}
