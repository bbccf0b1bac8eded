package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linkpro/linkpro/internal/app/apperrors"
	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/linkpro/linkpro/internal/app/repository"
	"github.com/linkpro/linkpro/internal/infra/metrics"
	"go.uber.org/zap"
)

// ClickNotifier receives committed click events for fan-out. Implementations
// must tolerate being called concurrently.
type ClickNotifier interface {
	Publish(event model.ClickEvent) error
}

// LinkService implements the owner-facing link operations and the visit
// tracking path shared by the redirect and search flows.
type LinkService struct {
	links    repository.LinkRepository
	clicks   repository.ClickLogRepository
	notifier ClickNotifier
	logger   *zap.Logger
}

// NewLinkService returns a link service. notifier may be nil when no fan-out
// channel is configured.
func NewLinkService(links repository.LinkRepository, clicks repository.ClickLogRepository, notifier ClickNotifier, logger *zap.Logger) *LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkService{
		links:    links,
		clicks:   clicks,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateLink adds a link for the owner. The platform string is accepted as
// given; only url and title are required.
func (s *LinkService) CreateLink(ctx context.Context, userID, platform, url, title, description string) (*model.ProfileLink, error) {
	if strings.TrimSpace(url) == "" {
		return nil, apperrors.Validation("url is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.Validation("title is required")
	}

	now := time.Now()
	link := &model.ProfileLink{
		ID:          uuid.New().String(),
		UserID:      userID,
		Platform:    platform,
		URL:         url,
		Title:       title,
		Description: description,
		Clicks:      0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("link created",
		zap.String("link_id", link.ID),
		zap.String("user_id", userID),
		zap.String("platform", platform),
	)
	return link, nil
}

// ListByOwner returns the owner's links in insertion order.
func (s *LinkService) ListByOwner(ctx context.Context, userID string) ([]model.ProfileLink, error) {
	return s.links.ListByOwner(ctx, userID)
}

// GetLink resolves a link by id.
func (s *LinkService) GetLink(ctx context.Context, id string) (*model.ProfileLink, error) {
	return s.links.GetByID(ctx, id)
}

// GetByOwnerAndPlatform resolves the owner's link for a platform string,
// matched case-insensitively. Used by the public redirect page.
func (s *LinkService) GetByOwnerAndPlatform(ctx context.Context, userID, platform string) (*model.ProfileLink, error) {
	return s.links.GetByOwnerAndPlatform(ctx, userID, platform)
}

// RecordVisit increments the link's counter and appends the click log as one
// logical operation: readers never see one without the other. The committed
// event is then handed to the notifier, best effort.
func (s *LinkService) RecordVisit(ctx context.Context, linkID, userAgent, referrer string) (*model.ProfileLink, error) {
	log := &model.ClickLog{
		ID:        uuid.New().String(),
		LinkID:    linkID,
		Timestamp: time.Now(),
		UserAgent: userAgent,
		Referrer:  referrer,
	}

	link, err := s.links.RecordVisit(ctx, linkID, log)
	if err != nil {
		return nil, err
	}
	metrics.ClicksRecorded.Inc()

	if s.notifier != nil {
		event := model.ClickEvent{
			ID:        log.ID,
			LinkID:    link.ID,
			OwnerID:   link.UserID,
			Platform:  link.Platform,
			UserAgent: userAgent,
			Referrer:  referrer,
			Timestamp: log.Timestamp,
		}
		go func() {
			if err := s.notifier.Publish(event); err != nil {
				s.logger.Warn("failed to publish click event",
					zap.Error(err),
					zap.String("link_id", event.LinkID),
				)
			}
		}()
	}

	return link, nil
}

// DeleteLink removes a link permanently. Only the owner may delete it.
func (s *LinkService) DeleteLink(ctx context.Context, linkID, requesterUserID string) error {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link.UserID != requesterUserID {
		return apperrors.ErrForbidden
	}
	if err := s.links.Delete(ctx, linkID); err != nil {
		return err
	}

	s.logger.Info("link deleted",
		zap.String("link_id", linkID),
		zap.String("user_id", requesterUserID),
	)
	return nil
}

// ListClickLogs returns the click log entries for the given links in append
// order.
func (s *LinkService) ListClickLogs(ctx context.Context, linkIDs []string) ([]model.ClickLog, error) {
	return s.clicks.ListByLinkIDs(ctx, linkIDs)
}

// SnapshotByOwner returns the owner's links and click logs from one
// consistent read: counters and log entries always agree on the visits they
// reflect.
func (s *LinkService) SnapshotByOwner(ctx context.Context, userID string) ([]model.ProfileLink, []model.ClickLog, error) {
	return s.links.SnapshotByOwner(ctx, userID)
}
