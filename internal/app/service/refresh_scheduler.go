package service

import (
	"context"
	"sync"
	"time"

	"github.com/linkpro/linkpro/internal/infra/metrics"
	"go.uber.org/zap"
)

const (
	defaultRefreshInterval = 2 * time.Second
	refreshTimeout         = 5 * time.Second
)

// RefreshScheduler keeps one owner's analytics summary warm. It refreshes on
// a fixed interval and immediately on Wake, serving reads from the last
// completed snapshot so a storage hiccup never blanks the dashboard.
type RefreshScheduler struct {
	ownerID  string
	links    *LinkService
	interval time.Duration
	logger   *zap.Logger

	mu          sync.RWMutex
	summary     Summary
	refreshedAt time.Time
	accessedAt  time.Time

	// wake has capacity 1 so concurrent triggers coalesce into one cycle.
	wake     chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewRefreshScheduler(ownerID string, links *LinkService, interval time.Duration, logger *zap.Logger) *RefreshScheduler {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshScheduler{
		ownerID:    ownerID,
		links:      links,
		interval:   interval,
		logger:     logger,
		accessedAt: time.Now(),
		wake:       make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}
}

// Start runs one refresh synchronously so the first read sees data, then
// begins the periodic loop.
func (s *RefreshScheduler) Start() {
	s.refresh()
	go s.run()
}

// Stop stops the periodic loop. Safe to call more than once.
func (s *RefreshScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Wake requests an immediate refresh. Duplicate wakes while one is pending
// collapse into a single cycle, so callers may trigger freely.
func (s *RefreshScheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Snapshot returns the last completed summary and its refresh time.
func (s *RefreshScheduler) Snapshot() (Summary, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessedAt = time.Now()
	return s.summary, s.refreshedAt
}

// IdleSince reports the time of the last Snapshot read.
func (s *RefreshScheduler) IdleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessedAt
}

func (s *RefreshScheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh()
		case <-s.wake:
			s.refresh()
		case <-s.stopChan:
			s.logger.Debug("refresh scheduler stopped", zap.String("owner_id", s.ownerID))
			return
		}
	}
}

func (s *RefreshScheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	// One consistent read: counters and log entries must reflect the same
	// set of committed visits.
	links, logs, err := s.links.SnapshotByOwner(ctx, s.ownerID)
	if err != nil {
		s.logger.Warn("refresh: snapshot failed, keeping last summary",
			zap.String("owner_id", s.ownerID),
			zap.Error(err),
		)
		return
	}

	summary := BuildSummary(links, logs, time.Now())

	s.mu.Lock()
	s.summary = summary
	s.refreshedAt = time.Now()
	s.mu.Unlock()

	metrics.RefreshTicks.Inc()
}
