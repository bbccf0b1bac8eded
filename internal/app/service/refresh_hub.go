package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultIdleTimeout = 5 * time.Minute
	janitorInterval    = time.Minute
)

// RefreshHub owns one RefreshScheduler per dashboard owner. Schedulers start
// on first use and are torn down by a janitor once nobody has read their
// snapshot for the idle timeout, mirroring a dashboard view going away.
type RefreshHub struct {
	links       *LinkService
	interval    time.Duration
	idleTimeout time.Duration
	logger      *zap.Logger

	mu         sync.Mutex
	schedulers map[string]*RefreshScheduler

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewRefreshHub(links *LinkService, interval, idleTimeout time.Duration, logger *zap.Logger) *RefreshHub {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &RefreshHub{
		links:       links,
		interval:    interval,
		idleTimeout: idleTimeout,
		logger:      logger,
		schedulers:  make(map[string]*RefreshScheduler),
		stopChan:    make(chan struct{}),
	}
	go h.janitor()
	return h
}

// Get returns the owner's scheduler, starting one on first use.
func (h *RefreshHub) Get(ownerID string) *RefreshScheduler {
	h.mu.Lock()
	s, ok := h.schedulers[ownerID]
	if !ok {
		s = NewRefreshScheduler(ownerID, h.links, h.interval, h.logger)
		h.schedulers[ownerID] = s
		h.mu.Unlock()
		s.Start()
		return s
	}
	h.mu.Unlock()
	return s
}

// Wake triggers an immediate refresh for the owner if a scheduler is
// running. It never starts one: a click for an owner with no open dashboard
// has nothing to refresh.
func (h *RefreshHub) Wake(ownerID string) {
	h.mu.Lock()
	s, ok := h.schedulers[ownerID]
	h.mu.Unlock()
	if ok {
		s.Wake()
	}
}

// Close stops the janitor and every scheduler.
func (h *RefreshHub) Close() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.schedulers {
		s.Stop()
		delete(h.schedulers, id)
	}
}

func (h *RefreshHub) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.reap()
		case <-h.stopChan:
			return
		}
	}
}

func (h *RefreshHub) reap() {
	cutoff := time.Now().Add(-h.idleTimeout)

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.schedulers {
		if s.IdleSince().Before(cutoff) {
			s.Stop()
			delete(h.schedulers, id)
			h.logger.Debug("idle refresh scheduler reaped", zap.String("owner_id", id))
		}
	}
}
