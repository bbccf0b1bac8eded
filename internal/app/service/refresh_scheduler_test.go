package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/linkpro/linkpro/internal/app/model"
)

// mutableLinkData backs a LinkService with data the test can change mid-run.
type mutableLinkData struct {
	mu    sync.Mutex
	links []model.ProfileLink
	logs  []model.ClickLog
}

func (d *mutableLinkData) service() *LinkService {
	linkRepo := &mockLinkRepository{
		snapshotFn: func(ctx context.Context, userID string) ([]model.ProfileLink, []model.ClickLog, error) {
			d.mu.Lock()
			defer d.mu.Unlock()
			links := make([]model.ProfileLink, len(d.links))
			copy(links, d.links)
			logs := make([]model.ClickLog, len(d.logs))
			copy(logs, d.logs)
			return links, logs, nil
		},
	}
	return NewLinkService(linkRepo, &mockClickLogRepository{}, nil, nil)
}

func (d *mutableLinkData) setClicks(n int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.links {
		d.links[i].Clicks = n
	}
}

func waitForClicks(t *testing.T, s *RefreshScheduler, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		summary, _ := s.Snapshot()
		if summary.TotalClicks == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	summary, _ := s.Snapshot()
	t.Fatalf("expected total clicks %d, got %d", want, summary.TotalClicks)
}

func TestRefreshScheduler_InitialSnapshot(t *testing.T) {
	data := &mutableLinkData{
		links: []model.ProfileLink{{ID: "link-1", UserID: "user-1", Platform: "GitHub", Clicks: 4}},
	}

	// A long interval keeps the ticker out of the way: only Start's
	// synchronous refresh and explicit wakes run.
	s := NewRefreshScheduler("user-1", data.service(), time.Hour, nil)
	s.Start()
	defer s.Stop()

	summary, refreshedAt := s.Snapshot()
	if summary.TotalClicks != 4 {
		t.Fatalf("expected initial snapshot with 4 clicks, got %d", summary.TotalClicks)
	}
	if refreshedAt.IsZero() {
		t.Fatal("expected a refresh timestamp after Start")
	}
}

func TestRefreshScheduler_Wake(t *testing.T) {
	data := &mutableLinkData{
		links: []model.ProfileLink{{ID: "link-1", UserID: "user-1", Platform: "GitHub", Clicks: 1}},
	}

	s := NewRefreshScheduler("user-1", data.service(), time.Hour, nil)
	s.Start()
	defer s.Stop()

	data.setClicks(9)

	// Duplicate wakes coalesce; triggering twice is harmless.
	s.Wake()
	s.Wake()

	waitForClicks(t, s, 9)
}

func TestRefreshScheduler_StopTwice(t *testing.T) {
	data := &mutableLinkData{}
	s := NewRefreshScheduler("user-1", data.service(), time.Hour, nil)
	s.Start()
	s.Stop()
	s.Stop()
}

func TestRefreshHub_GetReusesScheduler(t *testing.T) {
	data := &mutableLinkData{
		links: []model.ProfileLink{{ID: "link-1", UserID: "user-1", Platform: "GitHub", Clicks: 2}},
	}

	hub := NewRefreshHub(data.service(), time.Hour, time.Hour, nil)
	defer hub.Close()

	first := hub.Get("user-1")
	second := hub.Get("user-1")
	if first != second {
		t.Fatal("expected the same scheduler for repeated gets")
	}

	summary, _ := first.Snapshot()
	if summary.TotalClicks != 2 {
		t.Fatalf("expected snapshot with 2 clicks, got %d", summary.TotalClicks)
	}
}

func TestRefreshHub_WakeUnknownOwner(t *testing.T) {
	data := &mutableLinkData{}
	hub := NewRefreshHub(data.service(), time.Hour, time.Hour, nil)
	defer hub.Close()

	// No scheduler exists for this owner; the wake must not start one.
	hub.Wake("nobody")

	hub.mu.Lock()
	n := len(hub.schedulers)
	hub.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected no schedulers, got %d", n)
	}
}
