package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/linkpro/linkpro/internal/app/apperrors"
	"github.com/linkpro/linkpro/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.ProfileLink{}, &model.ClickLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedLink(t *testing.T, db *gorm.DB, userID string) *model.ProfileLink {
	t.Helper()
	link := &model.ProfileLink{
		ID:       uuid.New().String(),
		UserID:   userID,
		Platform: "GitHub",
		URL:      "https://github.com/ana",
		Title:    "GitHub",
	}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}
	return link
}

func visitLog(linkID string) *model.ClickLog {
	return &model.ClickLog{
		ID:        uuid.New().String(),
		LinkID:    linkID,
		Timestamp: time.Now(),
		UserAgent: "test-agent",
	}
}

func TestLinkRepository_RecordVisit_CounterMatchesLog(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()
	link := seedLink(t, db, "owner-1")

	const visits = 5
	for i := 0; i < visits; i++ {
		updated, err := repo.RecordVisit(ctx, link.ID, visitLog(link.ID))
		if err != nil {
			t.Fatalf("RecordVisit %d returned error: %v", i, err)
		}
		if updated.Clicks != int64(i+1) {
			t.Fatalf("expected %d clicks after visit %d, got %d", i+1, i, updated.Clicks)
		}
	}

	var logCount int64
	if err := db.Model(&model.ClickLog{}).Where("link_id = ?", link.ID).Count(&logCount).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if logCount != visits {
		t.Fatalf("expected %d log entries, got %d", visits, logCount)
	}
}

func TestLinkRepository_RecordVisit_RollsBackOnFailedAppend(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()
	link := seedLink(t, db, "owner-1")

	first := visitLog(link.ID)
	if _, err := repo.RecordVisit(ctx, link.ID, first); err != nil {
		t.Fatalf("RecordVisit returned error: %v", err)
	}

	// Reusing the log id makes the append fail after the counter update; the
	// whole transaction must roll back.
	dup := visitLog(link.ID)
	dup.ID = first.ID
	if _, err := repo.RecordVisit(ctx, link.ID, dup); err == nil {
		t.Fatal("expected error for duplicate log id")
	}

	got, err := repo.GetByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Clicks != 1 {
		t.Fatalf("expected counter rolled back to 1, got %d", got.Clicks)
	}
	var logCount int64
	if err := db.Model(&model.ClickLog{}).Where("link_id = ?", link.ID).Count(&logCount).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if logCount != 1 {
		t.Fatalf("expected 1 log entry, got %d", logCount)
	}
}

func TestLinkRepository_RecordVisit_UnknownLink(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)

	_, err := repo.RecordVisit(context.Background(), "missing", visitLog("missing"))
	if !errors.Is(err, apperrors.ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}

	var logCount int64
	if err := db.Model(&model.ClickLog{}).Count(&logCount).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if logCount != 0 {
		t.Fatalf("expected no log entries, got %d", logCount)
	}
}

func TestLinkRepository_SnapshotByOwner_NeverDiverges(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()
	link := seedLink(t, db, "owner-1")

	// Visits commit concurrently with the snapshot reads; every snapshot
	// must show the counter and the log agreeing on the visits so far.
	const visits = 30
	writeErrs := make(chan error, 1)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < visits; i++ {
			if _, err := repo.RecordVisit(ctx, link.ID, visitLog(link.ID)); err != nil {
				select {
				case writeErrs <- fmt.Errorf("visit %d: %w", i, err):
				default:
				}
				return
			}
		}
	}()

	for {
		links, logs, err := repo.SnapshotByOwner(ctx, "owner-1")
		if err != nil {
			t.Fatalf("SnapshotByOwner returned error: %v", err)
		}
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d", len(links))
		}
		if links[0].Clicks != int64(len(logs)) {
			t.Fatalf("snapshot diverged: counter=%d but %d log entries", links[0].Clicks, len(logs))
		}
		select {
		case <-done:
			wg.Wait()
			select {
			case err := <-writeErrs:
				t.Fatalf("visit failed: %v", err)
			default:
			}
			links, logs, err := repo.SnapshotByOwner(ctx, "owner-1")
			if err != nil {
				t.Fatalf("final SnapshotByOwner returned error: %v", err)
			}
			if links[0].Clicks != visits || len(logs) != visits {
				t.Fatalf("expected %d clicks and %d log entries, got %d and %d",
					visits, visits, links[0].Clicks, len(logs))
			}
			return
		default:
		}
	}
}
