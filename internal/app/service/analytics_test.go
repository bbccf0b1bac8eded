package service

import (
	"testing"
	"time"

	"github.com/linkpro/linkpro/internal/app/model"
)

func TestTotalClicks(t *testing.T) {
	links := []model.ProfileLink{
		{ID: "a", Clicks: 3},
		{ID: "b", Clicks: 0},
		{ID: "c", Clicks: 7},
	}
	if got := TotalClicks(links); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := TotalClicks(nil); got != 0 {
		t.Fatalf("expected 0 for no links, got %d", got)
	}
}

func TestPerPlatformClicks_ExactCase(t *testing.T) {
	// Platform strings with different casings are distinct buckets.
	links := []model.ProfileLink{
		{Platform: "GitHub", Clicks: 2},
		{Platform: "github", Clicks: 3},
		{Platform: "GitHub", Clicks: 1},
	}

	got := PerPlatformClicks(links)
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(got))
	}
	if got[0].Platform != "GitHub" || got[0].Clicks != 3 {
		t.Errorf("expected GitHub=3 first, got %s=%d", got[0].Platform, got[0].Clicks)
	}
	if got[1].Platform != "github" || got[1].Clicks != 3 {
		t.Errorf("expected github=3 second, got %s=%d", got[1].Platform, got[1].Clicks)
	}
}

func TestTopPlatform(t *testing.T) {
	if _, ok := TopPlatform(nil); ok {
		t.Fatal("expected no top platform for no links")
	}

	links := []model.ProfileLink{
		{Platform: "GitHub", Clicks: 4},
		{Platform: "LinkedIn", Clicks: 9},
		{Platform: "Twitter", Clicks: 1},
	}
	top, ok := TopPlatform(links)
	if !ok || top.Platform != "LinkedIn" || top.Clicks != 9 {
		t.Fatalf("expected LinkedIn=9, got %+v ok=%v", top, ok)
	}

	// Ties break toward the platform seen first.
	tied := []model.ProfileLink{
		{Platform: "Medium", Clicks: 5},
		{Platform: "YouTube", Clicks: 5},
	}
	top, ok = TopPlatform(tied)
	if !ok || top.Platform != "Medium" {
		t.Fatalf("expected tie to break to Medium, got %+v", top)
	}
}

func TestRecentActivity(t *testing.T) {
	links := []model.ProfileLink{
		{ID: "link-1", Title: "My GitHub", Platform: "GitHub"},
	}
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	logs := make([]model.ClickLog, 0, 7)
	for i := 0; i < 7; i++ {
		id := "link-1"
		if i == 6 {
			id = "deleted-link"
		}
		logs = append(logs, model.ClickLog{
			ID:        string(rune('a' + i)),
			LinkID:    id,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	got := RecentActivity(links, logs, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}

	// Most recent first.
	if !got[0].Timestamp.After(got[1].Timestamp) {
		t.Error("expected entries in reverse chronological order")
	}

	// The newest log points at a link that no longer exists.
	if got[0].Title != UnknownLinkTitle {
		t.Errorf("expected placeholder title, got %q", got[0].Title)
	}
	if got[1].Title != "My GitHub" {
		t.Errorf("expected resolved title, got %q", got[1].Title)
	}
}

func TestDailyCounts(t *testing.T) {
	now := time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)

	logs := []model.ClickLog{
		{LinkID: "a", Timestamp: now.Add(-1 * time.Hour)},                    // today
		{LinkID: "a", Timestamp: now.AddDate(0, 0, -2)},                      // two days ago
		{LinkID: "a", Timestamp: now.AddDate(0, 0, -2).Add(2 * time.Hour)},   // two days ago
		{LinkID: "a", Timestamp: now.AddDate(0, 0, -10)},                     // outside the window
		{LinkID: "a", Timestamp: time.Date(2026, 8, 14, 0, 0, 1, 0, time.UTC)}, // window edge, oldest day
	}

	got := DailyCounts(logs, 7, now)
	if len(got) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(got))
	}

	if got[0].Date != "2026-08-14" {
		t.Errorf("expected oldest bucket 2026-08-14 first, got %s", got[0].Date)
	}
	if got[6].Date != "2026-08-20" {
		t.Errorf("expected today last, got %s", got[6].Date)
	}

	if got[0].Count != 1 {
		t.Errorf("expected 1 click on the oldest day, got %d", got[0].Count)
	}
	if got[4].Count != 2 {
		t.Errorf("expected 2 clicks two days ago, got %d", got[4].Count)
	}
	if got[6].Count != 1 {
		t.Errorf("expected 1 click today, got %d", got[6].Count)
	}

	// Idle days still appear, zero-filled.
	if got[5].Count != 0 {
		t.Errorf("expected zero-filled bucket, got %d", got[5].Count)
	}

	// 2026-08-14 was a Friday.
	if got[0].Label != "Fri" {
		t.Errorf("expected weekday label Fri, got %q", got[0].Label)
	}
}

func TestBuildSummary(t *testing.T) {
	now := time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)
	links := []model.ProfileLink{
		{ID: "link-1", Title: "My GitHub", Platform: "GitHub", Clicks: 2},
		{ID: "link-2", Title: "My Blog", Platform: "Medium", Clicks: 0},
	}
	logs := []model.ClickLog{
		{ID: "c1", LinkID: "link-1", Timestamp: now.Add(-time.Hour)},
		{ID: "c2", LinkID: "link-1", Timestamp: now.Add(-30 * time.Minute)},
	}

	summary := BuildSummary(links, logs, now)
	if summary.TotalLinks != 2 {
		t.Errorf("expected 2 links, got %d", summary.TotalLinks)
	}
	if summary.TotalClicks != 2 {
		t.Errorf("expected 2 clicks, got %d", summary.TotalClicks)
	}
	if summary.PlatformCount != 2 {
		t.Errorf("expected 2 platforms, got %d", summary.PlatformCount)
	}
	if summary.TopPlatform == nil || summary.TopPlatform.Platform != "GitHub" {
		t.Errorf("expected top platform GitHub, got %+v", summary.TopPlatform)
	}
	if len(summary.DailyCounts) != DailyWindowDays {
		t.Errorf("expected %d daily buckets, got %d", DailyWindowDays, len(summary.DailyCounts))
	}
	if len(summary.RecentActivity) != 2 {
		t.Errorf("expected 2 recent entries, got %d", len(summary.RecentActivity))
	}

	empty := BuildSummary(nil, nil, now)
	if empty.TopPlatform != nil {
		t.Error("expected no top platform for an empty profile")
	}
	if len(empty.DailyCounts) != DailyWindowDays {
		t.Errorf("expected zero-filled daily buckets, got %d", len(empty.DailyCounts))
	}
}
