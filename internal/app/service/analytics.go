package service

import (
	"time"

	"github.com/linkpro/linkpro/internal/app/model"
)

// Rollup defaults matching the dashboard views.
const (
	RecentActivityLimit = 5
	DailyWindowDays     = 7
)

// UnknownLinkTitle is the placeholder shown for click logs whose link no
// longer resolves. Dangling references are tolerated, never an error.
const UnknownLinkTitle = "Unknown Link"

// PlatformClicks pairs a platform string with its accumulated click count.
// Platform strings are compared exactly: distinct casings are distinct
// buckets.
type PlatformClicks struct {
	Platform string `json:"platform"`
	Clicks   int64  `json:"clicks"`
}

// DailyCount is one calendar-day bucket of click activity.
type DailyCount struct {
	Date  string `json:"date"`  // 2006-01-02
	Label string `json:"label"` // short weekday, e.g. "Mon"
	Count int    `json:"count"`
}

// ActivityEntry is one resolved entry of the recent-activity feed.
type ActivityEntry struct {
	LinkID    string    `json:"link_id"`
	Title     string    `json:"title"`
	Platform  string    `json:"platform,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is the full analytics rollup computed from one consistent snapshot
// of links and click logs. It is derived on demand and never persisted.
type Summary struct {
	TotalLinks     int              `json:"total_links"`
	TotalClicks    int64            `json:"total_clicks"`
	PlatformCount  int              `json:"platform_count"`
	PerPlatform    []PlatformClicks `json:"per_platform"`
	TopPlatform    *PlatformClicks  `json:"top_platform,omitempty"`
	DailyCounts    []DailyCount     `json:"daily_counts"`
	RecentActivity []ActivityEntry  `json:"recent_activity"`
}

// TotalClicks sums the click counters over all links.
func TotalClicks(links []model.ProfileLink) int64 {
	var total int64
	for _, l := range links {
		total += l.Clicks
	}
	return total
}

// PerPlatformClicks accumulates clicks per platform string, returned in the
// order each platform is first encountered in the links sequence.
func PerPlatformClicks(links []model.ProfileLink) []PlatformClicks {
	counts := make(map[string]int64, len(links))
	order := make([]string, 0, len(links))
	for _, l := range links {
		if _, seen := counts[l.Platform]; !seen {
			order = append(order, l.Platform)
		}
		counts[l.Platform] += l.Clicks
	}

	out := make([]PlatformClicks, 0, len(order))
	for _, p := range order {
		out = append(out, PlatformClicks{Platform: p, Clicks: counts[p]})
	}
	return out
}

// TopPlatform returns the platform with the highest accumulated clicks. Ties
// break toward the platform first encountered in the links sequence. The
// boolean is false when there are no links.
func TopPlatform(links []model.ProfileLink) (PlatformClicks, bool) {
	perPlatform := PerPlatformClicks(links)
	if len(perPlatform) == 0 {
		return PlatformClicks{}, false
	}

	top := perPlatform[0]
	for _, pc := range perPlatform[1:] {
		if pc.Clicks > top.Clicks {
			top = pc
		}
	}
	return top, true
}

// RecentActivity returns the last n click logs, most recent first, each
// resolved against links for a display title. Unresolved link ids get the
// placeholder title.
func RecentActivity(links []model.ProfileLink, logs []model.ClickLog, n int) []ActivityEntry {
	byID := make(map[string]model.ProfileLink, len(links))
	for _, l := range links {
		byID[l.ID] = l
	}

	start := len(logs) - n
	if start < 0 {
		start = 0
	}

	out := make([]ActivityEntry, 0, len(logs)-start)
	for i := len(logs) - 1; i >= start; i-- {
		log := logs[i]
		entry := ActivityEntry{
			LinkID:    log.LinkID,
			Title:     UnknownLinkTitle,
			Timestamp: log.Timestamp,
		}
		if link, ok := byID[log.LinkID]; ok {
			entry.Title = link.Title
			entry.Platform = link.Platform
		}
		out = append(out, entry)
	}
	return out
}

// DailyCounts buckets logs by calendar day over the most recent windowDays
// days ending at now, inclusive, oldest first. Days without activity appear
// with a zero count. Bucketing uses now's location as the single calendar
// reference.
func DailyCounts(logs []model.ClickLog, windowDays int, now time.Time) []DailyCount {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	perDay := make(map[string]int)
	for _, log := range logs {
		ts := log.Timestamp.In(loc)
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
		perDay[day.Format("2006-01-02")]++
	}

	out := make([]DailyCount, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		out = append(out, DailyCount{
			Date:  key,
			Label: day.Format("Mon"),
			Count: perDay[key],
		})
	}
	return out
}

// BuildSummary computes the complete rollup from one snapshot.
func BuildSummary(links []model.ProfileLink, logs []model.ClickLog, now time.Time) Summary {
	summary := Summary{
		TotalLinks:     len(links),
		TotalClicks:    TotalClicks(links),
		PerPlatform:    PerPlatformClicks(links),
		DailyCounts:    DailyCounts(logs, DailyWindowDays, now),
		RecentActivity: RecentActivity(links, logs, RecentActivityLimit),
	}
	summary.PlatformCount = len(summary.PerPlatform)
	if top, ok := TopPlatform(links); ok {
		summary.TopPlatform = &top
	}
	return summary
}
