package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/ignatzorin/binhminh-backend/internal/resource"
)

const (
	recentActivityWindow = 7 * 24 * time.Hour
	recentActivityLimit  = 10
)

// DashboardStats — счётчики и последние события для главной страницы админки.
type DashboardStats struct {
	Stats            DashboardCounts `json:"stats"`
	RecentActivities []Activity      `json:"recentActivities"`
}

type DashboardCounts struct {
	Products int64 `json:"products"`
	Services int64 `json:"services"`
	News     int64 `json:"news"`
	Contacts int64 `json:"contacts"`
}

// Activity — созданная за последнюю неделю запись.
type Activity struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardService собирает статистику по нескольким таблицам.
type DashboardService struct {
	store Store
	now   func() time.Time
}

func NewDashboardService(store Store) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// Stats считает активные товары, услуги, опубликованные новости и непрочитанные
// заявки, а также последние созданные записи за 7 дней.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var counts DashboardCounts
	queries := []struct {
		dst  *int64
		text string
		arg  any
	}{
		{&counts.Products, "SELECT COUNT(*) FROM products WHERE is_active = ?", true},
		{&counts.Services, "SELECT COUNT(*) FROM services WHERE is_active = ?", true},
		{&counts.News, "SELECT COUNT(*) FROM news WHERE is_published = ?", true},
		{&counts.Contacts, "SELECT COUNT(*) FROM contact_submissions WHERE is_read = ?", false},
	}
	for _, q := range queries {
		n, err := s.store.Count(ctx, resource.Statement{Text: q.text, Args: []any{q.arg}})
		if err != nil {
			return nil, fmt.Errorf("dashboard: count: %w", err)
		}
		*q.dst = n
	}

	activities, err := s.recentActivities(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{Stats: counts, RecentActivities: activities}, nil
}

// recentActivities выбирает последние записи из каждой таблицы отдельно и
// сливает их в Go: UNION с разными диалектами даты не нужен.
func (s *DashboardService) recentActivities(ctx context.Context) ([]Activity, error) {
	since := s.now().Add(-recentActivityWindow)
	sources := []struct {
		kind string
		text string
	}{
		{"product", "SELECT name AS title, created_at FROM products"},
		{"news", "SELECT title, created_at FROM news"},
		{"contact", "SELECT full_name, subject, created_at FROM contact_submissions"},
	}

	out := make([]Activity, 0, recentActivityLimit)
	for _, src := range sources {
		rows, err := s.store.Select(ctx, resource.Statement{
			Text: src.text + " WHERE created_at >= ? ORDER BY created_at DESC LIMIT ?",
			Args: []any{since, recentActivityLimit},
		})
		if err != nil {
			return nil, fmt.Errorf("dashboard: recent %s: %w", src.kind, err)
		}
		for _, row := range rows {
			out = append(out, Activity{
				Type:      src.kind,
				Title:     activityTitle(src.kind, row),
				CreatedAt: cast.ToTime(row["created_at"]),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > recentActivityLimit {
		out = out[:recentActivityLimit]
	}
	return out, nil
}

func activityTitle(kind string, row map[string]any) string {
	if kind != "contact" {
		return cast.ToString(row["title"])
	}
	name := cast.ToString(row["full_name"])
	if subject := strings.TrimSpace(cast.ToString(row["subject"])); subject != "" {
		return name + " - " + subject
	}
	return name
}
