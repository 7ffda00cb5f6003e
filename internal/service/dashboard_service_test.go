package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Stats(t *testing.T) {
	store, mock := newMockStore(t)
	svc := NewDashboardService(store)
	svc.now = func() time.Time { return fixedNow }
	since := fixedNow.Add(-7 * 24 * time.Hour)

	for _, q := range []struct {
		text string
		arg  any
		n    int64
	}{
		{"SELECT COUNT(*) FROM products WHERE is_active = ?", true, 40},
		{"SELECT COUNT(*) FROM services WHERE is_active = ?", true, 8},
		{"SELECT COUNT(*) FROM news WHERE is_published = ?", true, 15},
		{"SELECT COUNT(*) FROM contact_submissions WHERE is_read = ?", false, 3},
	} {
		mock.ExpectQuery(regexp.QuoteMeta(q.text)).WithArgs(q.arg).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(q.n))
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE created_at >= ? ORDER BY created_at DESC LIMIT ?")).
		WithArgs(since, 10).
		WillReturnRows(sqlmock.NewRows([]string{"title", "created_at"}).
			AddRow("Túi khí A1", fixedNow.Add(-time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM news WHERE created_at >= ?")).
		WithArgs(since, 10).
		WillReturnRows(sqlmock.NewRows([]string{"title", "created_at"}).
			AddRow("Khai trương chi nhánh", fixedNow.Add(-3*time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM contact_submissions WHERE created_at >= ?")).
		WithArgs(since, 10).
		WillReturnRows(sqlmock.NewRows([]string{"full_name", "subject", "created_at"}).
			AddRow("Phạm E", "Báo giá", fixedNow.Add(-2*time.Hour)).
			AddRow("Võ F", nil, fixedNow.Add(-4*time.Hour)))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DashboardCounts{Products: 40, Services: 8, News: 15, Contacts: 3}, stats.Stats)
	require.Len(t, stats.RecentActivities, 4)
	assert.Equal(t, []string{"product", "contact", "news", "contact"}, []string{
		stats.RecentActivities[0].Type,
		stats.RecentActivities[1].Type,
		stats.RecentActivities[2].Type,
		stats.RecentActivities[3].Type,
	})
	assert.Equal(t, "Phạm E - Báo giá", stats.RecentActivities[1].Title)
	assert.Equal(t, "Võ F", stats.RecentActivities[3].Title)
}

func TestDashboardService_RecentActivitiesCapped(t *testing.T) {
	store, mock := newMockStore(t)
	svc := NewDashboardService(store)
	svc.now = func() time.Time { return fixedNow }

	for i := 0; i < 4; i++ {
		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	}
	products := sqlmock.NewRows([]string{"title", "created_at"})
	for i := 0; i < 10; i++ {
		products.AddRow("P", fixedNow.Add(-time.Duration(i)*time.Hour))
	}
	mock.ExpectQuery("FROM products").WillReturnRows(products)
	mock.ExpectQuery("FROM news").WillReturnRows(sqlmock.NewRows([]string{"title", "created_at"}).
		AddRow("N", fixedNow.Add(-30*time.Minute)))
	mock.ExpectQuery("FROM contact_submissions").WillReturnRows(sqlmock.NewRows([]string{"full_name", "subject", "created_at"}))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.RecentActivities, 10)
	assert.Equal(t, "news", stats.RecentActivities[1].Type)
}
