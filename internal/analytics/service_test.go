package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCollectsCounters(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	countRow := func(n int) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"count"}).AddRow(n)
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients`).WillReturnRows(countRow(12))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE status = 'new'`).WillReturnRows(countRow(5))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE status = 'lead'`).WillReturnRows(countRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE status = 'client'`).WillReturnRows(countRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WillReturnRows(countRow(9))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'pending'`).WillReturnRows(countRow(6))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'completed'`).WillReturnRows(countRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chat_history WHERE sender = 'client'`).WillReturnRows(countRow(40))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chat_history WHERE sender = 'bot'`).WillReturnRows(countRow(38))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(revenue\), 0\) FROM bookings WHERE status = 'completed'`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(2150.0))

	svc := NewService(db, nil)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, stats.TotalClients)
	assert.Equal(t, 5, stats.NewClients)
	assert.Equal(t, 3, stats.Customers)
	assert.Equal(t, 9, stats.TotalBookings)
	assert.Equal(t, 3, stats.CompletedBookings)
	assert.Equal(t, 40, stats.TotalClientMessages)
	assert.Equal(t, 2150.0, stats.TotalRevenue)
	assert.Equal(t, 25.0, stats.ConversionRate, "3 completed of 12 clients")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsConversionRate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	countRow := func(n int) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"count"}).AddRow(n)
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients`).WillReturnRows(countRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE status = 'new'`).WillReturnRows(countRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE status = 'lead'`).WillReturnRows(countRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE status = 'client'`).WillReturnRows(countRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WillReturnRows(countRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'pending'`).WillReturnRows(countRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'completed'`).WillReturnRows(countRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chat_history WHERE sender = 'client'`).WillReturnRows(countRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chat_history WHERE sender = 'bot'`).WillReturnRows(countRow(0))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(revenue\), 0\) FROM bookings WHERE status = 'completed'`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(500.0))

	svc := NewService(db, nil)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	// 1 of 3 rounds to two decimal places.
	assert.Equal(t, 33.33, stats.ConversionRate)
}

func TestStatsConversionRateWithoutClients(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	zero := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"count"}).AddRow(0)
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients`).WillReturnRows(zero())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE status = 'new'`).WillReturnRows(zero())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE status = 'lead'`).WillReturnRows(zero())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE status = 'client'`).WillReturnRows(zero())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WillReturnRows(zero())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'pending'`).WillReturnRows(zero())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'completed'`).WillReturnRows(zero())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chat_history WHERE sender = 'client'`).WillReturnRows(zero())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chat_history WHERE sender = 'bot'`).WillReturnRows(zero())
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(revenue\), 0\) FROM bookings WHERE status = 'completed'`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.0))

	svc := NewService(db, nil)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.0, stats.ConversionRate)
}

func TestAnalyticsBuildsReport(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT created_at::date, COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"date", "count"}).
			AddRow(time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), 2).
			AddRow(time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC), 4))

	mock.ExpectQuery(`SELECT service_name, COUNT\(\*\), COALESCE\(SUM\(revenue\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"service_name", "count", "revenue"}).
			AddRow("Balayage", 4, 3600.0).
			AddRow("Gelish Manicure", 2, 260.0))

	mock.ExpectQuery(`SELECT status, COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 4).
			AddRow("completed", 2))

	mock.ExpectQuery(`SELECT AVG\(EXTRACT\(EPOCH FROM`).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(3.4))

	svc := NewService(db, nil)
	report, err := svc.Analytics(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-01", report.From)
	require.Len(t, report.BookingsByDay, 2)
	assert.Equal(t, "2026-08-10", report.BookingsByDay[0].Date)
	assert.Equal(t, 4, report.BookingsByDay[1].Count)
	require.Len(t, report.ServiceStats, 2)
	assert.Equal(t, "Balayage", report.ServiceStats[0].ServiceName)
	assert.Equal(t, 3600.0, report.ServiceStats[0].Revenue)
	require.Len(t, report.StatusStats, 2)
	assert.InDelta(t, 3.4, report.AvgResponseMinutes, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsDefaultsResponseTime(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT created_at::date, COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"date", "count"}))
	mock.ExpectQuery(`SELECT service_name, COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"service_name", "count", "revenue"}))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))
	mock.ExpectQuery(`SELECT AVG\(EXTRACT\(EPOCH FROM`).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))

	svc := NewService(db, nil)
	report, err := svc.Analytics(context.Background(), now.AddDate(0, 0, -30), now)
	require.NoError(t, err)

	assert.Empty(t, report.BookingsByDay)
	assert.InDelta(t, defaultAvgResponseMinutes, report.AvgResponseMinutes, 0.001)
}

func TestFunnelFloorsDenominators(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	countRow := func(n int) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"count"}).AddRow(n)
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients`).WillReturnRows(countRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE total_messages > 0`).WillReturnRows(countRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM booking_drafts`).WillReturnRows(countRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'pending'`).WillReturnRows(countRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'completed'`).WillReturnRows(countRow(0))

	svc := NewService(db, nil)
	funnel, err := svc.Funnel(context.Background())
	require.NoError(t, err)

	// Empty database still produces well defined percentages.
	assert.Equal(t, 100.0, funnel.Rates.VisitorToEngaged)
	assert.Equal(t, 0.0, funnel.Rates.BookedToComplete)
}

func TestFunnelRates(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	countRow := func(n int) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"count"}).AddRow(n)
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients`).WillReturnRows(countRow(100))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE total_messages > 0`).WillReturnRows(countRow(50))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM booking_drafts`).WillReturnRows(countRow(20))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'pending'`).WillReturnRows(countRow(10))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'completed'`).WillReturnRows(countRow(5))

	svc := NewService(db, nil)
	funnel, err := svc.Funnel(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, funnel.Visitors)
	assert.Equal(t, 50.0, funnel.Rates.VisitorToEngaged)
	assert.Equal(t, 40.0, funnel.Rates.EngagedToBooking)
	assert.Equal(t, 50.0, funnel.Rates.BookingToBooked)
	assert.Equal(t, 50.0, funnel.Rates.BookedToComplete)
}
