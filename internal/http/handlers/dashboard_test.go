package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlediamant/salon-crm/internal/analytics"
)

func TestDashboardStatsReturnsCounters(t *testing.T) {
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
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(revenue\), 0\) FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1250.0))

	h := NewDashboardHandler(analytics.NewService(db, nil), nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, authedRequest(t, http.MethodGet, "/admin/api/stats", nil, adminUser()))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, float64(12), body["total_clients"])
	assert.Equal(t, float64(1250), body["total_revenue"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportWindowDefaultsToThirtyDays(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/api/analytics", nil)
	from, to, err := reportWindow(r)
	require.NoError(t, err)
	assert.InDelta(t, 30*24, to.Sub(from).Hours(), 1)
}

func TestReportWindowParsesPeriod(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/api/analytics?period=7d", nil)
	from, to, err := reportWindow(r)
	require.NoError(t, err)
	assert.InDelta(t, 7*24, to.Sub(from).Hours(), 1)

	r = httptest.NewRequest(http.MethodGet, "/admin/api/analytics?period=bogus", nil)
	_, _, err = reportWindow(r)
	assert.Error(t, err)
}

func TestReportWindowParsesExplicitDates(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/api/analytics?date_from=2026-08-01&date_to=2026-08-15", nil)
	from, to, err := reportWindow(r)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), from)
	// date_to is inclusive, so the window runs to the next midnight.
	assert.Equal(t, time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC), to)

	r = httptest.NewRequest(http.MethodGet, "/admin/api/analytics?date_from=2026-08-15&date_to=2026-08-01", nil)
	_, _, err = reportWindow(r)
	assert.Error(t, err)
}
