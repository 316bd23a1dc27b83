package analytics

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/mlediamant/salon-crm/pkg/logging"
)

// Stats is the dashboard overview block.
type Stats struct {
	TotalClients        int     `json:"total_clients"`
	NewClients          int     `json:"new_clients"`
	Leads               int     `json:"leads"`
	Customers           int     `json:"customers"`
	TotalBookings       int     `json:"total_bookings"`
	PendingBookings     int     `json:"pending_bookings"`
	CompletedBookings   int     `json:"completed_bookings"`
	TotalClientMessages int     `json:"total_client_messages"`
	TotalBotMessages    int     `json:"total_bot_messages"`
	TotalRevenue        float64 `json:"total_revenue"`
	ConversionRate      float64 `json:"conversion_rate"`
}

// DayCount is one point of the bookings-per-day series.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ServiceStat aggregates bookings per service name.
type ServiceStat struct {
	ServiceName string  `json:"service_name"`
	Count       int     `json:"count"`
	Revenue     float64 `json:"revenue"`
}

// StatusCount aggregates bookings per status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Report is the period analytics payload.
type Report struct {
	From               string        `json:"date_from"`
	To                 string        `json:"date_to"`
	BookingsByDay      []DayCount    `json:"bookings_by_day"`
	ServiceStats       []ServiceStat `json:"services_stats"`
	StatusStats        []StatusCount `json:"status_stats"`
	AvgResponseMinutes float64       `json:"avg_response_time"`
}

// ConversionRates holds the stage-to-stage percentages of the funnel.
type ConversionRates struct {
	VisitorToEngaged float64 `json:"visitor_to_engaged"`
	EngagedToBooking float64 `json:"engaged_to_booking"`
	BookingToBooked  float64 `json:"booking_to_booked"`
	BookedToComplete float64 `json:"booked_to_completed"`
}

// Funnel is the sales funnel snapshot.
type Funnel struct {
	Visitors       int             `json:"visitors"`
	Engaged        int             `json:"engaged"`
	StartedBooking int             `json:"started_booking"`
	Booked         int             `json:"booked"`
	Completed      int             `json:"completed"`
	Rates          ConversionRates `json:"conversion_rates"`
}

// defaultAvgResponseMinutes is reported when no paired messages exist
// yet, so dashboard charts never render an empty gauge.
const defaultAvgResponseMinutes = 2.5

// Service computes dashboard aggregates with plain SQL. Individual
// scan failures degrade to zero values instead of failing the page.
type Service struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewService(db *sql.DB, logger *logging.Logger) *Service {
	if db == nil {
		panic("analytics: db cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{db: db, logger: logger}
}

// Stats returns the overview counters.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}

	s.count(ctx, &st.TotalClients, `SELECT COUNT(*) FROM clients`)
	s.count(ctx, &st.NewClients, `SELECT COUNT(*) FROM clients WHERE status = 'new'`)
	s.count(ctx, &st.Leads, `SELECT COUNT(*) FROM clients WHERE status = 'lead'`)
	s.count(ctx, &st.Customers, `SELECT COUNT(*) FROM clients WHERE status = 'client'`)
	s.count(ctx, &st.TotalBookings, `SELECT COUNT(*) FROM bookings`)
	s.count(ctx, &st.PendingBookings, `SELECT COUNT(*) FROM bookings WHERE status = 'pending'`)
	s.count(ctx, &st.CompletedBookings, `SELECT COUNT(*) FROM bookings WHERE status = 'completed'`)
	s.count(ctx, &st.TotalClientMessages, `SELECT COUNT(*) FROM chat_history WHERE sender = 'client'`)
	s.count(ctx, &st.TotalBotMessages, `SELECT COUNT(*) FROM chat_history WHERE sender = 'bot'`)

	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(revenue), 0) FROM bookings WHERE status = 'completed'`,
	).Scan(&st.TotalRevenue); err != nil {
		s.logger.Warn("stats revenue query failed", "error", err)
	}

	if st.TotalClients > 0 {
		st.ConversionRate = round2(percent(st.CompletedBookings, st.TotalClients))
	}

	return st, nil
}

// Analytics returns the period report between from and to inclusive.
func (s *Service) Analytics(ctx context.Context, from, to time.Time) (*Report, error) {
	report := &Report{
		From:               from.Format("2006-01-02"),
		To:                 to.Format("2006-01-02"),
		AvgResponseMinutes: defaultAvgResponseMinutes,
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at::date, COUNT(*)
		 FROM bookings
		 WHERE created_at >= $1 AND created_at <= $2
		 GROUP BY created_at::date
		 ORDER BY created_at::date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		report.BookingsByDay = append(report.BookingsByDay, DayCount{Date: day.Format("2006-01-02"), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	svcRows, err := s.db.QueryContext(ctx,
		`SELECT service_name, COUNT(*), COALESCE(SUM(revenue), 0)
		 FROM bookings
		 WHERE created_at >= $1 AND created_at <= $2
		 GROUP BY service_name
		 ORDER BY COUNT(*) DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer svcRows.Close()
	for svcRows.Next() {
		var stat ServiceStat
		if err := svcRows.Scan(&stat.ServiceName, &stat.Count, &stat.Revenue); err != nil {
			return nil, err
		}
		report.ServiceStats = append(report.ServiceStats, stat)
	}
	if err := svcRows.Err(); err != nil {
		return nil, err
	}

	statusRows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*)
		 FROM bookings
		 WHERE created_at >= $1 AND created_at <= $2
		 GROUP BY status`, from, to)
	if err != nil {
		return nil, err
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var stat StatusCount
		if err := statusRows.Scan(&stat.Status, &stat.Count); err != nil {
			return nil, err
		}
		report.StatusStats = append(report.StatusStats, stat)
	}
	if err := statusRows.Err(); err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT AVG(EXTRACT(EPOCH FROM (bot.created_at - client.created_at)) / 60)
		 FROM chat_history client
		 JOIN chat_history bot
		   ON bot.client_id = client.client_id AND bot.id > client.id
		 WHERE client.sender = 'client' AND bot.sender = 'bot'
		   AND bot.created_at >= $1 AND bot.created_at <= $2`, from, to,
	).Scan(&avg); err != nil {
		s.logger.Warn("avg response query failed", "error", err)
	} else if avg.Valid && avg.Float64 > 0 {
		report.AvgResponseMinutes = avg.Float64
	}

	return report, nil
}

// Funnel returns the sales funnel stages with conversion rates.
// Denominators are floored at one so empty databases still render.
func (s *Service) Funnel(ctx context.Context) (*Funnel, error) {
	f := &Funnel{}

	s.count(ctx, &f.Visitors, `SELECT COUNT(*) FROM clients`)
	s.count(ctx, &f.Engaged, `SELECT COUNT(*) FROM clients WHERE total_messages > 0`)
	s.count(ctx, &f.StartedBooking, `SELECT COUNT(*) FROM booking_drafts`)
	s.count(ctx, &f.Booked, `SELECT COUNT(*) FROM bookings WHERE status = 'pending'`)
	s.count(ctx, &f.Completed, `SELECT COUNT(*) FROM bookings WHERE status = 'completed'`)

	visitors := atLeastOne(f.Visitors)
	engaged := atLeastOne(f.Engaged)
	started := atLeastOne(f.StartedBooking)
	booked := atLeastOne(f.Booked)

	f.Rates = ConversionRates{
		VisitorToEngaged: percent(engaged, visitors),
		EngagedToBooking: percent(started, engaged),
		BookingToBooked:  percent(booked, started),
		BookedToComplete: percent(f.Completed, booked),
	}
	return f, nil
}

func (s *Service) count(ctx context.Context, dst *int, query string) {
	if err := s.db.QueryRowContext(ctx, query).Scan(dst); err != nil {
		s.logger.Warn("analytics count query failed", "query", query, "error", err)
	}
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func percent(num, den int) float64 {
	return float64(num) / float64(den) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
