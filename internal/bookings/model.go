package bookings

import (
	"strings"
	"time"
)

// Booking statuses. Admins may set other free-form values; these two
// drive the revenue and funnel numbers.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Booking is a finalized service appointment. Date and time stay free
// text, matching how clients dictate them in chat.
type Booking struct {
	ID          int64      `json:"id"`
	ClientID    int64      `json:"client_id"`
	ServiceName string     `json:"service_name"`
	Date        string     `json:"booking_date"`
	Time        string     `json:"booking_time"`
	ClientName  string     `json:"client_name"`
	ClientPhone string     `json:"client_phone"`
	Status      string     `json:"status"`
	Revenue     float64    `json:"revenue"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CreateRequest carries a new booking.
type CreateRequest struct {
	ClientID    int64   `json:"client_id"`
	ServiceName string  `json:"service_name"`
	Date        string  `json:"booking_date"`
	Time        string  `json:"booking_time"`
	ClientName  string  `json:"client_name"`
	ClientPhone string  `json:"client_phone"`
	Revenue     float64 `json:"revenue"`
	Notes       string  `json:"notes"`
}

// Validate validates the create booking request
func (r *CreateRequest) Validate() error {
	if r.ClientID == 0 {
		return ErrMissingClient
	}
	if strings.TrimSpace(r.ServiceName) == "" {
		return ErrMissingService
	}
	return nil
}

// Draft is the per-client booking scratchpad. At most one row exists
// per client and each save overwrites it wholesale.
type Draft struct {
	ClientID    int64     `json:"client_id"`
	ServiceName string    `json:"service_name"`
	Date        string    `json:"booking_date"`
	Time        string    `json:"booking_time"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	Step        string    `json:"step"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsComplete reports whether every booking field has been collected.
func (d *Draft) IsComplete() bool {
	return d != nil &&
		d.ServiceName != "" &&
		d.Date != "" &&
		d.Time != "" &&
		d.ClientName != "" &&
		d.ClientPhone != ""
}

// ListFilter narrows the booking listing.
type ListFilter struct {
	ClientID int64
	Status   string
	Limit    int
	Offset   int
}
