package clients

import (
	"strings"
	"time"
)

// Client is an external contact identified by their Instagram user ID.
type Client struct {
	ID            int64     `json:"id"`
	InstagramID   string    `json:"instagram_id"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	Phone         string    `json:"phone"`
	Status        string    `json:"status"`
	Labels        string    `json:"labels"`
	Notes         string    `json:"notes"`
	TotalMessages int       `json:"total_messages"`
	LifetimeValue float64   `json:"lifetime_value"`
	IsPinned      bool      `json:"is_pinned"`
	FirstContact  time.Time `json:"first_contact"`
	LastContact   time.Time `json:"last_contact"`
}

// UpdateRequest carries the admin-editable fields of a client.
type UpdateRequest struct {
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Status        string  `json:"status"`
	Labels        string  `json:"labels"`
	Notes         string  `json:"notes"`
	LifetimeValue float64 `json:"lifetime_value"`
	IsPinned      bool    `json:"is_pinned"`
}

// Validate validates the update request
func (r *UpdateRequest) Validate() error {
	if strings.TrimSpace(r.Status) == "" {
		return ErrInvalidStatus
	}
	return nil
}

// ListFilter narrows the client listing.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}
