// Package statuses holds the client funnel stages: a fixed base set
// plus administrator-defined extensions stored in custom_statuses.
package statuses

import (
	"strings"
	"time"
)

// Status is one funnel stage.
type Status struct {
	ID       int64  `json:"id,omitempty"`
	Key      string `json:"key"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Position int    `json:"position"`
	Custom   bool   `json:"custom"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Base is the fixed status set every installation starts with.
var Base = []Status{
	{Key: "new", Label: "New", Color: "#0d6efd", Icon: "✨", Position: 0},
	{Key: "active", Label: "Active", Color: "#20c997", Icon: "💬", Position: 1},
	{Key: "lead", Label: "Lead", Color: "#fd7e14", Icon: "🔥", Position: 2},
	{Key: "client", Label: "Client", Color: "#198754", Icon: "💅", Position: 3},
	{Key: "vip", Label: "VIP", Color: "#6f42c1", Icon: "👑", Position: 4},
	{Key: "inactive", Label: "Inactive", Color: "#6c757d", Icon: "💤", Position: 5},
	{Key: "blocked", Label: "Blocked", Color: "#dc3545", Icon: "🚫", Position: 6},
}

// IsBase reports whether key belongs to the fixed set.
func IsBase(key string) bool {
	for _, s := range Base {
		if s.Key == key {
			return true
		}
	}
	return false
}

// CreateRequest carries a new custom status.
type CreateRequest struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Position int    `json:"position"`
}

// Validate validates the create request
func (r *CreateRequest) Validate() error {
	r.Key = strings.TrimSpace(strings.ToLower(r.Key))
	if r.Key == "" {
		return ErrMissingKey
	}
	if IsBase(r.Key) {
		return ErrReservedKey
	}
	if strings.TrimSpace(r.Label) == "" {
		return ErrMissingLabel
	}
	if r.Color == "" {
		r.Color = "#6c757d"
	}
	return nil
}
