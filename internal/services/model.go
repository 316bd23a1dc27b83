package services

import (
	"strings"
	"time"
)

// Service is a catalog entry. Rows are soft-deleted via is_active so
// past bookings keep their history.
type Service struct {
	ID            int64     `json:"id"`
	Key           string    `json:"service_key"`
	Name          string    `json:"name"`
	NameEN        string    `json:"name_en"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Description   string    `json:"description"`
	DescriptionEN string    `json:"description_en"`
	Benefits      string    `json:"benefits"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// BenefitList splits the pipe-delimited benefits column.
func (s *Service) BenefitList() []string {
	if s.Benefits == "" {
		return nil
	}
	parts := strings.Split(s.Benefits, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// UpsertRequest carries the editable catalog fields.
type UpsertRequest struct {
	Key           string  `json:"service_key"`
	Name          string  `json:"name"`
	NameEN        string  `json:"name_en"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	Description   string  `json:"description"`
	DescriptionEN string  `json:"description_en"`
	Benefits      string  `json:"benefits"`
}

// Validate validates the upsert request
func (r *UpsertRequest) Validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return ErrMissingKey
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if r.Price < 0 {
		return ErrNegativePrice
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
	return nil
}
