package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// Service composes and sends the application's transactional emails.
type Service struct {
	email     EmailSender
	salonName string
	baseURL   string
	logger    *logging.Logger
}

// NewService creates a notification service. baseURL is the public
// address of the admin panel, used to build reset links.
func NewService(email EmailSender, salonName, baseURL string, logger *logging.Logger) *Service {
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if salonName == "" {
		salonName = "Salon CRM"
	}
	return &Service{
		email:     email,
		salonName: salonName,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}
}

// SendPasswordReset emails a single-use reset link to the user.
func (s *Service) SendPasswordReset(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)

	body := fmt.Sprintf(`Hello%s,

We received a request to reset your %s admin password.

Open the link below to choose a new password. The link is valid for one hour and can be used once:

%s

If you did not request this, you can safely ignore this email.`, greeting(name), s.salonName, link)

	html := fmt.Sprintf(`<p>Hello%s,</p>
<p>We received a request to reset your <b>%s</b> admin password.</p>
<p><a href="%s">Reset your password</a> (valid for one hour, single use).</p>
<p>If you did not request this, you can safely ignore this email.</p>`, greeting(name), s.salonName, link)

	msg := EmailMessage{
		To:      to,
		ToName:  name,
		Subject: fmt.Sprintf("%s — password reset", s.salonName),
		Body:    body,
		HTML:    html,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: password reset email: %w", err)
	}
	return nil
}

// SendBookingNotification emails the admin about a new booking.
func (s *Service) SendBookingNotification(ctx context.Context, to string, b *bookings.Booking) error {
	if b == nil {
		return fmt.Errorf("notify: booking is nil")
	}

	body := fmt.Sprintf(`New booking at %s:

Service: %s
Date: %s at %s
Client: %s
Phone: %s`, s.salonName, b.ServiceName, b.Date, b.Time, b.ClientName, b.ClientPhone)

	msg := EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("%s — new booking: %s", s.salonName, b.ServiceName),
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking email: %w", err)
	}
	return nil
}

func greeting(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return " " + name
}
