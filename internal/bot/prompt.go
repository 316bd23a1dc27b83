package bot

import (
	"fmt"
	"strings"

	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/chat"
	"github.com/mlediamant/salon-crm/internal/services"
)

// BookingReadyMarker is the token the model is instructed to emit when a
// conversation has collected every booking detail. It is stripped before
// the reply is sent to the client.
const BookingReadyMarker = "BOOKING_READY"

// SalonInfo holds the static business facts embedded in every prompt.
type SalonInfo struct {
	Name       string
	Address    string
	Phone      string
	Hours      string
	BookingURL string
}

// BuildPrompt assembles the system instruction for the sales assistant.
// It is a pure function of the salon facts, the persisted service
// catalog, the recent conversation history, and the booking draft.
// Prices and availability always come from the catalog, never invented.
func BuildPrompt(info SalonInfo, catalog []*services.Service, history []*chat.Message, draft *bookings.Draft) string {
	return BuildPromptWithPersona("", info, catalog, history, draft)
}

// BuildPromptWithPersona is BuildPrompt with the built-in persona block
// replaced by the admin-configured one. An empty persona keeps the
// default. The salon facts, catalog, history, and booking sections are
// appended either way.
func BuildPromptWithPersona(persona string, info SalonInfo, catalog []*services.Service, history []*chat.Message, draft *bookings.Draft) string {
	var b strings.Builder

	if persona = strings.TrimSpace(persona); persona != "" {
		b.WriteString(persona)
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "You are the virtual sales assistant of %q, a premium beauty salon.\n", info.Name)
		b.WriteString(`Your mission: advise clients on services, highlight their value, and guide clients to book online.

PERSONALITY:
- Warm, confident, and expert in the beauty industry.
- Answers are short and engaging, 2-4 sentences, a couple of emoji at most.
- Always reply in the language the client writes in.

PRICING RULES:
- When asked about a price, always quote the exact price from the service list below.
- Never invent prices, discounts, or services that are not in the list.
- Justify the price with value: what is included, the quality of materials, how long the result lasts.

BOOKING RULES:
- You are an AI assistant and cannot book clients directly.
- You do not know the live schedule, free slots, or staff names. Never invent them.
- When a client wants to book, point them to the online booking page.
`)
	}

	b.WriteString("\nSALON:\n")
	fmt.Fprintf(&b, "Name: %s\n", info.Name)
	if info.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", info.Address)
	}
	if info.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", info.Phone)
	}
	if info.Hours != "" {
		fmt.Fprintf(&b, "Hours: %s\n", info.Hours)
	}
	if info.BookingURL != "" {
		fmt.Fprintf(&b, "Online booking: %s\n", info.BookingURL)
	}

	if len(catalog) > 0 {
		b.WriteString("\nSERVICES (with prices):\n")
		writeCatalog(&b, catalog)
	}

	if len(history) > 0 {
		b.WriteString("\nCONVERSATION SO FAR (oldest first):\n")
		for _, msg := range history {
			role := "Client"
			if msg.Sender == chat.SenderBot {
				role = "You"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, msg.Message)
		}
	}

	if draft != nil {
		b.WriteString("\nBOOKING DETAILS COLLECTED SO FAR:\n")
		fmt.Fprintf(&b, "Service: %s\n", orUnknown(draft.ServiceName))
		fmt.Fprintf(&b, "Date: %s\n", orUnknown(draft.Date))
		fmt.Fprintf(&b, "Time: %s\n", orUnknown(draft.Time))
		fmt.Fprintf(&b, "Name: %s\n", orUnknown(draft.ClientName))
		fmt.Fprintf(&b, "Phone: %s\n", orUnknown(draft.ClientPhone))
	}

	fmt.Fprintf(&b, "\nIf the client has explicitly confirmed all booking details, include the token %s in your reply. Otherwise never mention that token.\n", BookingReadyMarker)
	b.WriteString("\nThe client has just sent you a message. Advise, inspire, and guide them toward booking.")

	return b.String()
}

// writeCatalog renders active services grouped by category, preserving
// the catalog's ordering within each group.
func writeCatalog(b *strings.Builder, catalog []*services.Service) {
	order := make([]string, 0, 4)
	grouped := make(map[string][]*services.Service)
	for _, svc := range catalog {
		if _, seen := grouped[svc.Category]; !seen {
			order = append(order, svc.Category)
		}
		grouped[svc.Category] = append(grouped[svc.Category], svc)
	}

	for _, category := range order {
		fmt.Fprintf(b, "\n%s:\n", category)
		for _, svc := range grouped[category] {
			fmt.Fprintf(b, "- %s: %.0f %s\n", svc.Name, svc.Price, svc.Currency)
			if svc.Description != "" {
				fmt.Fprintf(b, "  %s\n", svc.Description)
			}
			if benefits := svc.BenefitList(); len(benefits) > 0 {
				if len(benefits) > 2 {
					benefits = benefits[:2]
				}
				fmt.Fprintf(b, "  Benefits: %s\n", strings.Join(benefits, ", "))
			}
		}
	}
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not provided"
	}
	return v
}
