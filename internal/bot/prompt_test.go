package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/chat"
	"github.com/mlediamant/salon-crm/internal/services"
)

var testSalon = SalonInfo{
	Name:       "M.Le Diamant",
	Address:    "JBR, Dubai",
	Phone:      "+971500000000",
	Hours:      "10:00-22:00",
	BookingURL: "https://example.com/book",
}

func TestBuildPromptIncludesSalonFacts(t *testing.T) {
	got := BuildPrompt(testSalon, nil, nil, nil)

	assert.Contains(t, got, "M.Le Diamant")
	assert.Contains(t, got, "JBR, Dubai")
	assert.Contains(t, got, "https://example.com/book")
	assert.Contains(t, got, BookingReadyMarker)
}

func TestBuildPromptGroupsCatalogByCategory(t *testing.T) {
	catalog := []*services.Service{
		{Name: "Gelish Manicure", Category: "Nails", Price: 130, Currency: "AED", Benefits: "3 weeks no chips|Japanese gel"},
		{Name: "Balayage", Category: "Hair", Price: 900, Currency: "AED", Description: "Olaplex protected"},
		{Name: "Pedicure", Category: "Nails", Price: 150, Currency: "AED"},
	}

	got := BuildPrompt(testSalon, catalog, nil, nil)

	assert.Contains(t, got, "Nails:")
	assert.Contains(t, got, "Hair:")
	assert.Contains(t, got, "- Gelish Manicure: 130 AED")
	assert.Contains(t, got, "- Balayage: 900 AED")
	assert.Contains(t, got, "Olaplex protected")
	assert.Contains(t, got, "Benefits: 3 weeks no chips, Japanese gel")

	nailsIdx := strings.Index(got, "Nails:")
	manicureIdx := strings.Index(got, "Gelish Manicure")
	pedicureIdx := strings.Index(got, "Pedicure")
	assert.Less(t, nailsIdx, manicureIdx)
	assert.Less(t, manicureIdx, pedicureIdx)
}

func TestBuildPromptRendersHistoryRoles(t *testing.T) {
	history := []*chat.Message{
		{Sender: chat.SenderClient, Message: "Привет! Сколько стоит маникюр?"},
		{Sender: chat.SenderBot, Message: "Gelish маникюр - 130 AED 💅"},
	}

	got := BuildPrompt(testSalon, nil, history, nil)

	assert.Contains(t, got, "Client: Привет! Сколько стоит маникюр?")
	assert.Contains(t, got, "You: Gelish маникюр - 130 AED 💅")
}

func TestBuildPromptRendersDraftState(t *testing.T) {
	draft := &bookings.Draft{
		ServiceName: "Balayage",
		Date:        "2026-09-01",
	}

	got := BuildPrompt(testSalon, nil, nil, draft)

	assert.Contains(t, got, "Service: Balayage")
	assert.Contains(t, got, "Date: 2026-09-01")
	assert.Contains(t, got, "Time: not provided")
	assert.Contains(t, got, "Phone: not provided")
}

func TestBuildPromptWithPersonaReplacesDefaultBlock(t *testing.T) {
	got := BuildPromptWithPersona("You are Zoe, the salon concierge.", testSalon, nil, nil, nil)

	assert.Contains(t, got, "You are Zoe, the salon concierge.")
	assert.NotContains(t, got, "virtual sales assistant")
	assert.Contains(t, got, "SALON:")
	assert.Contains(t, got, "M.Le Diamant")
	assert.Contains(t, got, BookingReadyMarker)

	// Blank persona keeps the default.
	assert.Equal(t, BuildPrompt(testSalon, nil, nil, nil),
		BuildPromptWithPersona("  \n", testSalon, nil, nil, nil))
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	catalog := []*services.Service{
		{Name: "A", Category: "One", Price: 10, Currency: "AED"},
		{Name: "B", Category: "Two", Price: 20, Currency: "AED"},
	}
	first := BuildPrompt(testSalon, catalog, nil, nil)
	second := BuildPrompt(testSalon, catalog, nil, nil)
	assert.Equal(t, first, second)
}
