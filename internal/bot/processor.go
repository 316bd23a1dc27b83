package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/botcfg"
	"github.com/mlediamant/salon-crm/internal/channels/instagram"
	"github.com/mlediamant/salon-crm/internal/chat"
	"github.com/mlediamant/salon-crm/internal/clients"
	"github.com/mlediamant/salon-crm/internal/observability/metrics"
	"github.com/mlediamant/salon-crm/internal/services"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

var botTracer = otel.Tracer("saloncrm.internal.bot")

// apologyReply is sent when every LLM provider failed. The client still
// gets an answer and the failure stays visible in the logs.
const apologyReply = "Sorry, something went wrong on our side. Please try again in a moment! 😊"

// MessageSender sends replies back through the messaging provider.
type MessageSender interface {
	SendTextMessage(ctx context.Context, recipientID, text string) (*instagram.SendResponse, error)
	SendTypingIndicator(ctx context.Context, recipientID string) error
}

// Broadcaster pushes events to connected dashboard sessions. Optional.
type Broadcaster interface {
	Broadcast(eventType string, payload any)
}

// ProcessorConfig carries the tunables of the inbound flow.
type ProcessorConfig struct {
	Salon        SalonInfo
	ModelID      string
	HistoryLimit int
	// AutoFinalize gates automatic booking creation from the completion
	// marker. Disabled by default: bookings arrive through the admin
	// panel or the external booking URL instead.
	AutoFinalize bool
}

// Processor implements the webhook MessageProcessor: it persists the
// inbound message, asks the LLM for a sales reply, and sends it back.
type Processor struct {
	clients  clients.Repository
	chat     chat.Repository
	bookings bookings.Repository
	drafts   bookings.DraftRepository
	catalog  services.Repository
	settings botcfg.Store
	llm      LLMClient
	sender   MessageSender
	events   Broadcaster
	metrics  *metrics.BotMetrics
	logger   *logging.Logger
	cfg      ProcessorConfig
}

func NewProcessor(
	clientRepo clients.Repository,
	chatRepo chat.Repository,
	bookingRepo bookings.Repository,
	draftRepo bookings.DraftRepository,
	catalogRepo services.Repository,
	settings botcfg.Store,
	llm LLMClient,
	sender MessageSender,
	logger *logging.Logger,
	cfg ProcessorConfig,
) *Processor {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	return &Processor{
		clients:  clientRepo,
		chat:     chatRepo,
		bookings: bookingRepo,
		drafts:   draftRepo,
		catalog:  catalogRepo,
		settings: settings,
		llm:      llm,
		sender:   sender,
		logger:   logger,
		cfg:      cfg,
	}
}

// WithBroadcaster attaches a live-event sink for the dashboard feed.
func (p *Processor) WithBroadcaster(b Broadcaster) *Processor {
	p.events = b
	return p
}

// WithMetrics attaches Prometheus instrumentation.
func (p *Processor) WithMetrics(m *metrics.BotMetrics) *Processor {
	p.metrics = m
	return p
}

// ProcessMessage handles one inbound Instagram message end to end.
func (p *Processor) ProcessMessage(ctx context.Context, msg instagram.ParsedInboundMessage) error {
	ctx, span := botTracer.Start(ctx, "bot.process_message")
	defer span.End()
	span.SetAttributes(attribute.String("instagram.sender_id", msg.SenderID))

	started := time.Now()
	status := "ok"
	defer func() {
		p.metrics.ObserveInbound(status)
		p.metrics.ObserveReplyLatency(status, time.Since(started).Seconds())
	}()

	settings, err := p.settings.Get(ctx)
	if err != nil {
		p.logger.Warn("bot settings unavailable, assuming enabled", "error", err)
		settings = &botcfg.Settings{IsEnabled: true}
	}
	if !settings.IsEnabled {
		status = "disabled"
		p.logger.Info("bot disabled, storing message without reply", "sender_id", msg.SenderID)
	}

	client, created, err := p.clients.GetOrCreate(ctx, msg.SenderID, "")
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("bot: upsert client: %w", err)
	}
	if created {
		p.logger.Info("new client from instagram", "client_id", client.ID, "instagram_id", client.InstagramID)
	}

	inbound, err := p.chat.Append(ctx, &chat.AppendRequest{
		ClientID: client.ID,
		Sender:   chat.SenderClient,
		Message:  msg.Text,
		Type:     chat.TypeText,
	})
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("bot: store inbound message: %w", err)
	}
	p.broadcast("new_message", inbound)

	if !settings.IsEnabled {
		return nil
	}

	if err := p.sender.SendTypingIndicator(ctx, msg.SenderID); err != nil {
		p.logger.Warn("typing indicator failed", "error", err)
	}

	reply, err := p.generateReply(ctx, client.ID, msg.Text, settings.SystemPrompt)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("all LLM providers failed", "client_id", client.ID, "error", err)
		reply = apologyReply
	}

	reply, err = p.applyBookingMarker(ctx, client.ID, reply)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return err
	}

	outbound, err := p.chat.Append(ctx, &chat.AppendRequest{
		ClientID: client.ID,
		Sender:   chat.SenderBot,
		Message:  reply,
		Type:     chat.TypeText,
	})
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("bot: store reply: %w", err)
	}
	p.broadcast("new_message", outbound)

	if _, err := p.sender.SendTextMessage(ctx, msg.SenderID, reply); err != nil {
		status = "error"
		span.RecordError(err)
		p.metrics.ObserveOutbound("error", "reply")
		return fmt.Errorf("bot: send reply: %w", err)
	}
	p.metrics.ObserveOutbound("sent", "reply")

	return nil
}

// generateReply builds the prompt from persisted state and asks the
// LLM. persona, when set, replaces the default persona block.
func (p *Processor) generateReply(ctx context.Context, clientID int64, text, persona string) (string, error) {
	history, err := p.chat.History(ctx, clientID, p.cfg.HistoryLimit)
	if err != nil {
		return "", fmt.Errorf("bot: load history: %w", err)
	}

	draft, err := p.drafts.Get(ctx, clientID)
	if err != nil && !errors.Is(err, bookings.ErrDraftNotFound) {
		return "", fmt.Errorf("bot: load draft: %w", err)
	}

	catalog, err := p.catalog.List(ctx, true)
	if err != nil {
		return "", fmt.Errorf("bot: load catalog: %w", err)
	}

	prompt := BuildPromptWithPersona(persona, p.cfg.Salon, catalog, history, draft)

	messages := make([]ChatMessage, 0, len(history)+1)
	for _, m := range history {
		role := ChatRoleUser
		if m.Sender == chat.SenderBot {
			role = ChatRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: m.Message})
	}
	// History already contains the inbound row; fall back to the raw
	// text if it somehow does not.
	if len(messages) == 0 {
		messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: text})
	}

	resp, err := p.llm.Complete(ctx, LLMRequest{
		Model:       p.cfg.ModelID,
		System:      []string{prompt},
		Messages:    messages,
		MaxTokens:   512,
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		p.metrics.ObserveLLMCall("chain", "error")
		return "", err
	}
	p.metrics.ObserveLLMCall("chain", "ok")
	if strings.TrimSpace(resp.Text) == "" {
		return "", errors.New("bot: llm returned empty reply")
	}
	return resp.Text, nil
}

// applyBookingMarker strips the completion token and, when automatic
// finalization is on and the draft is complete, materializes the
// booking and replaces the reply with a confirmation.
func (p *Processor) applyBookingMarker(ctx context.Context, clientID int64, reply string) (string, error) {
	if !strings.Contains(reply, BookingReadyMarker) {
		return reply, nil
	}

	clean := strings.TrimSpace(strings.ReplaceAll(reply, BookingReadyMarker, ""))

	if !p.cfg.AutoFinalize {
		return clean, nil
	}

	draft, err := p.drafts.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, bookings.ErrDraftNotFound) {
			return clean, nil
		}
		return "", fmt.Errorf("bot: load draft for finalization: %w", err)
	}
	if !draft.IsComplete() {
		return clean, nil
	}

	booking, err := p.bookings.Create(ctx, &bookings.CreateRequest{
		ClientID:    clientID,
		ServiceName: draft.ServiceName,
		Date:        draft.Date,
		Time:        draft.Time,
		ClientName:  draft.ClientName,
		ClientPhone: draft.ClientPhone,
	})
	if err != nil {
		return "", fmt.Errorf("bot: finalize booking: %w", err)
	}
	if err := p.clients.MarkLead(ctx, clientID, draft.ClientName, draft.ClientPhone); err != nil {
		p.logger.Warn("promote client to lead failed", "client_id", clientID, "error", err)
	}
	if err := p.drafts.Delete(ctx, clientID); err != nil {
		p.logger.Warn("clearing finalized draft failed", "client_id", clientID, "error", err)
	}

	p.logger.Info("booking finalized from conversation", "booking_id", booking.ID, "client_id", clientID)
	p.broadcast("new_booking", booking)
	p.metrics.ObserveOutbound("sent", "confirmation")

	return p.confirmationText(draft), nil
}

func (p *Processor) confirmationText(draft *bookings.Draft) string {
	var b strings.Builder
	b.WriteString("✨ Wonderful, you are booked!\n\n")
	fmt.Fprintf(&b, "📅 %s at %s\n", draft.Date, draft.Time)
	fmt.Fprintf(&b, "💅 %s\n", draft.ServiceName)
	fmt.Fprintf(&b, "👤 %s\n", draft.ClientName)
	fmt.Fprintf(&b, "📞 %s\n\n", draft.ClientPhone)
	fmt.Fprintf(&b, "See you at %s! 😊", p.cfg.Salon.Name)
	if p.cfg.Salon.Address != "" {
		fmt.Fprintf(&b, "\n%s", p.cfg.Salon.Address)
	}
	return b.String()
}

func (p *Processor) broadcast(eventType string, payload any) {
	if p.events == nil {
		return
	}
	p.events.Broadcast(eventType, payload)
}
