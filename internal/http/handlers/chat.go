package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/chat"
	"github.com/mlediamant/salon-crm/internal/channels/instagram"
	"github.com/mlediamant/salon-crm/internal/clients"
	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// Manual replies are capped well under the Graph API limit.
const maxManualMessageLen = 1000

// Default history window for the chat view.
const chatHistoryLimit = 100

// ChatSender sends operator messages through the messaging provider.
type ChatSender interface {
	SendTextMessage(ctx context.Context, recipientID, text string) (*instagram.SendResponse, error)
}

// ChatBroadcaster pushes chat events to connected dashboard sessions.
type ChatBroadcaster interface {
	Broadcast(eventType string, payload any)
}

// ChatHandler serves the operator chat endpoints.
type ChatHandler struct {
	clients clients.Repository
	chat    chat.Repository
	sender  ChatSender
	events  ChatBroadcaster
	audit   *audit.Logger
	logger  *logging.Logger
}

// NewChatHandler creates the chat handler. events may be nil.
func NewChatHandler(clientRepo clients.Repository, chatRepo chat.Repository, sender ChatSender, events ChatBroadcaster, auditLog *audit.Logger, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{
		clients: clientRepo,
		chat:    chatRepo,
		sender:  sender,
		events:  events,
		audit:   auditLog,
		logger:  logger,
	}
}

type sendMessageRequest struct {
	InstagramID string `json:"instagram_id"`
	Message     string `json:"message"`
}

// Send delivers an operator message to the client and logs it as a
// bot row.
// POST /admin/api/chat/send
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil || req.InstagramID == "" || req.Message == "" {
		respondFailure(w, http.StatusBadRequest, "instagram_id and message are required")
		return
	}
	if utf8.RuneCountInString(req.Message) > maxManualMessageLen {
		respondFailure(w, http.StatusBadRequest, fmt.Sprintf("Message is too long (max %d characters)", maxManualMessageLen))
		return
	}

	client, err := h.clients.GetByInstagramID(r.Context(), req.InstagramID)
	if errors.Is(err, clients.ErrClientNotFound) {
		respondFailure(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		h.logger.Error("load client failed", "instagram_id", req.InstagramID, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not load client")
		return
	}

	if _, err := h.sender.SendTextMessage(r.Context(), req.InstagramID, req.Message); err != nil {
		h.logger.Error("manual send failed", "instagram_id", req.InstagramID, "error", err)
		respondFailure(w, http.StatusBadGateway, "Could not deliver the message")
		return
	}

	msg, err := h.chat.Append(r.Context(), &chat.AppendRequest{
		ClientID: client.ID,
		Sender:   chat.SenderBot,
		Message:  req.Message,
		Type:     chat.TypeText,
	})
	if err != nil {
		h.logger.Error("store sent message failed", "client_id", client.ID, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Message sent but not recorded")
		return
	}

	h.record(r, "send_message", req.InstagramID, "Manual reply sent")
	h.broadcast("new_message", msg)
	respondSuccess(w, "Message sent")
}

// Messages returns the recent history and marks client rows read.
// GET /admin/api/chat/messages/{clientID}
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "clientID")
	if err != nil {
		jsonError(w, "invalid client id", http.StatusBadRequest)
		return
	}

	history, err := h.chat.History(r.Context(), id, chatHistoryLimit)
	if err != nil {
		h.logger.Error("load history failed", "client_id", id, "error", err)
		jsonError(w, "could not load messages", http.StatusInternalServerError)
		return
	}
	if _, err := h.chat.MarkRead(r.Context(), id); err != nil {
		h.logger.Warn("mark read failed", "client_id", id, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": history,
		"total":    len(history),
	})
}

// Delete removes one history row from local storage only. The message
// stays visible inside Instagram itself.
// POST /admin/api/chat/message/{clientID}/{messageID}/delete
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "clientID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid client id")
		return
	}
	messageID, err := pathID(r, "messageID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid message id")
		return
	}

	if err := h.chat.Delete(r.Context(), messageID); err != nil {
		if errors.Is(err, chat.ErrMessageNotFound) {
			respondFailure(w, http.StatusNotFound, "Message not found")
			return
		}
		h.logger.Error("delete message failed", "message_id", messageID, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not delete message")
		return
	}

	h.record(r, "delete_message", fmt.Sprintf("%d/%d", clientID, messageID), "Deleted from CRM history only")
	respondSuccess(w, "Message removed from CRM. It stays visible in Instagram.")
}

// UnreadCount returns the total unread across all clients.
// GET /admin/api/unread-count
func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	total, _, err := h.unreadTotals(r.Context())
	if err != nil {
		h.logger.Error("unread count failed", "error", err)
		jsonError(w, "could not count unread", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread_count": total})
}

type chatSummary struct {
	ClientID      int64  `json:"client_id"`
	InstagramID   string `json:"instagram_id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Status        string `json:"status"`
	IsPinned      bool   `json:"is_pinned"`
	LastMessage   string `json:"last_message"`
	LastMessageAt string `json:"last_message_time,omitempty"`
	UnreadCount   int    `json:"unread_count"`
	HasNewMessage bool   `json:"has_new_message"`
}

// ChatsUpdate returns the chat list for the dashboard sidebar.
// GET /admin/api/chats-update
func (h *ChatHandler) ChatsUpdate(w http.ResponseWriter, r *http.Request) {
	total, chats, err := h.unreadTotals(r.Context())
	if err != nil {
		h.logger.Error("chats update failed", "error", err)
		jsonError(w, "could not list chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chats":        chats,
		"total_unread": total,
	})
}

func (h *ChatHandler) unreadTotals(ctx context.Context) (int, []chatSummary, error) {
	rows, err := h.clients.List(ctx, clients.ListFilter{})
	if err != nil {
		return 0, nil, err
	}

	total := 0
	chats := make([]chatSummary, 0, len(rows))
	for _, c := range rows {
		unread, err := h.chat.UnreadCount(ctx, c.ID)
		if err != nil {
			return 0, nil, err
		}
		total += unread

		summary := chatSummary{
			ClientID:      c.ID,
			InstagramID:   c.InstagramID,
			Name:          c.Name,
			Username:      c.Username,
			Status:        c.Status,
			IsPinned:      c.IsPinned,
			UnreadCount:   unread,
			HasNewMessage: unread > 0,
		}
		if last, err := h.chat.History(ctx, c.ID, 1); err == nil && len(last) == 1 {
			summary.LastMessage = last[0].Message
			summary.LastMessageAt = last[0].CreatedAt.Format("15:04")
		}
		chats = append(chats, summary)
	}
	return total, chats, nil
}

func (h *ChatHandler) broadcast(eventType string, payload any) {
	if h.events != nil {
		h.events.Broadcast(eventType, payload)
	}
}

func (h *ChatHandler) record(r *http.Request, action, entityID, details string) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return
	}
	h.audit.Record(r.Context(), user.ID, user.Email, action, "chat", entityID, details)
}
