package chat

import "time"

// Sender roles stored on each history row.
const (
	SenderClient = "client"
	SenderBot    = "bot"
)

// Message body kinds.
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeFile  = "file"
	TypeVoice = "voice"
)

// Message is a single chat history row. Rows are append-only; only the
// read flag mutates afterwards, and only from unread to read.
type Message struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Type      string    `json:"message_type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// AppendRequest carries a new history row.
type AppendRequest struct {
	ClientID int64
	Sender   string
	Message  string
	Type     string
}

// Validate fills defaults and rejects malformed rows.
func (r *AppendRequest) Validate() error {
	if r.ClientID == 0 {
		return ErrMissingClient
	}
	switch r.Sender {
	case SenderClient, SenderBot:
	default:
		return ErrInvalidSender
	}
	if r.Message == "" {
		return ErrEmptyMessage
	}
	if r.Type == "" {
		r.Type = TypeText
	}
	return nil
}
