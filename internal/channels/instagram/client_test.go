package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendTextMessage(t *testing.T) {
	var received SendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.RawQuery, "access_token=test_token") {
			t.Errorf("expected access_token in query, got %s", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatal(err)
		}
		resp := SendResponse{RecipientID: "user_1", MessageID: "mid_001"}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient("test_token", "")
	client.SetGraphAPIBase(server.URL)

	resp, err := client.SendTextMessage(context.Background(), "user_1", "Hello from bot")
	if err != nil {
		t.Fatal(err)
	}
	if resp.RecipientID != "user_1" {
		t.Errorf("recipient = %s, want user_1", resp.RecipientID)
	}
	if received.Recipient.ID != "user_1" {
		t.Errorf("sent to = %s, want user_1", received.Recipient.ID)
	}
	if received.Message == nil || received.Message.Text != "Hello from bot" {
		t.Errorf("sent message = %+v, want text 'Hello from bot'", received.Message)
	}
}

func TestSendTypingIndicator(t *testing.T) {
	var received SendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SendResponse{RecipientID: "user_2"})
	}))
	defer server.Close()

	client := NewClient("token", "")
	client.SetGraphAPIBase(server.URL)

	if err := client.SendTypingIndicator(context.Background(), "user_2"); err != nil {
		t.Fatal(err)
	}
	if received.SenderAction != "typing_on" {
		t.Errorf("sender_action = %s, want typing_on", received.SenderAction)
	}
	if received.Message != nil {
		t.Error("typing indicator must not carry a message body")
	}
}

func TestSendTextMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := SendResponse{
			Error: &SendError{Code: 100, Message: "Invalid token", Type: "OAuthException"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient("bad_token", "")
	client.SetGraphAPIBase(server.URL)

	_, err := client.SendTextMessage(context.Background(), "user_1", "test")
	if err == nil {
		t.Fatal("expected error for API error response")
	}
}
