package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendGridSenderNilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "noreply@salon.test"}, nil)
	assert.Nil(t, sender)
}

func TestSendGridSenderDefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "SG.test",
		FromEmail: "noreply@salon.test",
	}, nil)

	require.NotNil(t, sender)
	assert.Equal(t, "Beauty Salon", sender.fromName)
}

func TestSendGridSenderKeepsCustomFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "SG.test",
		FromEmail: "noreply@salon.test",
		FromName:  "M.Le Diamant",
	}, nil)

	require.NotNil(t, sender)
	assert.Equal(t, "M.Le Diamant", sender.fromName)
}

func TestSendGridSenderSendWithoutClient(t *testing.T) {
	sender := &SendGridSender{}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "anna@salon.test",
		Subject: "Your booking",
		Body:    "See you tomorrow!",
	})
	assert.Error(t, err)
}

func TestSESSenderNilWithoutClient(t *testing.T) {
	sender := NewSESSender(nil, SESConfig{FromEmail: "noreply@salon.test"}, nil)
	assert.Nil(t, sender)
}

func TestStubEmailSenderNeverFails(t *testing.T) {
	sender := NewStubEmailSender(nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "anna@salon.test",
		Subject: "Password reset",
		Body:    "reset link",
	})
	assert.NoError(t, err)
}
