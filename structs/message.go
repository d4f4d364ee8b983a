package structs

import (
	"strings"
	"time"
)

// MessageStatus tracks delivery of a chat message.
type MessageStatus string

const (
	MessageSending         MessageStatus = "SENDING"
	MessageSent            MessageStatus = "SENT"
	MessageDelivered       MessageStatus = "DELIVERED"
	MessageRead            MessageStatus = "READ"
	MessageFailed          MessageStatus = "FAILED"
	MessageFailedRetryable MessageStatus = "FAILED_RETRYABLE"
	MessageFailedPermanent MessageStatus = "FAILED_PERMANENT"
)

// IsFailure reports whether the status is one of the failed states.
func (s MessageStatus) IsFailure() bool {
	return s == MessageFailed || s == MessageFailedRetryable || s == MessageFailedPermanent
}

// Message is a chat message. At least one of Text or the attachment URLs is set.
type Message struct {
	ID           string        `json:"id" bson:"_id"`
	ChatID       string        `json:"chatId" bson:"chatId" validate:"notblank"`
	SenderID     string        `json:"senderId" bson:"senderId" validate:"notblank"`
	Text         string        `json:"text,omitempty" bson:"text,omitempty" validate:"max=10000"`
	ImageURL     string        `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	DocumentURL  string        `json:"documentUrl,omitempty" bson:"documentUrl,omitempty"`
	DocumentName string        `json:"documentName,omitempty" bson:"documentName,omitempty"`
	AudioURL     string        `json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
	VideoURL     string        `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
	Timestamp    time.Time     `json:"timestamp" bson:"timestamp"`
	Status       MessageStatus `json:"status" bson:"status"`
}

// Attachment is one populated attachment channel of a message.
type Attachment struct {
	Field string
	URL   string
}

// Attachments returns the populated attachment channels in a fixed order.
func (m Message) Attachments() []Attachment {
	var out []Attachment
	for _, a := range []Attachment{
		{"imageUrl", m.ImageURL},
		{"documentUrl", m.DocumentURL},
		{"audioUrl", m.AudioURL},
		{"videoUrl", m.VideoURL},
	} {
		if strings.TrimSpace(a.URL) != "" {
			out = append(out, a)
		}
	}
	return out
}

// HasContent reports whether any content channel is populated.
func (m Message) HasContent() bool {
	return strings.TrimSpace(m.Text) != "" || len(m.Attachments()) > 0
}
