package delivery

import (
	"context"
	"fmt"

	"github.com/studyhub/collab/consts"
	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/structs"
)

// Transport delivers a message to the remote side.
type Transport interface {
	Send(ctx context.Context, msg structs.Message) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, msg structs.Message) error

func (f TransportFunc) Send(ctx context.Context, msg structs.Message) error {
	return f(ctx, msg)
}

// StoreTransport writes messages into the messages collection of a document store.
type StoreTransport struct {
	store data.DocumentStore
}

// NewStoreTransport creates a transport over store.
func NewStoreTransport(store data.DocumentStore) *StoreTransport {
	return &StoreTransport{store: store}
}

// Send stores msg with status SENT under its id. Writing the same id twice
// overwrites, so a replay after an ambiguous failure does not duplicate.
func (t *StoreTransport) Send(ctx context.Context, msg structs.Message) error {
	if err := t.store.Set(ctx, consts.MessagesCollection, msg.ID, messageFields(msg)); err != nil {
		return fmt.Errorf("send %s: %w", msg.ID, err)
	}
	return nil
}

func messageFields(m structs.Message) map[string]any {
	fields := map[string]any{
		consts.FieldChatID:   m.ChatID,
		consts.FieldSenderID: m.SenderID,
		"timestamp":          m.Timestamp,
		"status":             string(structs.MessageSent),
	}
	optional := map[string]string{
		"text":         m.Text,
		"imageUrl":     m.ImageURL,
		"documentUrl":  m.DocumentURL,
		"documentName": m.DocumentName,
		"audioUrl":     m.AudioURL,
		"videoUrl":     m.VideoURL,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
