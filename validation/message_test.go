package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/studyhub/collab/structs"
)

func validMessage() structs.Message {
	return structs.Message{
		ID:        "m1",
		ChatID:    "c1",
		SenderID:  "u1",
		Text:      "see you at the library",
		Timestamp: fixedNow,
	}
}

func TestValidateMessage(t *testing.T) {
	v := testValidator()
	hosted := DefaultMediaPrefix + "v0/b/app/o/photo.jpg"

	tests := []struct {
		name    string
		mutate  func(*structs.Message)
		wantErr string
	}{
		{"text only", func(*structs.Message) {}, ""},
		{"image only", func(m *structs.Message) { m.Text = ""; m.ImageURL = hosted }, ""},
		{"document only", func(m *structs.Message) { m.Text = ""; m.DocumentURL = hosted }, ""},
		{"text at limit", func(m *structs.Message) { m.Text = strings.Repeat("t", 10000) }, ""},
		{"no content", func(m *structs.Message) { m.Text = "  " }, "must have text or an attachment"},
		{"text too long", func(m *structs.Message) { m.Text = strings.Repeat("t", 10001) }, "text must be at most 10000"},
		{"blank chat", func(m *structs.Message) { m.ChatID = "" }, "chatId is required"},
		{"blank sender", func(m *structs.Message) { m.SenderID = "" }, "senderId is required"},
		{"foreign image", func(m *structs.Message) { m.ImageURL = "https://evil.example.com/x.jpg" }, "imageUrl must point to hosted storage"},
		{"foreign video", func(m *structs.Message) { m.VideoURL = "http://firebasestorage.googleapis.com/x" }, "videoUrl must point to hosted storage"},
		{"stale", func(m *structs.Message) { m.Timestamp = fixedNow.Add(-10 * time.Minute) }, "timestamp must be within"},
		{"missing timestamp", func(m *structs.Message) { m.Timestamp = time.Time{} }, "timestamp must be within"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMessage()
			tt.mutate(&m)
			res := v.ValidateMessage(m)
			if tt.wantErr == "" {
				if !res.Valid {
					t.Errorf("expected valid message, got %v", res.Errors)
				}
				return
			}
			if res.Valid || !hasError(res.Errors, tt.wantErr) {
				t.Errorf("errors %v do not mention %q", res.Errors, tt.wantErr)
			}
		})
	}
}

func TestValidateMessageCustomPrefix(t *testing.T) {
	v := New(
		WithClock(func() time.Time { return fixedNow }),
		WithMediaPrefixes("https://cdn.campus.test/", " "),
	)
	m := validMessage()
	m.AudioURL = "https://cdn.campus.test/a.m4a"
	if res := v.ValidateMessage(m); !res.Valid {
		t.Errorf("custom prefix should be accepted, got %v", res.Errors)
	}

	m.AudioURL = DefaultMediaPrefix + "a.m4a"
	if res := v.ValidateMessage(m); res.Valid {
		t.Error("default prefix should be replaced by the custom one")
	}
}
