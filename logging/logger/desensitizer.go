package logger

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

var emailPattern = regexp.MustCompile(`\b([A-Za-z0-9._%+-])[A-Za-z0-9._%+-]*@([A-Za-z0-9.-]+\.[A-Za-z]{2,})\b`)

// defaultSensitiveFields are masked regardless of value.
var defaultSensitiveFields = []string{"text", "password", "token", "email", "phone"}

// DesensitizeHook masks chat text, credentials and e-mail addresses before an entry is written.
type DesensitizeHook struct {
	fields map[string]bool
}

// NewDesensitizeHook creates a hook masking the default fields plus extra.
func NewDesensitizeHook(extra ...string) *DesensitizeHook {
	h := &DesensitizeHook{fields: make(map[string]bool)}
	for _, f := range append(defaultSensitiveFields, extra...) {
		h.fields[strings.ToLower(f)] = true
	}
	return h
}

// Levels returns all log levels
func (h *DesensitizeHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire masks the entry in place
func (h *DesensitizeHook) Fire(entry *logrus.Entry) error {
	entry.Message = MaskEmails(entry.Message)
	for key, value := range entry.Data {
		if h.fields[strings.ToLower(key)] {
			entry.Data[key] = maskValue(value)
			continue
		}
		if s, ok := value.(string); ok {
			entry.Data[key] = MaskEmails(s)
		}
	}
	return nil
}

// MaskEmails keeps the first character of the local part and the domain.
func MaskEmails(s string) string {
	return emailPattern.ReplaceAllString(s, "$1***@$2")
}

func maskValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return val
		}
		return fmt.Sprintf("[masked %d chars]", len([]rune(val)))
	default:
		return "[masked]"
	}
}
