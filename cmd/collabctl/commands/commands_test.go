package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("COLLAB_LOGGER_OUTPUT", "stderr")
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateParticipants(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
		want    string
	}{
		{`["u1","u2"]`, false, "ok"},
		{`["u1"]`, true, "at least 2 members"},
		{`["u1","u2","u1"]`, true, "duplicate"},
	}
	for _, tt := range tests {
		out, err := run(t, "validate", "participants", writeFile(t, "ids.json", tt.input))
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, errInvalid) {
			t.Errorf("%s: error = %v, want errInvalid", tt.input, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s: output %q does not mention %q", tt.input, out, tt.want)
		}
	}
}

func TestValidateTaskReportsEveryError(t *testing.T) {
	path := writeFile(t, "task.json", `{"title":"","userId":"u1","assignedTo":["u1"]}`)
	out, err := run(t, "validate", "task", path)
	if !errors.Is(err, errInvalid) {
		t.Fatalf("error = %v, want errInvalid", err)
	}
	var res struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if res.Valid || len(res.Errors) < 2 {
		t.Errorf("result = %+v, want several errors", res)
	}
}

func TestValidateMissingFile(t *testing.T) {
	if _, err := run(t, "validate", "group", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("error = nil for a missing file")
	}
}

func TestEraseOnMemoryStore(t *testing.T) {
	out, err := run(t, "--store", "memory", "erase", "u1")
	if err != nil {
		t.Fatalf("erase error = %v", err)
	}
	var got eraseOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if got.UserID != "u1" || got.Total != 0 || len(got.Failed) != 0 {
		t.Errorf("erase output = %+v", got)
	}
}

func TestQueueListSQLite(t *testing.T) {
	t.Setenv("COLLAB_QUEUE_SQLITE_PATH", filepath.Join(t.TempDir(), "q.db"))
	out, err := run(t, "--queue", "sqlite", "queue", "list")
	if err != nil {
		t.Fatalf("queue list error = %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("output = %q, want []", out)
	}
}

func TestQueueRetryUnknown(t *testing.T) {
	if _, err := run(t, "queue", "retry", "nope"); err == nil {
		t.Error("retry of an unknown id succeeded")
	}
}

func TestUnknownDriver(t *testing.T) {
	if _, err := run(t, "--queue", "kafka", "queue", "list"); err == nil {
		t.Error("unknown queue driver accepted")
	}
}

func TestChatTyping(t *testing.T) {
	t.Setenv("COLLAB_DELIVERY_TYPING_CONCURRENCY", "1")
	out, err := run(t, "--store", "memory", "chat", "typing", "c1", "u2", "--stop")
	if err != nil {
		t.Fatalf("chat typing error = %v", err)
	}
	var got struct {
		ChatID string `json:"chatId"`
		Typing bool   `json:"typing"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if got.ChatID != "c1" || got.Typing {
		t.Errorf("chat typing output = %+v", got)
	}
}

func TestChatReadNeedsThreeArgs(t *testing.T) {
	if _, err := run(t, "--store", "memory", "chat", "read", "c1", "m1"); err == nil {
		t.Error("chat read accepted two arguments")
	}
}
