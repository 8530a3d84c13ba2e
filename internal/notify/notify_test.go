package notify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestOutbox_AppendsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "outbox.jsonl")
	o := NewOutbox(path)
	ctx := context.Background()

	if err := o.Notify(ctx, "take a break"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := o.Execute(ctx, "rotate the logs"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read outbox: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var first, second OutboxRecord
	if err := sonic.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if err := sonic.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("unmarshal second line: %v", err)
	}

	if first.Kind != "notify" || first.Message != "take a break" {
		t.Errorf("first record = %+v", first)
	}
	if second.Kind != "execute" || second.Message != "rotate the logs" {
		t.Errorf("second record = %+v", second)
	}
	if first.DeliveredAt.IsZero() || second.DeliveredAt.IsZero() {
		t.Error("missing delivery timestamps")
	}
}
