// Package notify provides collaborator implementations for the scheduler:
// an outbox file the surrounding agent drains, and log-backed stand-ins for
// running detached.
package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/tgifai/chrono/internal/pkg/logs"
)

// OutboxRecord is one delivered message, appended as a JSON line.
type OutboxRecord struct {
	Kind        string    `json:"kind"` // notify or execute
	Message     string    `json:"message"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// Outbox appends delivered payloads to a JSON-lines file for an external
// consumer. It satisfies both the Notifier and Executor contracts.
type Outbox struct {
	path string
	mu   sync.Mutex
}

func NewOutbox(path string) *Outbox {
	return &Outbox{path: path}
}

// Notify appends a reminder record.
func (o *Outbox) Notify(_ context.Context, message string) error {
	return o.append("notify", message)
}

// Execute appends a task record. The consumer is responsible for running the
// task; this reports acceptance, not the task's result.
func (o *Outbox) Execute(_ context.Context, description string) error {
	return o.append("execute", description)
}

func (o *Outbox) append(kind, message string) error {
	rec := OutboxRecord{Kind: kind, Message: message, DeliveredAt: time.Now()}
	line, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal outbox record: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if dir := filepath.Dir(o.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create outbox directory: %w", err)
		}
	}
	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open outbox: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append outbox: %w", err)
	}
	return nil
}

// LogNotifier writes reminders to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, message string) error {
	logs.CtxInfo(ctx, "[notify] %s", message)
	return nil
}

// LogExecutor logs task descriptions instead of executing them.
type LogExecutor struct{}

func (LogExecutor) Execute(ctx context.Context, description string) error {
	logs.CtxInfo(ctx, "[execute] %s", description)
	return nil
}
