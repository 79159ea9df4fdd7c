// Package notify publishes user-facing event notifications. The focus
// timer's completion side effect goes out as a NATS message the frontend's
// notification service subscribes to.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const SubjectFocusCompleted = "taskflow.focus.completed"

// FocusCompletedEvent is the payload published when a countdown finishes.
type FocusCompletedEvent struct {
	OwnerID         string    `json:"owner_id"`
	TaskID          string    `json:"task_id,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	CompletedAt     time.Time `json:"completed_at"`
}

// NATSNotifier publishes events to a NATS subject.
type NATSNotifier struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSNotifier(url string, logger *zap.Logger) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{conn: conn, logger: logger}, nil
}

func (n *NATSNotifier) FocusCompleted(ctx context.Context, ownerID, taskID string, durationMinutes int) {
	event := FocusCompletedEvent{
		OwnerID:         ownerID,
		TaskID:          taskID,
		DurationMinutes: durationMinutes,
		CompletedAt:     time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("marshal focus event", zap.Error(err))
		return
	}
	// Notifications are best-effort; a publish failure must not surface
	// into the timer.
	if err := n.conn.Publish(SubjectFocusCompleted, data); err != nil {
		n.logger.Warn("publish focus event", zap.Error(err))
	}
}

// Close drains the connection.
func (n *NATSNotifier) Close() {
	n.conn.Close()
}

// NopNotifier drops events; used when NATS is not configured and in tests.
type NopNotifier struct{}

func (NopNotifier) FocusCompleted(context.Context, string, string, int) {}
