package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"canteen-dashboard/internal/logger"
	"canteen-dashboard/internal/models"
)

// ChangeFeed delivers "something changed for canteen X" notifications.
// Deliveries carry no state a subscriber may rely on: every notification
// must trigger a full snapshot re-fetch.
type ChangeFeed struct {
	conn   *Connection
	logger *logger.Logger
}

// NewChangeFeed creates a change feed over an existing connection
func NewChangeFeed(conn *Connection, log *logger.Logger) *ChangeFeed {
	return &ChangeFeed{
		conn:   conn,
		logger: log,
	}
}

// Subscribe binds a private queue to the canteen's routing key and calls
// onChange for every delivery until the returned unsubscribe function is
// invoked or ctx is cancelled.
func (f *ChangeFeed) Subscribe(ctx context.Context, canteenID string, onChange func()) (func(), error) {
	routingKey := models.ChangeRoutingKey(canteenID)

	queueName, err := f.conn.DeclareSessionQueue(routingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe for canteen %s: %w", canteenID, err)
	}

	consumerTag := fmt.Sprintf("dashboard-%s", canteenID)
	consumer := NewConsumer(f.conn, f.logger, queueName, consumerTag, 1)

	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		err := consumer.StartConsuming(subCtx, func(ctx context.Context, body []byte) error {
			f.logChange(body)
			onChange()
			return nil
		})
		if err != nil && subCtx.Err() == nil {
			f.logger.Error("change_feed_failed", "Change feed consumer stopped", "", err, map[string]interface{}{
				"canteen_id": canteenID,
				"queue":      queueName,
			})
		}
	}()

	f.logger.Info("change_feed_subscribed", "Subscribed to order changes", "", map[string]interface{}{
		"canteen_id": canteenID,
		"queue":      queueName,
	})

	unsubscribe := func() {
		cancel()
		consumer.Close()
	}

	return unsubscribe, nil
}

// logChange logs the change payload at debug level. The message
// body is never acted on beyond this.
func (f *ChangeFeed) logChange(body []byte) {
	var msg models.OrderChangedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		f.logger.Debug("change_received", "Received opaque change notification", "", map[string]interface{}{
			"message_size": len(body),
		})
		return
	}

	f.logger.Debug("change_received", "Received order change notification", "", map[string]interface{}{
		"canteen_id": msg.CanteenID,
		"order_id":   msg.OrderID,
		"old_status": string(msg.OldStatus),
		"new_status": string(msg.NewStatus),
	})
}
