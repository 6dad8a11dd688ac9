package publisher

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

const (
	eventTypeCartChanged    = "cart.changed"
	eventTypeOrderCompleted = "order.completed"
)

// KafkaNotifier publishes shop events to a single topic, one event type per
// message header. Delivery failures are logged only; the checkout and cart
// flows never fail on a lost notification.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(topic string, brokers ...string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w}
}

func (n *KafkaNotifier) CartChanged(ctx context.Context, event CartChangedEvent) {
	n.publish(ctx, eventTypeCartChanged, event.OwnerID, event)
}

func (n *KafkaNotifier) OrderCompleted(ctx context.Context, event OrderCompletedEvent) {
	n.publish(ctx, eventTypeOrderCompleted, event.OrderID, event)
}

func (n *KafkaNotifier) publish(ctx context.Context, eventType, key string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("failed to publish %s event: %v", eventType, err)
	}
}

func (n *KafkaNotifier) Close() {
	if err := n.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}
