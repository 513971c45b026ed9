package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/fixhub/fixhub-backend/models"

	"github.com/segmentio/kafka-go"
)

// PaymentEventProducer publishes payment state changes to Kafka. A nil
// producer is a valid no-op: deployments without Kafka simply skip eventing.
type PaymentEventProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewPaymentEventProducer(brokers []string, topic string) *PaymentEventProducer {
	if len(brokers) == 0 {
		log.Println("[FixHub][KafkaProducer] no brokers configured; payment events disabled")
		return nil
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Printf("[FixHub][KafkaProducer] initialized topic=%s brokers=%v", topic, brokers)
	return &PaymentEventProducer{writer: w, topic: topic}
}

// Publish sends one payment event, keyed by payment ID so deliveries for the
// same payment stay ordered within a partition.
func (p *PaymentEventProducer) Publish(ctx context.Context, event models.PaymentEvent) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.PaymentID),
		Value: data,
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *PaymentEventProducer) Close() {
	if p == nil {
		return
	}
	_ = p.writer.Close()
	log.Println("[FixHub] 🔌 Kafka producer closed")
}
