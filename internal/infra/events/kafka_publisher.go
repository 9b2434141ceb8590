package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"shop/internal/domain/model"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher は注文イベントをJSONで送る。キーはuser_id。
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev model.OrderEvent) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(ev model.OrderEvent) (kafka.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.UserID, 10)),
		Value: data,
		Time:  time.Now().UTC(),
	}, nil
}

// NoopPublisher はブローカー未設定のとき
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.OrderEvent) error { return nil }
func (NoopPublisher) Close() error                                    { return nil }
