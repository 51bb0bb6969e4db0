package repository

import (
	"context"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/domain/repository"
	pkgkafka "VolPulse/pkg/kafka"
)

// KafkaBarPublisher publishes daily bars to a Kafka topic.
type KafkaBarPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaBarPublisher(producer *pkgkafka.Producer, topic string) repository.BarPublisher {
	return &KafkaBarPublisher{producer: producer, topic: topic}
}

func barPayload(b *models.Bar) map[string]interface{} {
	return map[string]interface{}{
		"symbol": b.Symbol,
		"d":      b.Date.Unix(),
		"o":      b.Open,
		"h":      b.High,
		"l":      b.Low,
		"c":      b.Close,
		"v":      b.Volume,
	}
}

func (p *KafkaBarPublisher) Publish(ctx context.Context, b *models.Bar) error {
	return p.producer.Publish(ctx, p.topic, []byte(b.Symbol), barPayload(b))
}

func (p *KafkaBarPublisher) PublishBatch(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(bars))
	for i, b := range bars {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(b.Symbol),
			Value: barPayload(b),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaBarPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// KafkaAlertPublisher pushes scan alerts to a dedicated topic.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) repository.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, row models.PremiumRow) error {
	return p.producer.Publish(ctx, p.topic, []byte(row.Symbol), map[string]interface{}{
		"symbol":         row.Symbol,
		"signal":         row.Signal,
		"iv":             row.IV,
		"iv_source":      row.IVSource,
		"rv":             row.RV,
		"premium":        row.Premium,
		"premium_pctile": row.PremiumPctile,
		"iv_percentile":  row.IVPercentile,
		"spot":           row.Spot,
		"ts":             time.Now().UTC().Unix(),
	})
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
