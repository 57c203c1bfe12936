package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fjcero/ClearGDPR/internal/model"
)

var _ model.ErasureLedger = (*Producer)(nil)

// Producer anchors erasure events in a Kafka topic. Records are keyed by
// subject id so all events for one subject land on the same partition.
type Producer struct {
	client *kgo.Client
	topic  string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("cleargdpr-vault"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &Producer{
		client: client,
		topic:  topic,
	}, nil
}

type erasureRecord struct {
	EventID   string    `json:"event_id"`
	SubjectID string    `json:"subject_id"`
	ErasedAt  time.Time `json:"erased_at"`
}

// RecordErasure produces one erasure record and waits for the broker ack.
// The receipt references the record's topic, partition and offset.
func (p *Producer) RecordErasure(ctx context.Context, subjectID string) (model.ErasureReceipt, error) {
	payload, err := json.Marshal(erasureRecord{
		EventID:   uuid.NewString(),
		SubjectID: subjectID,
		ErasedAt:  time.Now().UTC(),
	})
	if err != nil {
		return model.ErasureReceipt{}, fmt.Errorf("failed to marshal erasure record: %w", err)
	}

	results := p.client.ProduceSync(ctx, &kgo.Record{
		Key:   []byte(subjectID),
		Value: payload,
	})
	if err := results.FirstErr(); err != nil {
		return model.ErasureReceipt{}, fmt.Errorf("failed to produce erasure record: %w", err)
	}

	produced := results[0].Record

	return model.ErasureReceipt{
		Reference:  fmt.Sprintf("%s/%d@%d", p.topic, produced.Partition, produced.Offset),
		AnchoredAt: produced.Timestamp,
	}, nil
}

func (p *Producer) Close() error {
	p.client.Close()
	return nil
}
