package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/forumforge/reputation/pkg/config"
	"github.com/forumforge/reputation/pkg/logging"
)

// VoteEvent is the audit record published after every committed vote
// transition. It mirrors what the ledger wrote, it is not a second source
// of truth.
type VoteEvent struct {
	VoterID    int64     `json:"voter_id"`
	AuthorID   int64     `json:"author_id"`
	TargetType string    `json:"target_type"`
	TargetID   int64     `json:"target_id"`
	Action     string    `json:"action"` // "create", "remove" or "flip"
	Value      int16     `json:"value"`
	Delta      int64     `json:"delta"`
	VoteScore  int64     `json:"vote_score"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Producer publishes vote events to Kafka. A nil *Producer is a valid,
// disabled producer, mirroring the cache contract.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// New creates a new vote event producer
func New(cfg *config.KafkaConfig) (*Producer, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Vote event stream disabled")
		return nil, nil
	}

	// Hash balancer keyed by voter keeps one voter's events in order
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}

	logging.GetLogger().Info("Vote event stream enabled",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic))

	return &Producer{
		writer: writer,
		logger: logging.WithComponent("vote-events"),
	}, nil
}

// PublishVote publishes a single vote event. Failures are returned to the
// caller for logging only; the vote itself has already committed.
func (p *Producer) PublishVote(ctx context.Context, event *VoteEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal vote event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.VoterID, 10)),
		Value: data,
		Time:  event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish vote event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
