package producer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/colabah/style-dna-service/internal/domain"
	"github.com/colabah/style-dna-service/pkg/logger"
)

const (
	TopicStyleProfileSaved = "style_profile.saved"
	TopicCustomerCreated   = "customer.created"
)

// StyleProfileEvent is the event published after a successful workflow run
type StyleProfileEvent struct {
	EventID    string    `json:"event_id"`
	CustomerID string    `json:"customer_id"`
	Email      string    `json:"email,omitempty"`
	StyleValue string    `json:"style_value"`
	Mode       string    `json:"mode"`
	Existing   bool      `json:"existing"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProfileProducer publishes workflow events. Publishing is best effort: the
// workflow never fails because an event could not be written.
type ProfileProducer interface {
	PublishProfileSaved(outcome domain.WorkflowOutcome, mode domain.SaveMode) error
	PublishCustomerCreated(outcome domain.WorkflowOutcome) error
	Close() error
}

type kafkaProfileProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaProfileProducer creates a new workflow event producer
func NewKafkaProfileProducer(producer sarama.SyncProducer, log *logger.Logger) ProfileProducer {
	return &kafkaProfileProducer{
		producer: producer,
		log:      log,
	}
}

// PublishProfileSaved publishes the style-profile-saved event
func (p *kafkaProfileProducer) PublishProfileSaved(outcome domain.WorkflowOutcome, mode domain.SaveMode) error {
	return p.publishEvent(TopicStyleProfileSaved, outcome, mode)
}

// PublishCustomerCreated publishes the customer-created event
func (p *kafkaProfileProducer) PublishCustomerCreated(outcome domain.WorkflowOutcome) error {
	return p.publishEvent(TopicCustomerCreated, outcome, domain.ModeProxy)
}

// publishEvent publishes one workflow event to Kafka
func (p *kafkaProfileProducer) publishEvent(topic string, outcome domain.WorkflowOutcome, mode domain.SaveMode) error {
	event := StyleProfileEvent{
		EventID:    uuid.New().String(),
		CustomerID: outcome.CustomerID,
		Email:      outcome.Email,
		StyleValue: outcome.SavedValue,
		Mode:       string(mode),
		Existing:   outcome.ExistingAccount,
		Timestamp:  time.Now(),
	}

	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal profile event: %w", err)
	}

	// Key by customer so all events for one customer land on one partition
	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(outcome.CustomerID),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(topic),
			},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish profile event: %w", err)
	}

	p.log.Info("Published profile event to topic %s: partition=%d offset=%d",
		topic, partition, offset)

	return nil
}

// Close closes the producer
func (p *kafkaProfileProducer) Close() error {
	return p.producer.Close()
}
