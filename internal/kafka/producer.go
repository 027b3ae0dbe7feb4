package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicCheckInCreated = "mmfc.checkin.created"
	TopicCheckInDeleted = "mmfc.checkin.deleted"
	TopicGateChanged    = "mmfc.gate.changed"
	TopicFormationSaved = "mmfc.formation.saved"
)

// Topics lists every topic this service produces to, for startup bootstrap.
var Topics = []string{
	TopicCheckInCreated,
	TopicCheckInDeleted,
	TopicGateChanged,
	TopicFormationSaved,
}

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
	})
	return &Producer{Writer: writer}
}

// Publish writes one message to a topic.
func (p *Producer) Publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) publishJSON(topic, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Publish(topic, key, value)
}

// PublishCheckInCreated streams a new attendance submission.
func (p *Producer) PublishCheckInCreated(name string) error {
	return p.publishJSON(TopicCheckInCreated, name, map[string]interface{}{
		"name":       name,
		"created_at": time.Now().UTC(),
	})
}

// PublishCheckInDeleted streams an admin deletion of a check-in.
func (p *Producer) PublishCheckInDeleted(name string) error {
	return p.publishJSON(TopicCheckInDeleted, name, map[string]interface{}{
		"name":       name,
		"deleted_at": time.Now().UTC(),
	})
}

// PublishGateChanged streams a gate open/close transition.
func (p *Producer) PublishGateChanged(open bool) error {
	return p.publishJSON(TopicGateChanged, "gate", map[string]interface{}{
		"open":       open,
		"changed_at": time.Now().UTC(),
	})
}

// PublishFormationSaved streams a saved board mutation for one (day, quarter).
func (p *Producer) PublishFormationSaved(dayKey string, quarter int) error {
	key := fmt.Sprintf("%s:%d", dayKey, quarter)
	return p.publishJSON(TopicFormationSaved, key, map[string]interface{}{
		"day_key":  dayKey,
		"quarter":  quarter,
		"saved_at": time.Now().UTC(),
	})
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
