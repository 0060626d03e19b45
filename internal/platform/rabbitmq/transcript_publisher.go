package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/laguagu/rag-chatbot/internal/model"
)

// TranscriptPublisher enqueues completed pipeline transcripts for the persist
// worker. Publishing is best-effort from the caller's point of view.
type TranscriptPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewTranscriptPublisher(conn *amqp.Connection, queueName string) *TranscriptPublisher {
	return &TranscriptPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *TranscriptPublisher) Publish(ctx context.Context, transcript model.Transcript) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(p.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish transcript failed: %w", err)
	}
	return nil
}
