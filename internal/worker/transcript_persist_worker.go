package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/laguagu/rag-chatbot/internal/model"
	"github.com/laguagu/rag-chatbot/internal/repository"
)

// TranscriptPersistWorker drains the transcript queue and writes rows to
// mysql, keeping persistence off the streaming hot path.
type TranscriptPersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.TranscriptRepository
	queueName string
	log       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTranscriptPersistWorker(conn *amqp.Connection, repo *repository.TranscriptRepository, queueName string, log *slog.Logger) *TranscriptPersistWorker {
	if log == nil {
		log = slog.Default()
	}
	return &TranscriptPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		log:       log,
	}
}

func (w *TranscriptPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var transcript model.Transcript
				if err := json.Unmarshal(d.Body, &transcript); err != nil {
					w.log.Error("worker decode transcript failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&transcript); err != nil {
					w.log.Error("worker persist transcript failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *TranscriptPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
