package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/silvioheinze/isr-field-sub000/internal/config"
	"github.com/silvioheinze/isr-field-sub000/internal/exporter"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"go.uber.org/zap"
)

type ExportConsumerContext struct {
	Config     *config.Config
	Logger     *zap.SugaredLogger
	Repository *repository.Repository
	Exporter   *exporter.ZipExporter
}

type ExportJobPayload struct {
	TaskID    string `json:"task_id"`
	CreatedAt string `json:"created_at"`
	Try       int    `json:"try" default:"0"`
}

func NewExportJobPayload(taskId string) ExportJobPayload {
	return ExportJobPayload{
		TaskID:    taskId,
		Try:       0,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

// PublishExportJob enqueues a ZIP export task for the consumer.
func (r *RabbitMQ) PublishExportJob(taskId string) error {
	payload := NewExportJobPayload(taskId)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal export payload: %w", err)
	}

	return r.Publish(QueueExport, body)
}

type ExportJobHandler func(ctx context.Context, jobPayload ExportJobPayload, app *ExportConsumerContext) (bool, error)

func (r *RabbitMQ) ConsumeExportJob(ctx context.Context, handler ExportJobHandler, maxWorker int, app *ExportConsumerContext) error {
	msgs, err := r.Consume(QueueExport)
	if err != nil {
		return fmt.Errorf("failed to start consuming export jobs: %w", err)
	}

	for i := 0; i < maxWorker; i++ {
		go func(workerNumber int) {
			runExportWorker(ctx, r, workerNumber, msgs, handler, app)
		}(i + 1)
	}

	return nil
}

func runExportWorker(ctx context.Context, rabbitMQ *RabbitMQ, workerNumber int, msgs <-chan amqp091.Delivery, handler ExportJobHandler, app *ExportConsumerContext) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Export Worker %d] Shutting down", workerNumber)
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("[Export Worker %d] Message channel closed", workerNumber)
				return
			}
			processExportJob(ctx, rabbitMQ, workerNumber, msg, handler, app)
		}
	}
}

func processExportJob(ctx context.Context, rabbitMQ *RabbitMQ, workerNumber int, msg amqp091.Delivery, handler ExportJobHandler, app *ExportConsumerContext) {
	if msg.Body == nil {
		log.Printf("[Export Worker %d] Received empty message body", workerNumber)
		rabbitMQ.Nack(msg, false)
		return
	}

	var jobPayload ExportJobPayload
	if err := json.Unmarshal(msg.Body, &jobPayload); err != nil {
		log.Printf("[Export Worker %d] Invalid payload: %v", workerNumber, err)
		rabbitMQ.Nack(msg, false)
		return
	}

	workerPrefix := fmt.Sprintf("[Export Worker %d: Retry %d]", workerNumber, jobPayload.Try)

	shouldRequeue, err := handler(ctx, jobPayload, app)
	if err != nil {
		log.Printf("%s Handler error processing export task %s: %v", workerPrefix, jobPayload.TaskID, err)

		if !shouldRequeue || jobPayload.Try >= MAX_QUEUE_RETRY {
			log.Printf("%s Not requeuing export task %s after error (retry: %d, shouldRequeue: %v)",
				workerPrefix, jobPayload.TaskID, jobPayload.Try, shouldRequeue)
			rabbitMQ.Nack(msg, false)
			return
		}

		requeueExportJob(rabbitMQ, workerPrefix, msg, jobPayload)
		return
	}

	log.Printf("%s Successfully processed export task %s", workerPrefix, jobPayload.TaskID)
	rabbitMQ.Ack(msg)
}

func requeueExportJob(rabbitMQ *RabbitMQ, workerPrefix string, msg amqp091.Delivery, jobPayload ExportJobPayload) {
	jobPayload.Try++
	payloadBytes, err := json.Marshal(jobPayload)
	if err != nil {
		log.Printf("%s Failed to marshal export payload for requeue: %v", workerPrefix, err)
		rabbitMQ.Nack(msg, false)
		return
	}

	if err := rabbitMQ.Publish(QueueExport, payloadBytes); err != nil {
		log.Printf("%s Failed to requeue export task %s: %v", workerPrefix, jobPayload.TaskID, err)
		rabbitMQ.Nack(msg, false)
		return
	}

	log.Printf("%s Requeued export task %s", workerPrefix, jobPayload.TaskID)
	rabbitMQ.Ack(msg)
}
