package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-drive-service/infra"
	"github.com/tnqbao/gau-drive-service/infra/produce"
)

const maxReleaseAttempts = 3

type BlobDeleter interface {
	Delete(ctx context.Context, ref string) error
}

type BlobConsumer struct {
	channel    *amqp.Channel
	blobs      BlobDeleter
	logger     *infra.LoggerClient
	retryDelay time.Duration
}

func NewBlobConsumer(channel *amqp.Channel, infra *infra.Infra) *BlobConsumer {
	return &BlobConsumer{
		channel:    channel,
		blobs:      infra.Blob,
		logger:     infra.Logger,
		retryDelay: 2 * time.Second,
	}
}

func (c *BlobConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.BlobReleaseQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register blob release consumer: %w", err)
	}

	c.logger.InfoWithContextf(ctx, "[Blob Consumer] Started listening for release jobs on queue: %s", produce.BlobReleaseQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.InfoWithContextf(ctx, "[Blob Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.WarningWithContextf(ctx, "[Blob Consumer] Channel closed")
					return
				}
				c.handleRelease(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *BlobConsumer) handleRelease(ctx context.Context, msg amqp.Delivery) {
	var payload produce.ReleaseBlobMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Blob Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	if payload.BlobRef == "" {
		c.logger.WarningWithContextf(ctx, "[Blob Consumer] Message without blob reference, dropping")
		_ = msg.Nack(false, false)
		return
	}

	var err error
	for attempt := 1; attempt <= maxReleaseAttempts; attempt++ {
		err = c.blobs.Delete(ctx, payload.BlobRef)
		if err == nil || errors.Is(err, infra.ErrBlobNotFound) {
			c.logger.InfoWithContextf(ctx, "[Blob Consumer] Released blob %s", payload.BlobRef)
			_ = msg.Ack(false)
			return
		}

		c.logger.ErrorWithContextf(ctx, err, "[Blob Consumer] Attempt %d/%d to release %s failed: %v", attempt, maxReleaseAttempts, payload.BlobRef, err)

		if attempt < maxReleaseAttempts {
			time.Sleep(time.Duration(attempt) * c.retryDelay)
		}
	}

	// After max retries, reject and requeue
	c.logger.ErrorWithContextf(ctx, err, "[Blob Consumer] Failed after %d attempts, requeueing %s", maxReleaseAttempts, payload.BlobRef)
	_ = msg.Nack(false, true)
}
