package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	BlobExchange          = "blob.exchange"
	BlobReleaseQueue      = "blob.release"
	BlobReleaseRoutingKey = "blob.release"
)

// publisher is the part of *amqp.Channel the blob service needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type BlobService struct {
	channel publisher
}

type ReleaseBlobMessage struct {
	BlobRef   string `json:"blob_ref"`
	Timestamp int64  `json:"timestamp"`
}

func InitBlobService(channel *amqp.Channel) *BlobService {
	service := &BlobService{
		channel: channel,
	}

	// Declare exchange
	err := channel.ExchangeDeclare(
		BlobExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Blob exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		BlobReleaseQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Blob release queue: " + err.Error())
	}

	err = channel.QueueBind(
		BlobReleaseQueue,
		BlobReleaseRoutingKey,
		BlobExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Blob release queue: " + err.Error())
	}

	return service
}

// Release schedules deletion of the stored object behind ref.
func (s *BlobService) Release(ctx context.Context, ref string) error {
	message := ReleaseBlobMessage{
		BlobRef:   ref,
		Timestamp: time.Now().Unix(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		BlobExchange,
		BlobReleaseRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}
