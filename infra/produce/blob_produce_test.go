package produce

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

func (p *recordingPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchange = exchange
	p.key = key
	p.msg = msg
	return nil
}

func TestRelease_PublishesPersistentMessage(t *testing.T) {
	pub := &recordingPublisher{}
	svc := &BlobService{channel: pub}

	require.NoError(t, svc.Release(context.Background(), "media/user_1/a.txt"))

	assert.Equal(t, BlobExchange, pub.exchange)
	assert.Equal(t, BlobReleaseRoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "application/json", pub.msg.ContentType)

	var decoded ReleaseBlobMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, "media/user_1/a.txt", decoded.BlobRef)
	assert.NotZero(t, decoded.Timestamp)
}
