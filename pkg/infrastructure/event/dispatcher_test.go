package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderPlaced struct {
	OrderID uuid.UUID
}

func (orderPlaced) Type() string { return "OrderPlaced" }

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaDispatcher(t *testing.T) {
	t.Run("Publish envelope keyed by event type", func(t *testing.T) {
		writer := &recordingWriter{}
		dispatcher := newKafkaDispatcher(writer, 0)
		orderID := uuid.New()

		require.NoError(t, dispatcher.Dispatch(orderPlaced{OrderID: orderID}))

		require.Len(t, writer.messages, 1)
		assert.Equal(t, "OrderPlaced", string(writer.messages[0].Key))

		var decoded struct {
			Type    string `json:"type"`
			Payload struct {
				OrderID uuid.UUID
			} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
		assert.Equal(t, "OrderPlaced", decoded.Type)
		assert.Equal(t, orderID, decoded.Payload.OrderID)
	})

	t.Run("Surface broker failure", func(t *testing.T) {
		writer := &recordingWriter{err: errors.New("broker down")}
		dispatcher := newKafkaDispatcher(writer, 0)

		err := dispatcher.Dispatch(orderPlaced{})
		assert.ErrorContains(t, err, "broker down")
		assert.ErrorContains(t, err, "publish OrderPlaced")
	})

	t.Run("Close the writer", func(t *testing.T) {
		writer := &recordingWriter{}
		require.NoError(t, newKafkaDispatcher(writer, 0).Close())
		assert.True(t, writer.closed)
	})
}

func TestLogDispatcher(t *testing.T) {
	assert.NoError(t, LogDispatcher{}.Dispatch(orderPlaced{}))
}
