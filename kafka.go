package invkeeper

import (
	"context"
	"encoding/json"
	"time"

	"github.com/everFinance/invkeeper/schema"
	"github.com/segmentio/kafka-go"
)

const (
	TxTopic = "invkeeper_transaction"
)

type KWriter struct {
	w *kafka.Writer
}

func NewKWriter(topic string, uri string) (*KWriter, error) {
	w := &kafka.Writer{
		Addr:         kafka.TCP(uri),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}

	return &KWriter{
		w: w,
	}, nil
}

func (kw *KWriter) Write(key, body []byte) error {
	err := kw.w.WriteMessages(
		context.Background(),
		kafka.Message{
			Key:   key,
			Value: body,
		},
	)
	return err
}

// Publish writes a lifecycle event keyed by object id, so events of one object stay ordered.
func (kw *KWriter) Publish(ev schema.TxEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return kw.Write([]byte(ev.ObjectId), body)
}

func (kw *KWriter) Close() {
	kw.w.Close()
}
