package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaStockPublisher streams stock-changed events to a Kafka topic through
// a buffered inbox so publishing never blocks the request path. Messages are
// keyed by product id to keep per-product ordering.
type KafkaStockPublisher struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	log     *logrus.Logger
}

// NewKafkaStockPublisher builds the publisher and starts its writer loop.
func NewKafkaStockPublisher(brokers []string, topic string, buf int, log *logrus.Logger) *KafkaStockPublisher {
	p := &KafkaStockPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log,
	}
	go p.run()
	return p
}

func (p *KafkaStockPublisher) run() {
	defer close(p.closeCh)
	for m := range p.inbox {
		if err := p.w.WriteMessages(context.Background(), m); err != nil {
			p.log.WithError(err).Warn("failed to publish stock event")
		}
	}
	_ = p.w.Close()
}

// StockChanged enqueues one stock-changed event. Returns without error when
// the inbox is full; a dropped event is logged, never propagated.
func (p *KafkaStockPublisher) StockChanged(ev StockChanged) error {
	env := wrap(TypeStockChanged, ev)
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ProductID, 10)),
		Value: value,
	}

	select {
	case p.inbox <- msg:
	default:
		p.log.WithField("product_id", ev.ProductID).Warn("stock event inbox full, dropping event")
	}
	return nil
}

// Close drains the inbox and shuts the writer down.
func (p *KafkaStockPublisher) Close() error {
	close(p.inbox)
	<-p.closeCh
	return nil
}

var _ StockPublisher = (*KafkaStockPublisher)(nil)
