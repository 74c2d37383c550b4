package outbox

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaProducer publishes dispatcher batches. Writers are created per topic on first use
// and hash on the message key, so one user's events keep their order within a partition.
type KafkaProducer struct {
	addr    net.Addr
	log     logrus.FieldLogger
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer for the given brokers. Writer errors are logged.
func NewKafkaProducer(brokers []string, logger logrus.FieldLogger) *KafkaProducer {
	return &KafkaProducer{
		addr:    kafka.TCP(brokers...),
		log:     logger.WithField("component", "kafka-producer"),
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages publishes msgs to topic and blocks until every broker replica acknowledged them.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	w, err := p.writer(topic)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writer(topic string) (*kafka.Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writers == nil {
		return nil, errors.New("outbox: producer closed")
	}
	if w, ok := p.writers[topic]; ok {
		return w, nil
	}

	log := p.log.WithField("topic", topic)
	w := &kafka.Writer{
		Addr:                   p.addr,
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
		ErrorLogger:            kafka.LoggerFunc(func(msg string, args ...interface{}) { log.Errorf(msg, args...) }),
	}
	p.writers[topic] = w
	return w, nil
}

// Close flushes and releases every writer. Later writes fail.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, w := range p.writers {
		errs = append(errs, w.Close())
	}
	p.writers = nil
	return errors.Join(errs...)
}
