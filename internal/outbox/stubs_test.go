package outbox

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

// writtenBatch is one WriteMessages call captured by stubProducer.
type writtenBatch struct {
	topic    string
	messages []kafka.Message
}

// stubProducer records batches instead of talking to a broker. A non-nil err fails every write.
type stubProducer struct {
	mu     sync.Mutex
	err    error
	writes []writtenBatch
}

func (s *stubProducer) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, writtenBatch{topic: topic, messages: append([]kafka.Message(nil), msgs...)})
	return nil
}

// stubRegistry hands out a fixed schema id and remembers which subjects were registered.
type stubRegistry struct {
	mu    sync.Mutex
	id    int
	err   error
	calls []string
}

func (s *stubRegistry) EnsureSchema(_ context.Context, subject, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, subject)
	if s.err != nil {
		return 0, s.err
	}
	return max(s.id, 1), nil
}
