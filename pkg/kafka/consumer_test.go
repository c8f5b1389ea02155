package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"rentabook/pkg/logger"
)

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	drained   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{pending: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	if len(r.pending) == 0 {
		select {
		case <-r.drained:
		default:
			close(r.drained)
		}
	}
	return nil
}

func (r *fakeReader) Stats() kafka.ReaderStats { return kafka.ReaderStats{} }
func (r *fakeReader) Close() error             { return nil }

type fakeWriter struct {
	mu      sync.Mutex
	written []kafka.Message
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard, Level: logger.ERROR})
}

func runUntilDrained(t *testing.T, c *Consumer, reader *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not commit all messages")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}
}

func TestConsumer_RetriesTransientErrors(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "payments", Key: []byte("r-1"), Value: []byte(`{}`)})
	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("busy", nil)
		}
		return nil
	}

	c := newConsumer(reader, nil, "payments", "group", "", 3, handler, testLogger())
	c.retryBackoff = time.Millisecond

	runUntilDrained(t, c, reader)

	if calls != 3 {
		t.Errorf("handler calls = %d, want 3", calls)
	}
	if len(reader.committed) != 1 {
		t.Errorf("committed = %d, want 1", len(reader.committed))
	}
}

func TestConsumer_PermanentErrorGoesToDLQ(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "payments", Key: []byte("r-1"), Value: []byte(`{}`)})
	dlq := &fakeWriter{}
	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		return NewPermanentError("invalid payload", nil)
	}

	c := newConsumer(reader, dlq, "payments", "group", "payments.dlq", 3, handler, testLogger())
	c.retryBackoff = time.Millisecond

	runUntilDrained(t, c, reader)

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
	if len(dlq.written) != 1 {
		t.Fatalf("dlq messages = %d, want 1", len(dlq.written))
	}

	headers := map[string]string{}
	for _, h := range dlq.written[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers[HeaderOriginalTopic] != "payments" {
		t.Errorf("original topic header = %q", headers[HeaderOriginalTopic])
	}
	if headers["dlq-error-type"] != "permanent" {
		t.Errorf("error type header = %q", headers["dlq-error-type"])
	}
	if headers["dlq-consumer-group"] != "group" {
		t.Errorf("consumer group header = %q", headers["dlq-consumer-group"])
	}
	if len(reader.committed) != 1 {
		t.Errorf("committed = %d, want 1", len(reader.committed))
	}
}

func TestConsumer_MiddlewareOrder(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "payments", Key: []byte("r-1"), Value: []byte(`{}`)})
	var order []string
	handler := func(ctx context.Context, msg Message) error {
		order = append(order, "handler")
		return nil
	}

	c := newConsumer(reader, nil, "payments", "group", "", 0, handler, testLogger())
	for _, name := range []string{"outer", "inner"} {
		name := name
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	runUntilDrained(t, c, reader)

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
