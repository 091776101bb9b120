package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

func TestQueueDeliversEnqueuedMessages(t *testing.T) {
	mailer := &recordingMailer{}
	queue, err := NewQueue(mailer)
	require.NoError(t, err)

	require.NoError(t, queue.Enqueue(context.Background(), Message{
		To:      []string{"one@example.com"},
		Subject: "first",
	}))
	require.NoError(t, queue.Enqueue(context.Background(), Message{
		To:      []string{"two@example.com"},
		Subject: "second",
	}))

	queue.Close()

	sent := mailer.messages()
	require.Len(t, sent, 2)
	require.Equal(t, "first", sent[0].Subject)
	require.Equal(t, "second", sent[1].Subject)
}

func TestQueueEnqueueAfterCloseFails(t *testing.T) {
	queue, err := NewQueue(&recordingMailer{})
	require.NoError(t, err)

	queue.Close()

	err = queue.Enqueue(context.Background(), Message{To: []string{"x@example.com"}})
	require.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueueRejectsWhenBufferFull(t *testing.T) {
	block := make(chan struct{})
	mailer := blockingMailer{release: block}
	queue, err := NewQueue(mailer, WithQueueSize(1), WithSendTimeout(time.Second))
	require.NoError(t, err)
	defer func() {
		close(block)
		queue.Close()
	}()

	// First message occupies the worker, second fills the buffer.
	require.NoError(t, queue.Enqueue(context.Background(), Message{Subject: "a"}))
	var full error
	for i := 0; i < 50; i++ {
		full = queue.Enqueue(context.Background(), Message{Subject: "b"})
		if errors.Is(full, ErrQueueFull) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.ErrorIs(t, full, ErrQueueFull)
}

type blockingMailer struct {
	release chan struct{}
}

func (m blockingMailer) Send(ctx context.Context, _ Message) error {
	select {
	case <-m.release:
	case <-ctx.Done():
	}
	return nil
}
