package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/workbasehq/workbase/pkg/logger"
)

var (
	// ErrQueueFull signals that the dispatch buffer has no capacity left.
	ErrQueueFull = errors.New("mail queue: buffer full")
	// ErrQueueClosed signals that the queue no longer accepts messages.
	ErrQueueClosed = errors.New("mail queue: closed")
)

const defaultQueueSize = 256

// Dispatcher hands messages off for asynchronous delivery. Enqueue returns
// once the message is buffered; delivery happens on a background worker.
type Dispatcher interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Queue is a buffered in-process Dispatcher backed by a Mailer. Callers only
// block on enqueue, never on SMTP delivery.
type Queue struct {
	mailer  Mailer
	jobs    chan Message
	timeout time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// QueueOption customises the Queue.
type QueueOption func(*Queue)

// WithQueueSize overrides the dispatch buffer capacity.
func WithQueueSize(size int) QueueOption {
	return func(q *Queue) {
		if size > 0 {
			q.jobs = make(chan Message, size)
		}
	}
}

// WithSendTimeout bounds each delivery attempt.
func WithSendTimeout(timeout time.Duration) QueueOption {
	return func(q *Queue) {
		if timeout > 0 {
			q.timeout = timeout
		}
	}
}

// NewQueue constructs a Queue and starts its delivery worker.
func NewQueue(mailer Mailer, opts ...QueueOption) (*Queue, error) {
	if mailer == nil {
		return nil, errors.New("mail queue: mailer is required")
	}

	q := &Queue{
		mailer:  mailer,
		jobs:    make(chan Message, defaultQueueSize),
		timeout: 30 * time.Second,
		log:     logger.WithModule("mail"),
	}
	for _, opt := range opts {
		opt(q)
	}

	q.wg.Add(1)
	go q.worker()

	return q, nil
}

// Enqueue buffers a message for delivery. It fails fast when the buffer is
// full or the queue has been closed.
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.mu.Unlock()

	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	select {
	case q.jobs <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for buffered deliveries to drain.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for msg := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := q.mailer.Send(ctx, msg)
		cancel()

		if err != nil && !errors.Is(err, ErrSMTPDisabled) {
			q.log.Error("mail delivery failed",
				zap.Strings("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	}
}
