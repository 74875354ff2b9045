package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/driftchat/backend/internal/common/logger"
	"github.com/driftchat/backend/internal/observability/metrics"
)

// Notifier publishes change events to the channel of the affected user.
// Publishing is fire-and-forget: the outcome never reaches the caller.
type Notifier interface {
	NotifyUserUpdate(ctx context.Context, event UserUpdateEvent)
}

// Publisher is the transport the dispatcher hands frames to.
type Publisher interface {
	SendToUser(ctx context.Context, userID string, data []byte) error
}

type queuedEvent struct {
	userID string
	data   []byte
}

// Dispatcher decouples event publishing from the request that produced the
// event. Events are queued and delivered by a single detached worker; a
// request cancelled after its commit point cannot recall the write, so the
// worker runs on the dispatcher's own context and failures surface only
// through logs and counters.
type Dispatcher struct {
	publisher   Publisher
	queue       chan queuedEvent
	sendTimeout time.Duration
	log         *logger.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewDispatcher(publisher Publisher, queueSize int, sendTimeout time.Duration, log *logger.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		publisher:   publisher,
		queue:       make(chan queuedEvent, queueSize),
		sendTimeout: sendTimeout,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) NotifyUserUpdate(ctx context.Context, event UserUpdateEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		d.log.WithFields(ctx, logger.Fields{
			"user_id": event.UserID,
			"action":  "notify_marshal_failed",
		}).Errorf("failed to marshal user update event: %v", err)
		metrics.UserEventsDropped.WithLabelValues("marshal").Inc()
		return
	}

	frame, err := json.Marshal(Envelope{Type: TypeUserUpdate, Payload: payload})
	if err != nil {
		d.log.WithFields(ctx, logger.Fields{
			"user_id": event.UserID,
			"action":  "notify_marshal_failed",
		}).Errorf("failed to marshal event envelope: %v", err)
		metrics.UserEventsDropped.WithLabelValues("marshal").Inc()
		return
	}

	select {
	case d.queue <- queuedEvent{userID: event.UserID, data: frame}:
	default:
		d.log.WithFields(ctx, logger.Fields{
			"user_id": event.UserID,
			"action":  "notify_queue_full",
		}).Warn("user event dropped: queue full")
		metrics.UserEventsDropped.WithLabelValues("queue_full").Inc()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			d.drain()
			return
		case ev, ok := <-d.queue:
			if !ok {
				return
			}
			d.publish(ev)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case ev := <-d.queue:
			d.publish(ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(ev queuedEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithFields(context.Background(), logger.Fields{
				"user_id": ev.userID,
				"action":  "notify_publish_panic",
			}).Errorf("panic while publishing user event: %v", r)
			metrics.UserEventsDropped.WithLabelValues("panic").Inc()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.publisher.SendToUser(ctx, ev.userID, ev.data); err != nil {
		d.log.WithFields(ctx, logger.Fields{
			"user_id": ev.userID,
			"action":  "notify_publish_failed",
		}).Warnf("failed to publish user event: %v", err)
		metrics.UserEventsDropped.WithLabelValues("publish_failed").Inc()
		return
	}

	metrics.UserEventsPublished.Inc()
}

// Stop flushes queued events and stops the worker. Safe to call more than once.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(d.cancel)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
