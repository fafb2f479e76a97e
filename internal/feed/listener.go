package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/myspares/catalog-platform/internal/config"
	"github.com/myspares/catalog-platform/internal/metrics"
)

// Handler consumes one change event. Handlers must tolerate redelivery of
// the same notification; delivery is at-least-once.
type Handler interface {
	Handle(ctx context.Context, event *ChangeEvent)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event *ChangeEvent)

func (f HandlerFunc) Handle(ctx context.Context, event *ChangeEvent) {
	f(ctx, event)
}

// Listener runs one supervised worker per watched collection. Each worker
// holds a LISTEN subscription on that collection's notify channel and
// feeds notifications, in commit order, through the registered handlers.
// A stream error never terminates the worker; it logs, waits the
// configured backoff, and resubscribes.
type Listener struct {
	cfg config.Feed
	dsn string

	mu       sync.Mutex
	handlers map[Collection][]Handler

	// OnReconnect, when set, runs after the underlying connection is
	// re-established. NOTIFY drops messages sent while disconnected, so
	// this is where a catch-up reconcile is hooked in.
	OnReconnect func(ctx context.Context, collection Collection)

	wg sync.WaitGroup
}

func NewListener(cfg config.Feed, dsn string) *Listener {
	return &Listener{
		cfg:      cfg,
		dsn:      dsn,
		handlers: make(map[Collection][]Handler),
	}
}

// Register appends a handler to a collection's dispatch chain. Handlers
// run in registration order, one event fully processed before the next
// is read from that collection's stream.
func (l *Listener) Register(collection Collection, handler Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.handlers[collection] = append(l.handlers[collection], handler)
}

// Start spawns one worker per registered collection. Workers run until
// the context is cancelled; use Wait to join them at shutdown.
func (l *Listener) Start(ctx context.Context) {
	l.mu.Lock()
	collections := make([]Collection, 0, len(l.handlers))
	for collection := range l.handlers {
		collections = append(collections, collection)
	}
	l.mu.Unlock()

	for _, collection := range collections {
		l.wg.Add(1)

		go func(collection Collection) {
			defer l.wg.Done()
			l.supervise(ctx, collection)
		}(collection)

		slog.Info("change feed worker started", slog.String("collection", string(collection)))
	}
}

// Wait blocks until every worker has observed cancellation and returned.
func (l *Listener) Wait() {
	l.wg.Wait()
}

// supervise keeps one collection's subscription alive forever. Any error
// from the watch loop degrades to "audit/reconciliation temporarily
// stale" and is retried after a fixed backoff.
func (l *Listener) supervise(ctx context.Context, collection Collection) {
	for {
		err := l.watch(ctx, collection)
		if ctx.Err() != nil {
			slog.Info("change feed worker stopped", slog.String("collection", string(collection)))
			return
		}

		slog.Error("change feed stream error, resubscribing",
			slog.String("collection", string(collection)),
			slog.Any("error", err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.cfg.RetryBackoff):
		}
	}
}

func (l *Listener) channel(collection Collection) string {
	return l.cfg.ChannelPrefix + "_" + string(collection)
}

// watch opens one LISTEN subscription and pumps notifications through
// the handler chain until the subscription or the context dies.
func (l *Listener) watch(ctx context.Context, collection Collection) error {
	errCh := make(chan error, 1)

	pqListener := pq.NewListener(l.dsn, l.cfg.MinReconnect, l.cfg.MaxReconnect,
		func(event pq.ListenerEventType, err error) {
			if event == pq.ListenerEventConnectionAttemptFailed && err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		})
	defer pqListener.Close()

	if err := pqListener.Listen(l.channel(collection)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-errCh:
			return err

		case notification := <-pqListener.Notify:
			if notification == nil {
				// nil marks a dropped-and-reestablished connection;
				// notifications sent meanwhile are gone for good.
				metrics.FeedReconnectsTotal.WithLabelValues(string(collection)).Inc()
				slog.Warn("change feed connection re-established",
					slog.String("collection", string(collection)))

				if l.OnReconnect != nil {
					l.OnReconnect(ctx, collection)
				}

				continue
			}

			l.dispatch(ctx, collection, []byte(notification.Extra))
		}
	}
}

// dispatch parses one payload and runs the handler chain. A bad event is
// logged and skipped so it cannot wedge the stream.
func (l *Listener) dispatch(ctx context.Context, collection Collection, payload []byte) {
	event, err := ParseEvent(payload)
	if err != nil {
		metrics.FeedHandlerFailuresTotal.WithLabelValues(string(collection)).Inc()
		slog.Error("discarding malformed change event",
			slog.String("collection", string(collection)),
			slog.Any("error", err))

		return
	}

	metrics.FeedEventsTotal.WithLabelValues(string(event.Collection), string(event.Operation)).Inc()

	l.mu.Lock()
	handlers := l.handlers[collection]
	l.mu.Unlock()

	for _, handler := range handlers {
		handler.Handle(ctx, event)
	}
}
