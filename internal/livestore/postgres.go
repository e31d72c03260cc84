package livestore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// NotifyChannel is the Postgres LISTEN/NOTIFY channel carrying changed topics as payload.
const NotifyChannel = "document_changes"

const listenerPingInterval = 90 * time.Second

// Broadcaster notifies local subscribers directly and other processes through pg_notify.
type Broadcaster struct {
	hub    *Hub
	db     *sql.DB
	logger *slog.Logger
}

// NewBroadcaster returns a domain.ChangeNotifier backed by hub and db.
func NewBroadcaster(hub *Hub, db *sql.DB, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{hub: hub, db: db, logger: logger}
}

// Notify implements domain.ChangeNotifier. pg_notify failures are logged, never returned:
// the write that triggered the notification has already succeeded.
func (b *Broadcaster) Notify(ctx context.Context, topics ...string) {
	b.hub.Notify(ctx, topics...)
	for _, topic := range topics {
		if _, err := b.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, topic); err != nil {
			b.logger.WarnContext(ctx, "pg_notify failed", "topic", topic, "err", err)
		}
	}
}

// Listener relays NOTIFY payloads from Postgres into a Hub.
type Listener struct {
	listener *pq.Listener
	hub      *Hub
	logger   *slog.Logger
}

// NewListener connects a pq.Listener to dsn and listens on NotifyChannel.
func NewListener(dsn string, hub *Hub, logger *slog.Logger) (*Listener, error) {
	report := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("change feed listener event", "event", int(ev), "err", err)
		}
	}
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, report)
	if err := l.Listen(NotifyChannel); err != nil {
		l.Close()
		return nil, fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}
	return &Listener{listener: l, hub: hub, logger: logger}, nil
}

// Run forwards notifications until ctx is done.
func (l *Listener) Run(ctx context.Context) {
	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.listener.Notify:
			if n == nil {
				// Reconnected: notifications may have been dropped meanwhile.
				l.logger.Info("change feed reconnected, refreshing all subscriptions")
				l.hub.NotifyAll()
				continue
			}
			l.hub.Notify(ctx, n.Extra)
		case <-ticker.C:
			go func() {
				if err := l.listener.Ping(); err != nil {
					l.logger.Warn("change feed ping failed", "err", err)
				}
			}()
		}
	}
}

// Close stops listening and releases the connection.
func (l *Listener) Close() error {
	return l.listener.Close()
}
