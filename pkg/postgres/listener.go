package postgres

import (
	"context"
	"errors"
	"fmt"
	"playstore-predictor/pkg/logger"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
)

// Notification is a single NOTIFY delivered on the listened channel.
type Notification struct {
	Channel string
	Payload string
}

// Listener holds one dedicated pgx connection running LISTEN on a channel and
// reconnects with exponential backoff when the connection drops.
type Listener struct {
	connString           string
	channel              string
	reconnectMaxInterval time.Duration
	log                  *logger.Logger
}

func NewListener(connString, channel string, reconnectMaxInterval time.Duration, log *logger.Logger) *Listener {
	return &Listener{
		connString:           connString,
		channel:              channel,
		reconnectMaxInterval: reconnectMaxInterval,
		log:                  log,
	}
}

// Listen blocks until ctx is cancelled. handle is called for every
// notification in arrival order; onConnect is called after each successful
// LISTEN with reconnected=false the first time and true afterwards.
func (l *Listener) Listen(ctx context.Context, handle func(Notification), onConnect func(reconnected bool)) error {
	connectedBefore := false
	for {
		conn, err := l.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		l.log.InfoContext(ctx, "Listening for store changes", logger.StringField("channel", l.channel))
		if onConnect != nil {
			onConnect(connectedBefore)
		}
		connectedBefore = true

		err = l.receive(ctx, conn, handle)
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = conn.Close(closeCtx)
		cancel()

		if ctx.Err() != nil {
			return nil
		}
		l.log.WarnContext(ctx, "Change listener connection lost, reconnecting",
			logger.StringField("channel", l.channel),
			logger.ErrorField(err))
	}
}

func (l *Listener) connect(ctx context.Context) (*pgx.Conn, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0
	if l.reconnectMaxInterval > 0 {
		policy.MaxInterval = l.reconnectMaxInterval
	}

	var conn *pgx.Conn
	operation := func() error {
		c, err := pgx.Connect(ctx, l.connString)
		if err != nil {
			return err
		}
		if _, err := c.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
			_ = c.Close(ctx)
			return err
		}
		conn = c
		return nil
	}
	notify := func(err error, wait time.Duration) {
		l.log.WarnContext(ctx, "Failed to start change listener",
			logger.ErrorField(err),
			logger.DurationField("retry_in", wait))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, fmt.Errorf("listen on %s: %w", l.channel, err)
	}
	return conn, nil
}

func (l *Listener) receive(ctx context.Context, conn *pgx.Conn, handle func(Notification)) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return err
		}
		handle(Notification{Channel: n.Channel, Payload: n.Payload})
	}
}
