package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/infrastructure/resilience"
)

type Queue struct {
	conn        *nats.Conn
	subject     string
	executor    *resilience.Executor
	logger      *slog.Logger
	maxInFlight int
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	// MaxInFlight bounds concurrently handled events per subscriber.
	MaxInFlight        int
	ResilienceExecutor *resilience.Executor
	Logger             *slog.Logger
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	maxInFlight := options.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("fincadocs"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:        conn,
		subject:     subject,
		executor:    options.ResilienceExecutor,
		logger:      logger,
		maxInFlight: maxInFlight,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishDocumentIngested(ctx context.Context, event ports.IngestEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyPublishError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return mapPublishError(err)
	}
	return nil
}

// SubscribeDocumentIngested blocks until ctx is done, then drains the subscription and
// waits for in-flight handlers.
func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, ports.IngestEvent) error) error {
	slots := make(chan struct{}, q.maxInFlight)
	var wg sync.WaitGroup

	sub, err := q.conn.QueueSubscribe(q.subject, "workers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		event, err := decodeEvent(msg.Data)
		if err != nil {
			q.logger.Error("ingest_event_invalid", "error", err, "payload_bytes", len(msg.Data))
			return
		}

		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-slots }()
			if err := handler(ctx, event); err != nil {
				q.logger.Error("ingest_handler_failed",
					"document_id", event.DocumentID,
					"tenant_id", event.TenantID,
					"error", err,
				)
			}
		}()
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	drainErr := sub.Drain()
	wg.Wait()
	if drainErr != nil {
		return fmt.Errorf("nats drain subscription: %w", drainErr)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func encodeEvent(event ports.IngestEvent) ([]byte, error) {
	if event.DocumentID == "" || event.TenantID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode ingest event", errors.New("document and tenant ids are required"))
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal ingest event: %w", err)
	}
	return payload, nil
}

// decodeEvent treats a missing level as the metadata level.
func decodeEvent(data []byte) (ports.IngestEvent, error) {
	var event ports.IngestEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return ports.IngestEvent{}, fmt.Errorf("decode ingest event: %w", err)
	}
	if event.DocumentID == "" || event.TenantID == "" {
		return ports.IngestEvent{}, errors.New("decode ingest event: missing document or tenant id")
	}
	if event.Level == 0 {
		event.Level = domain.LevelMetadata
	}
	if !event.Level.Valid() {
		return ports.IngestEvent{}, fmt.Errorf("decode ingest event: invalid level %d", event.Level)
	}
	return event, nil
}
