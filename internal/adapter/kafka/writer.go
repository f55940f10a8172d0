package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/pollution-map-service/internal/config"
	"github.com/couchcryptid/pollution-map-service/internal/domain"
	"github.com/couchcryptid/pollution-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// Values of the site_kind header.
const (
	KindGeolocated = "geolocated"
	KindDiffuse    = "diffuse"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes site snapshots to a Kafka topic, one message per site.
// It implements pipeline.Publisher.
type Writer struct {
	writer  messageWriter
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured sites topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSitesTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, clock: clockwork.NewRealClock(), logger: logger, metrics: metrics}
}

// PublishSites writes every site of result in a single WriteMessages call.
// Geolocated sites come first, each collection in its own order.
func (w *Writer) PublishSites(ctx context.Context, result domain.SitesResult) error {
	refreshedAt := w.clock.Now().UTC()

	msgs := make([]kafkago.Message, 0, len(result.Sites)+len(result.DiffuseSites))
	for _, s := range result.Sites {
		msg, err := serializeToMessage(s.Site(), refreshedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	for _, s := range result.DiffuseSites {
		msg, err := serializeToMessage(s.Site(), refreshedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write site messages: %w", err)
	}
	w.metrics.MessagesPublished.Add(float64(len(msgs)))
	w.logger.Debug("site messages written", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey is the partition key of a site: its number and name.
func MessageKey(s domain.Site) string {
	return strconv.Itoa(s.ID) + "-" + s.Name
}

// serializeToMessage marshals a Site into a Kafka message.
func serializeToMessage(s domain.Site, refreshedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize site %d: %w", s.ID, err)
	}
	kind := KindDiffuse
	if s.Geolocated() {
		kind = KindGeolocated
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(s)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "site_kind", Value: []byte(kind)},
			{Key: "refreshed_at", Value: []byte(refreshedAt.Format(time.RFC3339))},
		},
	}, nil
}
