package consumer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"consignment-service/internal/entity"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// DashboardInvalidator drops cached consignor dashboards.
type DashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context, consignorID int) error
}

type Consumer struct {
	reader    MessageReader
	dashboard DashboardInvalidator
}

func NewConsumer(reader MessageReader, dashboard DashboardInvalidator) *Consumer {
	return &Consumer{reader: reader, dashboard: dashboard}
}

// Start reads order events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			continue
		}

		c.processMessage(ctx, msg)
	}
}

// processMessage handles one order event. Keys look like
// "order.created.42"; every event changes the consignor's totals.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	parts := strings.Split(string(msg.Key), ".")
	if len(parts) != 3 || parts[0] != "order" {
		log.Warn().Msgf("Skipping message with key %q", msg.Key)
		return
	}
	eventType := parts[1]

	var order entity.Order
	if err := json.Unmarshal(msg.Value, &order); err != nil {
		log.Error().Msgf("Error unmarshalling message: %v", err)
		return
	}

	switch eventType {
	case "created", "cancelled", "paid":
		if err := c.dashboard.InvalidateDashboard(ctx, order.ConsignorID); err != nil {
			log.Error().Msgf("Error invalidating dashboard for consignor %d: %v", order.ConsignorID, err)
		}
	default:
		log.Error().Msgf("Unknown order event: %s", eventType)
	}
}
