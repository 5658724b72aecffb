package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"consignment-service/internal/commission"
	"consignment-service/internal/entity"
)

const dashboardTTL = time.Minute

// OrderStore is the persistence the sale workflow needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	GetOrder(ctx context.Context, consignorID, id int) (*entity.Order, error)
	ListOrders(ctx context.Context, consignorID int) ([]*entity.Order, error)
	CancelOrder(ctx context.Context, consignorID, id int) (bool, error)
	MarkPayoutPaid(ctx context.Context, consignorID, id int, paidAt time.Time) (bool, error)
	Summary(ctx context.Context, consignorID int) (*entity.Dashboard, error)
}

// EventWriter publishes order events. *kafka.Writer satisfies it.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OrderService finalises sales and tracks consignor payouts.
type OrderService struct {
	orderRepo   OrderStore
	items       *ItemService
	kafkaWriter EventWriter
	rdb         *redis.Client
}

// NewOrderService creates a new instance of OrderService. kafkaWriter may
// be nil, in which case no events are published.
func NewOrderService(orderRepo OrderStore, items *ItemService, kafkaWriter EventWriter, rdb *redis.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		items:       items,
		kafkaWriter: kafkaWriter,
		rdb:         rdb,
	}
}

// QuoteCommission prices a prospective sale without recording anything.
func (s *OrderService) QuoteCommission(salePrice float64, payoutType string) (commission.Result, error) {
	return commission.CalculateCommission(salePrice, commission.PayoutType(payoutType))
}

// FinalizeSale records the sale of an approved item and the consignor's
// payout.
func (s *OrderService) FinalizeSale(ctx context.Context, itemID int, salePrice float64, payoutType string) (*entity.Order, error) {
	result, err := commission.CalculateCommission(salePrice, commission.PayoutType(payoutType))
	if err != nil {
		return nil, err
	}
	if !result.Eligible {
		return nil, &IneligibleError{Message: result.Message, Reason: commission.FloorReason}
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	// Claiming the item first keeps two admins from selling it twice.
	if err := s.items.MarkSold(ctx, itemID); err != nil {
		return nil, err
	}

	cents := result.Cents()
	order := &entity.Order{
		OrderRef:        uuid.NewString(),
		ItemID:          item.ID,
		ConsignorID:     item.ConsignorID,
		SalePriceCents:  cents.SaleCents,
		CommissionRate:  int(result.CommissionRate),
		CommissionCents: cents.CommissionCents,
		PayoutCents:     cents.PayoutCents,
		PayoutType:      string(result.PayoutType),
		PayoutStatus:    entity.PayoutPending,
		Status:          entity.OrderCompleted,
		CreatedAt:       time.Now().UTC(),
	}

	created, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating order for item %d", itemID)
		if relistErr := s.items.Relist(ctx, itemID); relistErr != nil {
			logger.Error().Err(relistErr).Msgf("Error relisting item %d after failed sale", itemID)
		}
		return nil, err
	}

	s.items.dropDashboard(ctx, created.ConsignorID)
	logger.Info().Msgf("Sold item %d for %s, payout %s (%s)", itemID, commission.FormatEUR(created.SalePriceCents), commission.FormatEUR(created.PayoutCents), created.PayoutType)
	s.publishOrderEvent(ctx, created, "created")

	return created, nil
}

// GetOrder returns one of a consignor's orders.
func (s *OrderService) GetOrder(ctx context.Context, consignorID, id int) (*entity.Order, error) {
	order, err := s.orderRepo.GetOrder(ctx, consignorID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		logger.Error().Err(err).Msgf("Error getting order %d", id)
		return nil, err
	}
	return order, nil
}

// ListOrders returns a consignor's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, consignorID int) ([]*entity.Order, error) {
	orders, err := s.orderRepo.ListOrders(ctx, consignorID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing orders for consignor %d", consignorID)
		return nil, err
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	return orders, nil
}

// CancelSale cancels an order whose payout has not been made and puts the
// item back on sale.
func (s *OrderService) CancelSale(ctx context.Context, consignorID, id int) (*entity.Order, error) {
	ok, err := s.orderRepo.CancelOrder(ctx, consignorID, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error cancelling order %d", id)
		return nil, err
	}

	order, err := s.GetOrder(ctx, consignorID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("order %d is %s with payout %s: %w", id, order.Status, order.PayoutStatus, ErrInvalidTransition)
	}

	if err := s.items.Relist(ctx, order.ItemID); err != nil {
		logger.Error().Err(err).Msgf("Error relisting item %d", order.ItemID)
	}
	s.items.dropDashboard(ctx, consignorID)
	s.publishOrderEvent(ctx, order, "cancelled")

	return order, nil
}

// MarkPayoutPaid records that the consignor has been paid.
func (s *OrderService) MarkPayoutPaid(ctx context.Context, consignorID, id int) (*entity.Order, error) {
	ok, err := s.orderRepo.MarkPayoutPaid(ctx, consignorID, id, time.Now().UTC())
	if err != nil {
		logger.Error().Err(err).Msgf("Error marking payout of order %d", id)
		return nil, err
	}

	order, err := s.GetOrder(ctx, consignorID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("order %d is %s with payout %s: %w", id, order.Status, order.PayoutStatus, ErrInvalidTransition)
	}

	s.items.dropDashboard(ctx, consignorID)
	s.publishOrderEvent(ctx, order, "paid")
	return order, nil
}

// DashboardCacheKey is the redis key holding a consignor's dashboard.
func DashboardCacheKey(consignorID int) string {
	return fmt.Sprintf("dashboard:%d", consignorID)
}

// Dashboard summarises a consignor's sales and payouts. Results are cached
// briefly; item and order writes clear the entry, and so do order events
// seen by the consumer.
func (s *OrderService) Dashboard(ctx context.Context, consignorID int) (*entity.Dashboard, error) {
	key := DashboardCacheKey(consignorID)
	cached, err := s.rdb.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error().Err(err).Msgf("Error getting dashboard %d from cache", consignorID)
	}
	if cached != "" {
		var d entity.Dashboard
		if err := json.Unmarshal([]byte(cached), &d); err == nil {
			return &d, nil
		}
		logger.Warn().Msgf("Discarding unreadable dashboard cache for consignor %d", consignorID)
	}

	d, err := s.orderRepo.Summary(ctx, consignorID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error summarising orders for consignor %d", consignorID)
		return nil, err
	}
	counts, err := s.items.itemRepo.CountItemsByStatus(ctx, consignorID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error counting items for consignor %d", consignorID)
		return nil, err
	}
	d.ItemCounts = counts

	data, err := json.Marshal(d)
	if err == nil {
		err = s.rdb.Set(ctx, key, data, dashboardTTL).Err()
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error caching dashboard %d", consignorID)
	}

	return d, nil
}

// InvalidateDashboard drops the cached dashboard of a consignor.
func (s *OrderService) InvalidateDashboard(ctx context.Context, consignorID int) error {
	return s.rdb.Del(ctx, DashboardCacheKey(consignorID)).Err()
}

// publishOrderEvent writes order.<event>.<id>. The order is already
// persisted, so a failed publish is logged rather than returned.
func (s *OrderService) publishOrderEvent(ctx context.Context, order *entity.Order, event string) {
	if s.kafkaWriter == nil {
		return
	}

	orderJSON, err := json.Marshal(order)
	if err != nil {
		logger.Error().Err(err).Msgf("Error encoding order %d", order.ID)
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order.%s.%d", event, order.ID)),
		Value: orderJSON,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing order.%s for order %d", event, order.ID)
	}
}
