package repository

import (
	"context"
	"database/sql"
	"time"

	"consignment-service/internal/entity"
	"consignment-service/internal/sharding"
)

// OrderRepository stores orders on the shard owning the consignor. Order
// ids are only unique within a shard, so every lookup takes the consignor.
type OrderRepository struct {
	dbShards []*sql.DB
	router   *sharding.ShardRouter
}

func NewOrderRepository(dbShards []*sql.DB, router *sharding.ShardRouter) *OrderRepository {
	return &OrderRepository{dbShards, router}
}

func (r *OrderRepository) shard(consignorID int) *sql.DB {
	return r.dbShards[r.router.GetShard(consignorID)]
}

const orderColumns = `id, order_ref, item_id, consignor_id, sale_price_cents, commission_rate, commission_cents, payout_cents, payout_type, payout_status, status, created_at, paid_at`

func scanOrder(row interface{ Scan(...any) error }) (*entity.Order, error) {
	order := &entity.Order{}
	var paidAt sql.NullTime
	err := row.Scan(&order.ID, &order.OrderRef, &order.ItemID, &order.ConsignorID, &order.SalePriceCents, &order.CommissionRate, &order.CommissionCents, &order.PayoutCents, &order.PayoutType, &order.PayoutStatus, &order.Status, &order.CreatedAt, &paidAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}
	return order, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	db := r.shard(order.ConsignorID)

	query := `INSERT INTO orders (order_ref, item_id, consignor_id, sale_price_cents, commission_rate, commission_cents, payout_cents, payout_type, payout_status, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, query, order.OrderRef, order.ItemID, order.ConsignorID, order.SalePriceCents, order.CommissionRate, order.CommissionCents, order.PayoutCents, order.PayoutType, order.PayoutStatus, order.Status, order.CreatedAt)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	order.ID = int(id)
	return order, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, consignorID, id int) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ? AND consignor_id = ?`
	return scanOrder(r.shard(consignorID).QueryRowContext(ctx, query, id, consignorID))
}

func (r *OrderRepository) ListOrders(ctx context.Context, consignorID int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE consignor_id = ? ORDER BY id DESC`
	rows, err := r.shard(consignorID).QueryContext(ctx, query, consignorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// CancelOrder marks a completed order with an unpaid payout as cancelled.
// It reports false when the order was not in that state.
func (r *OrderRepository) CancelOrder(ctx context.Context, consignorID, id int) (bool, error) {
	query := `UPDATE orders SET status = ? WHERE id = ? AND consignor_id = ? AND status = ? AND payout_status = ?`
	res, err := r.shard(consignorID).ExecContext(ctx, query, entity.OrderCancelled, id, consignorID, entity.OrderCompleted, entity.PayoutPending)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkPayoutPaid settles the payout of a completed order. It reports false
// when the order was cancelled or already paid.
func (r *OrderRepository) MarkPayoutPaid(ctx context.Context, consignorID, id int, paidAt time.Time) (bool, error) {
	query := `UPDATE orders SET payout_status = ?, paid_at = ? WHERE id = ? AND consignor_id = ? AND status = ? AND payout_status = ?`
	res, err := r.shard(consignorID).ExecContext(ctx, query, entity.PayoutPaid, paidAt, id, consignorID, entity.OrderCompleted, entity.PayoutPending)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Summary aggregates the completed orders of a consignor.
func (r *OrderRepository) Summary(ctx context.Context, consignorID int) (*entity.Dashboard, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(sale_price_cents), 0),
			COALESCE(SUM(commission_cents), 0),
			COALESCE(SUM(CASE WHEN payout_status = ? THEN payout_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN payout_status = ? THEN payout_cents ELSE 0 END), 0)
		FROM orders WHERE consignor_id = ? AND status = ?`

	d := &entity.Dashboard{ConsignorID: consignorID}
	err := r.shard(consignorID).QueryRowContext(ctx, query, entity.PayoutPending, entity.PayoutPaid, consignorID, entity.OrderCompleted).
		Scan(&d.OrderCount, &d.SalesCents, &d.CommissionCents, &d.PendingPayoutCents, &d.PaidPayoutCents)
	if err != nil {
		return nil, err
	}
	return d, nil
}
