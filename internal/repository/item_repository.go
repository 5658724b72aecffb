package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"consignment-service/internal/entity"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db}
}

const itemColumns = `id, consignor_id, title, description, brand, category, item_condition, estimated_value_cents, status, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*entity.Item, error) {
	item := &entity.Item{}
	err := row.Scan(&item.ID, &item.ConsignorID, &item.Title, &item.Description, &item.Brand, &item.Category, &item.Condition, &item.EstimatedValueCents, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *ItemRepository) CreateItem(ctx context.Context, item *entity.Item) (*entity.Item, error) {
	query := `INSERT INTO items (consignor_id, title, description, brand, category, item_condition, estimated_value_cents, status, idempotent_key, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, item.ConsignorID, item.Title, item.Description, item.Brand, item.Category, item.Condition, item.EstimatedValueCents, item.Status, item.IdempotentKey, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	item.ID = int(id)
	return item, nil
}

func (r *ItemRepository) GetItemByID(ctx context.Context, id int) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	return scanItem(r.db.QueryRowContext(ctx, query, id))
}

func (r *ItemRepository) ListItems(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	var where []string
	var args []interface{}
	if filter.ConsignorID != 0 {
		where = append(where, "consignor_id = ?")
		args = append(args, filter.ConsignorID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateItemStatus moves an item from one status to another. It reports
// false when the item was not in the expected status.
func (r *ItemRepository) UpdateItemStatus(ctx context.Context, id int, from, to string) (bool, error) {
	query := `UPDATE items SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *ItemRepository) CountItemsByStatus(ctx context.Context, consignorID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM items WHERE consignor_id = ? GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, consignorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}

	return counts, rows.Err()
}
