package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"

	"consignment-service/internal/entity"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

type fakeItemStore struct {
	mu        sync.Mutex
	items     map[int]*entity.Item
	nextID    int
	createErr error
}

func newFakeItemStore(items ...*entity.Item) *fakeItemStore {
	s := &fakeItemStore{items: make(map[int]*entity.Item)}
	for _, it := range items {
		s.items[it.ID] = it
		if it.ID > s.nextID {
			s.nextID = it.ID
		}
	}
	return s
}

func (s *fakeItemStore) CreateItem(_ context.Context, item *entity.Item) (*entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	item.ID = s.nextID
	cp := *item
	s.items[item.ID] = &cp
	return item, nil
}

func (s *fakeItemStore) GetItemByID(_ context.Context, id int) (*entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *it
	return &cp, nil
}

func (s *fakeItemStore) ListItems(_ context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Item
	for _, it := range s.items {
		if filter.ConsignorID != 0 && it.ConsignorID != filter.ConsignorID {
			continue
		}
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeItemStore) UpdateItemStatus(_ context.Context, id int, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.Status != from {
		return false, nil
	}
	it.Status = to
	return true, nil
}

func (s *fakeItemStore) CountItemsByStatus(_ context.Context, consignorID int) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, it := range s.items {
		if it.ConsignorID == consignorID {
			counts[it.Status]++
		}
	}
	return counts, nil
}

func (s *fakeItemStore) status(id int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].Status
}

type fakeOrderStore struct {
	mu        sync.Mutex
	orders    map[int]*entity.Order
	nextID    int
	createErr error
	summaries int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[int]*entity.Order)}
}

func (s *fakeOrderStore) CreateOrder(_ context.Context, order *entity.Order) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	order.ID = s.nextID
	cp := *order
	s.orders[order.ID] = &cp
	return order, nil
}

func (s *fakeOrderStore) GetOrder(_ context.Context, consignorID, id int) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.ConsignorID != consignorID {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) ListOrders(_ context.Context, consignorID int) ([]*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Order
	for _, o := range s.orders {
		if o.ConsignorID == consignorID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) CancelOrder(_ context.Context, consignorID, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.ConsignorID != consignorID || o.Status != entity.OrderCompleted || o.PayoutStatus != entity.PayoutPending {
		return false, nil
	}
	o.Status = entity.OrderCancelled
	return true, nil
}

func (s *fakeOrderStore) MarkPayoutPaid(_ context.Context, consignorID, id int, paidAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.ConsignorID != consignorID || o.Status != entity.OrderCompleted || o.PayoutStatus != entity.PayoutPending {
		return false, nil
	}
	o.PayoutStatus = entity.PayoutPaid
	o.PaidAt = &paidAt
	return true, nil
}

func (s *fakeOrderStore) Summary(_ context.Context, consignorID int) (*entity.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries++
	d := &entity.Dashboard{ConsignorID: consignorID}
	for _, o := range s.orders {
		if o.ConsignorID != consignorID || o.Status != entity.OrderCompleted {
			continue
		}
		d.OrderCount++
		d.SalesCents += o.SalePriceCents
		d.CommissionCents += o.CommissionCents
		if o.PayoutStatus == entity.PayoutPaid {
			d.PaidPayoutCents += o.PayoutCents
		} else {
			d.PendingPayoutCents += o.PayoutCents
		}
	}
	return d, nil
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) keys() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for _, m := range w.msgs {
		out = append(out, string(m.Key))
	}
	return out
}

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	nextID int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*entity.User)}
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id int) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	cp := *user
	s.users[user.Email] = &cp
	return user, nil
}
