package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"consignment-service/internal/commission"
	"consignment-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const idempotencyTTL = 24 * time.Hour

// ItemStore is the persistence the item workflow needs.
type ItemStore interface {
	CreateItem(ctx context.Context, item *entity.Item) (*entity.Item, error)
	GetItemByID(ctx context.Context, id int) (*entity.Item, error)
	ListItems(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error)
	UpdateItemStatus(ctx context.Context, id int, from, to string) (bool, error)
	CountItemsByStatus(ctx context.Context, consignorID int) (map[string]int, error)
}

// Submission is an intake form sent by a consignor.
type Submission struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Brand          string  `json:"brand"`
	Category       string  `json:"category"`
	Condition      string  `json:"condition"`
	EstimatedValue float64 `json:"estimated_value"`
	IdempotentKey  string  `json:"-"`
}

// ItemService handles intake and review of consigned items.
type ItemService struct {
	itemRepo ItemStore
	rdb      *redis.Client
}

// NewItemService creates a new instance of ItemService.
func NewItemService(itemRepo ItemStore, rdb *redis.Client) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		rdb:      rdb,
	}
}

// CheckEligibility runs the intake check for an estimated value.
func (s *ItemService) CheckEligibility(estimatedValue float64) (commission.Eligibility, error) {
	return commission.CheckEligibility(estimatedValue)
}

// SubmitItem accepts an item for review if it passes the eligibility floor.
func (s *ItemService) SubmitItem(ctx context.Context, consignorID int, sub Submission) (*entity.Item, error) {
	title := strings.TrimSpace(sub.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}

	eligibility, err := commission.CheckEligibility(sub.EstimatedValue)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		logger.Info().Msgf("Rejected submission from consignor %d valued at %.2f", consignorID, sub.EstimatedValue)
		return nil, &IneligibleError{Message: eligibility.Message, Reason: eligibility.Reason}
	}

	key := sub.IdempotentKey
	if key == "" {
		key = uuid.NewString()
	} else if err := s.claimIdempotentKey(ctx, key); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &entity.Item{
		ConsignorID:         consignorID,
		Title:               title,
		Description:         sub.Description,
		Brand:               sub.Brand,
		Category:            sub.Category,
		Condition:           sub.Condition,
		EstimatedValueCents: commission.ToCents(sub.EstimatedValue),
		Status:              entity.ItemPending,
		IdempotentKey:       key,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	created, err := s.itemRepo.CreateItem(ctx, item)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating item for consignor %d", consignorID)
		if sub.IdempotentKey != "" {
			s.releaseIdempotentKey(ctx, sub.IdempotentKey)
		}
		return nil, err
	}
	s.dropDashboard(ctx, consignorID)

	return created, nil
}

// GetItem returns an item by id.
func (s *ItemService) GetItem(ctx context.Context, id int) (*entity.Item, error) {
	item, err := s.itemRepo.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		logger.Error().Err(err).Msgf("Error getting item by ID %d", id)
		return nil, err
	}
	return item, nil
}

// ListItems lists items matching filter.
func (s *ItemService) ListItems(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	items, err := s.itemRepo.ListItems(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing items")
		return nil, err
	}
	if items == nil {
		items = []*entity.Item{}
	}
	return items, nil
}

// ReviewItem approves or rejects a pending item.
func (s *ItemService) ReviewItem(ctx context.Context, id int, approve bool) (*entity.Item, error) {
	to := entity.ItemRejected
	if approve {
		to = entity.ItemApproved
	}
	if err := s.transition(ctx, id, entity.ItemPending, to); err != nil {
		return nil, err
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	s.dropDashboard(ctx, item.ConsignorID)
	return item, nil
}

// WithdrawItem lets a consignor take back an item that has not sold.
func (s *ItemService) WithdrawItem(ctx context.Context, consignorID, id int) (*entity.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.ConsignorID != consignorID {
		return nil, fmt.Errorf("item %d: %w", id, ErrForbidden)
	}
	if item.Status != entity.ItemPending && item.Status != entity.ItemApproved {
		return nil, fmt.Errorf("item %d is %s: %w", id, item.Status, ErrInvalidTransition)
	}
	if err := s.transition(ctx, id, item.Status, entity.ItemWithdrawn); err != nil {
		return nil, err
	}

	item.Status = entity.ItemWithdrawn
	s.dropDashboard(ctx, consignorID)
	return item, nil
}

// MarkSold moves an approved item to sold.
func (s *ItemService) MarkSold(ctx context.Context, id int) error {
	return s.transition(ctx, id, entity.ItemApproved, entity.ItemSold)
}

// Relist puts a sold item back on sale after its order was cancelled.
func (s *ItemService) Relist(ctx context.Context, id int) error {
	return s.transition(ctx, id, entity.ItemSold, entity.ItemApproved)
}

func (s *ItemService) transition(ctx context.Context, id int, from, to string) error {
	ok, err := s.itemRepo.UpdateItemStatus(ctx, id, from, to)
	if err != nil {
		logger.Error().Err(err).Msgf("Error moving item %d from %s to %s", id, from, to)
		return err
	}
	if ok {
		return nil
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("item %d is %s, expected %s: %w", id, item.Status, from, ErrInvalidTransition)
}

// dropDashboard clears a consignor's cached dashboard after a write.
func (s *ItemService) dropDashboard(ctx context.Context, consignorID int) {
	if err := s.rdb.Del(ctx, DashboardCacheKey(consignorID)).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error invalidating dashboard %d", consignorID)
	}
}

func (s *ItemService) claimIdempotentKey(ctx context.Context, key string) error {
	redisKey := fmt.Sprintf("idempotent-key:%s", key)
	ok, err := s.rdb.SetNX(ctx, redisKey, "exists", idempotencyTTL).Result()
	if err != nil {
		logger.Error().Err(err).Msg("Error checking idempotent key")
		return err
	}
	if !ok {
		return ErrDuplicateRequest
	}
	return nil
}

func (s *ItemService) releaseIdempotentKey(ctx context.Context, key string) {
	if err := s.rdb.Del(ctx, fmt.Sprintf("idempotent-key:%s", key)).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error releasing idempotent key %s", key)
	}
}
