package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/repos"
	"github.com/evask/materialforge-backend/internal/requestdata"
	"github.com/evask/materialforge-backend/internal/types"
)

const recentEventLimit = 20

type ModelUsage struct {
	TotalTokens  int     `json:"total_tokens"`
	TotalCost    float64 `json:"total_cost"`
	RequestCount int     `json:"request_count"`
}

type UsageSummary struct {
	TotalTokens  int                      `json:"total_tokens"`
	TotalCost    float64                  `json:"total_cost"`
	UsageByModel map[string]ModelUsage    `json:"usage_by_model"`
	Recent       []*types.GenerationEvent `json:"recent_usage"`
}

type UsageService interface {
	Summary(ctx context.Context) (*UsageSummary, error)
}

type usageService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.GenerationEventRepo
}

func NewUsageService(db *gorm.DB, log *logger.Logger, eventRepo repos.GenerationEventRepo) UsageService {
	return &usageService{
		db:        db,
		log:       log.With("service", "UsageService"),
		eventRepo: eventRepo,
	}
}

// Summary aggregates the caller's whole generation history plus the
// most recent events. Totals stay stable when materials are deleted
// because events are never removed.
func (us *usageService) Summary(ctx context.Context) (*UsageSummary, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, types.ErrUnauthorized
	}

	events, err := us.eventRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load generation events: %w", err)
	}

	summary := &UsageSummary{
		UsageByModel: map[string]ModelUsage{},
		Recent:       []*types.GenerationEvent{},
	}
	for _, ev := range events {
		summary.TotalTokens += ev.TotalTokens
		summary.TotalCost += ev.EstimatedCost
		mu := summary.UsageByModel[ev.Model]
		mu.TotalTokens += ev.TotalTokens
		mu.TotalCost += ev.EstimatedCost
		mu.RequestCount++
		summary.UsageByModel[ev.Model] = mu
	}

	recent, err := us.eventRepo.GetRecentByUserID(ctx, nil, rd.UserID, recentEventLimit)
	if err != nil {
		return nil, fmt.Errorf("Failed to load recent generation events: %w", err)
	}
	if recent != nil {
		summary.Recent = recent
	}

	return summary, nil
}
