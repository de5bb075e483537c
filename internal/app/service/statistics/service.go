package statistics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/metrics"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/types"
)

var ErrInvalidRequest = errors.New("invalid statistic request")

type StatisticType string

const (
	StatisticTypeDailyStateChangeCount  StatisticType = "daily_state_change_count"
	StatisticTypeDailyCountByChangeType StatisticType = "daily_count_by_change_type"
	StatisticTypeDailyCountByDecision   StatisticType = "daily_count_by_decision_state"
	StatisticTypeDailyWebhookCount      StatisticType = "daily_webhook_count"
	StatisticTypeTotalStateChangeCount  StatisticType = "total_state_change_count"
	StatisticTypeOverrideRateByDay      StatisticType = "daily_override_rate"
)

var statisticTypes = []StatisticType{
	StatisticTypeDailyStateChangeCount,
	StatisticTypeDailyCountByChangeType,
	StatisticTypeDailyCountByDecision,
	StatisticTypeDailyWebhookCount,
	StatisticTypeTotalStateChangeCount,
	StatisticTypeOverrideRateByDay,
}

// Columns statistic filters may reference.
var filterColumns = map[string]struct{}{
	"created_at":          {},
	"inspection_order_id": {},
	"appointment_id":      {},
	"user_id":             {},
	"user_role":           {},
	"state_change_type":   {},
	"user_decision_state": {},
	"webhook_provider":    {},
}

type StateChangeStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type StateChangeStatisticRequest struct {
	Filters   []*types.CommonFilter           `json:"filters"`
	DataItems []*StateChangeStatisticDataItem `json:"data_items"`
}

func (r *StateChangeStatisticRequest) Validate() error {
	if r == nil || len(r.DataItems) == 0 {
		return fmt.Errorf("%w: data_items is required", ErrInvalidRequest)
	}
	for _, di := range r.DataItems {
		if di == nil || !lo.Contains(statisticTypes, di.ID) {
			return fmt.Errorf("%w: unknown data item", ErrInvalidRequest)
		}
	}
	for _, f := range r.Filters {
		if err := f.Validate(filterColumns); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	return nil
}

type StateChangeStatisticResponseDataItem struct {
	Date   string `json:"date"`
	Label  string `json:"label,omitempty"`
	Value  int64  `json:"value"`
	Value2 int64  `json:"value2,omitempty"`
	Value3 int64  `json:"value3,omitempty"`
}

type StateChangeStatisticResponse struct {
	DataItems map[StatisticType][]StateChangeStatisticResponseDataItem `json:"data_items"`
}

// Service aggregates the inspection_states table for the admin dashboard.
// Soft-deleted rows never count.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

// dayExpr renders created_at as YYYY-MM-DD for the active dialect.
func (s *Service) dayExpr() string {
	if s.db.Dialector.Name() == "sqlite" {
		return "substr(created_at, 1, 10)"
	}
	return "TO_CHAR(created_at, 'YYYY-MM-DD')"
}

func (s *Service) base(ctx context.Context, request *StateChangeStatisticRequest) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.StateChange{}).
		Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(request.Filters)}})
}

func (s *Service) getDailyStateChangeCount(ctx context.Context, request *StateChangeStatisticRequest) ([]StateChangeStatisticResponseDataItem, error) {
	var results []StateChangeStatisticResponseDataItem
	day := s.dayExpr()
	q := s.base(ctx, request).
		Select(day + " as date, count(*) as value").
		Group(day).
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyCountByColumn(ctx context.Context, request *StateChangeStatisticRequest, column string) ([]StateChangeStatisticResponseDataItem, error) {
	var results []StateChangeStatisticResponseDataItem
	day := s.dayExpr()
	q := s.base(ctx, request).
		Select(fmt.Sprintf("%s as date, %s as label, count(*) as value", day, column)).
		Group(day).
		Group(column).
		Order("date").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyWebhookCount(ctx context.Context, request *StateChangeStatisticRequest) ([]StateChangeStatisticResponseDataItem, error) {
	var results []StateChangeStatisticResponseDataItem
	day := s.dayExpr()
	q := s.base(ctx, request).
		Select(day+" as date, COALESCE(webhook_provider, '') as label, count(*) as value").
		Where("webhook_status = ?", true).
		Group(day).
		Group("webhook_provider").
		Order("date").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalStateChangeCount(ctx context.Context, request *StateChangeStatisticRequest) ([]StateChangeStatisticResponseDataItem, error) {
	var total int64
	if err := s.base(ctx, request).Count(&total).Error; err != nil {
		return nil, err
	}
	return []StateChangeStatisticResponseDataItem{{Date: time.Now().Format(time.DateOnly), Value: total}}, nil
}

// getOverrideRate reports per day the share of user_override rows in basis
// points (value), with the override count (value2) and the total (value3).
func (s *Service) getOverrideRate(ctx context.Context, request *StateChangeStatisticRequest) ([]StateChangeStatisticResponseDataItem, error) {
	var results []StateChangeStatisticResponseDataItem
	day := s.dayExpr()
	q := s.base(ctx, request).
		Select(day+" as date, SUM(CASE WHEN state_change_type = ? THEN 1 ELSE 0 END) as value2, count(*) as value3", models.ChangeTypeUserOverride).
		Group(day).
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].Value3 > 0 {
			results[i].Value = results[i].Value2 * 10000 / results[i].Value3
		}
	}
	return results, nil
}

func (s *Service) getStatistic(ctx context.Context, request *StateChangeStatisticRequest, dataItem *StateChangeStatisticDataItem) ([]StateChangeStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyStateChangeCount:
		return s.getDailyStateChangeCount(ctx, request)
	case StatisticTypeDailyCountByChangeType:
		return s.getDailyCountByColumn(ctx, request, "state_change_type")
	case StatisticTypeDailyCountByDecision:
		return s.getDailyCountByColumn(ctx, request, "user_decision_state")
	case StatisticTypeDailyWebhookCount:
		return s.getDailyWebhookCount(ctx, request)
	case StatisticTypeTotalStateChangeCount:
		return s.getTotalStateChangeCount(ctx, request)
	case StatisticTypeOverrideRateByDay:
		return s.getOverrideRate(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetStateChangeStatistic computes every requested data item concurrently.
func (s *Service) GetStateChangeStatistic(ctx context.Context, request *StateChangeStatisticRequest) (*StateChangeStatisticResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer metrics.ObserveBusinessProcess("statistics", "state_change", start)

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []StateChangeStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *StateChangeStatisticDataItem) {
			defer wg.Done()
			res, err := s.getStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []StateChangeStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)

	if err, ok := <-errChan; ok {
		return nil, err
	}
	results := make(map[StatisticType][]StateChangeStatisticResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &StateChangeStatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
