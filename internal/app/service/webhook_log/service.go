package webhook_log

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/models"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a webhook log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, log *models.WebhookLog) {
	if log == nil {
		return
	}
	// The request context is cancelled once the response is written.
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.SaveSync(ctx, log); err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save webhook log: %v", err)
		}
	}()
}

// SaveSync persists log on the calling goroutine.
func (s *Service) SaveSync(ctx context.Context, log *models.WebhookLog) error {
	if log == nil {
		return fmt.Errorf("nil webhook log")
	}
	if log.ID == "" {
		log.ID = tool.GenerateUUIDV7()
	}
	return s.db.WithContext(ctx).Save(log).Error
}

// Wait blocks until every pending Save has finished.
func (s *Service) Wait() { s.wg.Wait() }

// ListByTraceID returns the logs written while handling one request, oldest first.
func (s *Service) ListByTraceID(ctx context.Context, traceID string) ([]*models.WebhookLog, error) {
	var rows []*models.WebhookLog
	err := s.db.WithContext(ctx).Where("trace_id = ?", traceID).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func registerFlush(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			s.Wait()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerFlush),
)
