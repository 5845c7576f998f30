package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadline/warehouse-backend/internal/events"
	"github.com/threadline/warehouse-backend/internal/inventory"
	"github.com/threadline/warehouse-backend/internal/stockcache"
	"github.com/threadline/warehouse-backend/pkg/db"
	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
	"github.com/threadline/warehouse-backend/pkg/logger"
	"github.com/threadline/warehouse-backend/pkg/metrics"
	"github.com/threadline/warehouse-backend/pkg/types"
)

// Service links unallocated inward rows to their source of truth and moves
// existing links between sources.
type Service interface {
	GetTransactionMatches(ctx context.Context, transactionID uuid.UUID) (*Matches, error)
	Allocate(ctx context.Context, actor types.Actor, input Input) (*Result, error)
}

type service struct {
	repo        *Repository
	ledger      *inventory.Repository
	dbClient    *db.Client
	cache       stockcache.Invalidator
	broadcaster events.Broadcaster
	metrics     *metrics.LedgerMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs the allocation engine.
func NewService(
	repo *Repository,
	ledger *inventory.Repository,
	dbClient *db.Client,
	cache stockcache.Invalidator,
	broadcaster events.Broadcaster,
	m *metrics.LedgerMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("allocation repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if cache == nil {
		cache = stockcache.NewNoopInvalidator()
	}
	if broadcaster == nil {
		broadcaster = events.NewNoopBroadcaster()
	}
	return &service{
		repo:        repo,
		ledger:      ledger,
		dbClient:    dbClient,
		cache:       cache,
		broadcaster: broadcaster,
		metrics:     m,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) finish(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(op, time.Since(start))
	if err != nil {
		code := string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
		s.metrics.IncFailure(op, code)
		return
	}
	s.metrics.IncSuccess(op)
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return err
}

func (s *service) afterCommit(ctx context.Context, skuID uuid.UUID, bal inventory.Balance) {
	s.cache.Invalidate(ctx, skuID.String())
	s.broadcaster.BroadcastBalanceUpdate(ctx, skuID.String(), events.BalanceChanges{
		CurrentBalance:   bal.CurrentBalance,
		AvailableBalance: bal.AvailableBalance,
	})
}
