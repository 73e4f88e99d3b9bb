package service

import (
	"context"
	"strings"
	"time"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/cache"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/ledger"
	"catatkas/backend/internal/logger"
	"catatkas/backend/internal/repository"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	Location          *time.Location
	LowStockThreshold int
	SummaryTTL        time.Duration
}

type Service struct {
	repo              *repository.Repository
	ledger            *ledger.Ledger
	summaries         cache.SummaryCache
	summaryTTL        time.Duration
	lowStockThreshold int
}

func New(repo *repository.Repository, summaries cache.SummaryCache, opts Options) *Service {
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if opts.SummaryTTL <= 0 {
		opts.SummaryTTL = 5 * time.Minute
	}
	if opts.LowStockThreshold < 0 {
		opts.LowStockThreshold = 0
	}

	return &Service{
		repo:              repo,
		ledger:            ledger.New(opts.Location),
		summaries:         summaries,
		summaryTTL:        opts.SummaryTTL,
		lowStockThreshold: opts.LowStockThreshold,
	}
}

// WithClock is used by tests to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	clone := *s
	clone.ledger = s.ledger.WithClock(now)
	return &clone
}

func tenantFrom(ctx context.Context) (string, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || strings.TrimSpace(actor.UserID) == "" {
		return "", apperr.Unauthorized("signed-in user required")
	}
	return actor.UserID, nil
}

func (s *Service) view(ctx context.Context, fn func(st *domain.State) error) error {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return err
	}
	return s.repo.View(ctx, tenantID, func(st *domain.State, _ string) error {
		return fn(st)
	})
}

func (s *Service) update(ctx context.Context, fn func(tx *repository.Tx) error) error {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, tenantID, fn)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, keysAndValues ...any) {
	fields := []any{"action", action, "entity_type", entityType, "entity_id", entityID}
	if actor, ok := ActorFromContext(ctx); ok {
		fields = append(fields, "user_id", actor.UserID)
	}
	logger.Info(ctx, "audit", append(fields, keysAndValues...)...)
}

// Location is the business time zone used for dates and due dates.
func (s *Service) Location() *time.Location {
	return s.ledger.Location()
}

func (s *Service) Now() time.Time {
	return s.ledger.Now()
}
