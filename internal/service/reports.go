package service

import (
	"context"
	"fmt"
	"time"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/logger"
)

// Debts lists open credit sales, optionally for one contact.
func (s *Service) Debts(ctx context.Context, contactID string) ([]domain.DebtEntry, error) {
	var out []domain.DebtEntry
	err := s.view(ctx, func(st *domain.State) error {
		if contactID != "" {
			if _, ok := st.Contacts[contactID]; !ok {
				return apperr.NotFound("contact", contactID)
			}
		}
		out = s.ledger.Debts(st, contactID)
		return nil
	})
	return out, err
}

func (s *Service) ContactDebts(ctx context.Context) ([]domain.ContactDebt, error) {
	var out []domain.ContactDebt
	err := s.view(ctx, func(st *domain.State) error {
		out = s.ledger.ContactDebts(st)
		return nil
	})
	return out, err
}

// Dashboard summarizes [from, to]. Results are cached per tenant revision, so
// any committed write makes earlier entries unreachable.
func (s *Service) Dashboard(ctx context.Context, from, to time.Time) (domain.DashboardSummary, error) {
	if s.ledger.Day(to).Before(s.ledger.Day(from)) {
		return domain.DashboardSummary{}, apperr.Validation("'to' must not be before 'from'")
	}
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	var (
		summary domain.DashboardSummary
		key     string
		hit     bool
	)
	err = s.repo.View(ctx, tenantID, func(st *domain.State, rev string) error {
		key = fmt.Sprintf("%s:%s:%s:%s", tenantID, rev, s.ledger.Day(from).Format(time.DateOnly), s.ledger.Day(to).Format(time.DateOnly))
		cached, ok, cacheErr := s.summaries.Get(ctx, key)
		if cacheErr != nil {
			logger.Warn(ctx, "summary cache read failed", "key", key, "error", cacheErr)
		}
		if ok && cached != nil {
			summary = *cached
			hit = true
			return nil
		}
		summary = s.ledger.Summary(st, from, to, s.lowStockThreshold)
		return nil
	})
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	if !hit {
		if cacheErr := s.summaries.Set(ctx, key, &summary, s.summaryTTL); cacheErr != nil {
			logger.Warn(ctx, "summary cache write failed", "key", key, "error", cacheErr)
		}
	}
	return summary, nil
}
