package service

import (
	"context"
	"strings"
	"time"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/repository"
	"catatkas/backend/internal/xid"
)

// ListExpenses returns expenses newest first. A nil bound is open; bounds are
// compared by business-day.
func (s *Service) ListExpenses(ctx context.Context, from, to *time.Time) ([]domain.Expense, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperr.Validation("'to' must not be before 'from'")
	}

	var out []domain.Expense
	err := s.view(ctx, func(st *domain.State) error {
		out = make([]domain.Expense, 0, len(st.Expenses))
		for _, e := range st.ExpenseList() {
			day := s.ledger.Day(e.Date)
			if from != nil && day.Before(s.ledger.Day(*from)) {
				continue
			}
			if to != nil && day.After(s.ledger.Day(*to)) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseRequest) (domain.Expense, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Expense{}, apperr.Validation("expense description is required")
	}
	if req.Amount <= 0 {
		return domain.Expense{}, apperr.Validation("expense amount must be greater than zero")
	}

	expense := domain.Expense{
		ID:          xid.New("exp"),
		Description: description,
		Amount:      req.Amount,
		Category:    strings.TrimSpace(req.Category),
		Date:        s.ledger.Now(),
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}

	err := s.update(ctx, func(tx *repository.Tx) error {
		tx.PutExpense(expense)
		return nil
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.logAudit(ctx, "expense_create", "expense", expense.ID, "amount", expense.Amount, "category", expense.Category)
	return expense, nil
}

func (s *Service) UpdateExpense(ctx context.Context, id string, req domain.ExpenseUpdateRequest) (domain.Expense, error) {
	var expense domain.Expense
	err := s.update(ctx, func(tx *repository.Tx) error {
		current, ok := tx.State().Expenses[id]
		if !ok {
			return apperr.NotFound("expense", id)
		}
		if req.Description != nil {
			description := strings.TrimSpace(*req.Description)
			if description == "" {
				return apperr.Validation("expense description is required")
			}
			current.Description = description
		}
		if req.Amount != nil {
			if *req.Amount <= 0 {
				return apperr.Validation("expense amount must be greater than zero")
			}
			current.Amount = *req.Amount
		}
		if req.Category != nil {
			current.Category = strings.TrimSpace(*req.Category)
		}
		if req.Date != nil {
			current.Date = *req.Date
		}
		tx.PutExpense(current)
		expense = current
		return nil
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.logAudit(ctx, "expense_update", "expense", expense.ID, "amount", expense.Amount)
	return expense, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	err := s.update(ctx, func(tx *repository.Tx) error {
		if _, ok := tx.State().Expenses[id]; !ok {
			return apperr.NotFound("expense", id)
		}
		tx.DeleteExpense(id)
		return nil
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, "expense_delete", "expense", id)
	return nil
}
