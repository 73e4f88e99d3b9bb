package service

import (
	"context"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/ledger"
	"catatkas/backend/internal/logger"
	"catatkas/backend/internal/repository"
)

func (s *Service) ListSales(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := s.view(ctx, func(st *domain.State) error {
		out = st.TransactionList()
		return nil
	})
	return out, err
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Transaction, error) {
	var out domain.Transaction
	err := s.view(ctx, func(st *domain.State) error {
		tx, ok := st.Transactions[id]
		if !ok {
			return apperr.NotFound("transaction", id)
		}
		out = domain.CloneTransaction(tx)
		return nil
	})
	return out, err
}

func writeSale(tx *repository.Tx, res ledger.SaleResult) {
	for _, p := range res.Products {
		tx.PutProduct(p)
	}
	if res.Contact != nil {
		tx.PutContact(*res.Contact)
	}
	if res.Company != nil {
		tx.PutCompany(*res.Company)
	}
	tx.PutTransaction(res.Transaction)
}

// CreateSale commits the sale, the stock decrements and the invoice counter
// in one batch.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleRequest) (domain.Transaction, error) {
	var res ledger.SaleResult
	err := s.update(ctx, func(tx *repository.Tx) error {
		var err error
		res, err = s.ledger.CommitSale(tx.State(), req)
		if err != nil {
			return err
		}
		writeSale(tx, res)
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	t := res.Transaction
	s.logAudit(ctx, "sale_create", "transaction", t.ID, "invoice", t.InvoiceNumber, "total", t.TotalAmount, "method", t.PaymentMethod)
	return t, nil
}

func (s *Service) UpdateSale(ctx context.Context, id string, req domain.SaleRequest) (domain.Transaction, error) {
	var res ledger.SaleResult
	err := s.update(ctx, func(tx *repository.Tx) error {
		var err error
		res, err = s.ledger.UpdateSale(tx.State(), id, req)
		if err != nil {
			return err
		}
		writeSale(tx, res)
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logAudit(ctx, "sale_update", "transaction", id, "total", res.Transaction.TotalAmount, "stock_changes", len(res.Products))
	return res.Transaction, nil
}

func (s *Service) DeleteSale(ctx context.Context, id string) error {
	var res ledger.DeleteResult
	err := s.update(ctx, func(tx *repository.Tx) error {
		var err error
		res, err = s.ledger.DeleteSale(tx.State(), id)
		if err != nil {
			return err
		}
		for _, p := range res.Products {
			tx.PutProduct(p)
		}
		tx.DeleteTransaction(id)
		return nil
	})
	if err != nil {
		return err
	}

	if len(res.MissingProducts) > 0 {
		logger.Warn(ctx, "deleted sale referenced products no longer in catalog", "transaction_id", id, "product_ids", res.MissingProducts)
	}
	s.logAudit(ctx, "sale_delete", "transaction", id, "restocked", len(res.Products))
	return nil
}

func (s *Service) AddPayment(ctx context.Context, transactionID string, req domain.PaymentRequest) (domain.Transaction, error) {
	return s.changePayments(ctx, "payment_add", transactionID, func(st *domain.State) (domain.Transaction, error) {
		return s.ledger.AddPayment(st, transactionID, req)
	})
}

func (s *Service) EditPayment(ctx context.Context, transactionID string, index int, req domain.PaymentRequest) (domain.Transaction, error) {
	return s.changePayments(ctx, "payment_edit", transactionID, func(st *domain.State) (domain.Transaction, error) {
		return s.ledger.EditPayment(st, transactionID, index, req)
	})
}

func (s *Service) DeletePayment(ctx context.Context, transactionID string, index int) (domain.Transaction, error) {
	return s.changePayments(ctx, "payment_delete", transactionID, func(st *domain.State) (domain.Transaction, error) {
		return s.ledger.DeletePayment(st, transactionID, index)
	})
}

// PayOldestDebt applies amount to the contact's oldest open credit sale.
func (s *Service) PayOldestDebt(ctx context.Context, contactID string, amount int64) (domain.Transaction, error) {
	var target string
	t, err := s.changePayments(ctx, "payment_add", contactID, func(st *domain.State) (domain.Transaction, error) {
		debt, ok := ledger.OldestOpenDebt(st, contactID)
		if !ok {
			name := contactID
			if c, found := st.Contacts[contactID]; found {
				name = c.Name
			}
			return domain.Transaction{}, apperr.NotFound("open credit debt for contact", name)
		}
		target = debt.ID
		return s.ledger.AddPayment(st, debt.ID, domain.PaymentRequest{Amount: amount})
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	logger.Debug(ctx, "payment applied to oldest debt", "contact_id", contactID, "transaction_id", target)
	return t, nil
}

func (s *Service) changePayments(ctx context.Context, action string, ref string, fn func(st *domain.State) (domain.Transaction, error)) (domain.Transaction, error) {
	var updated domain.Transaction
	err := s.update(ctx, func(tx *repository.Tx) error {
		var err error
		updated, err = fn(tx.State())
		if err != nil {
			return err
		}
		tx.PutTransaction(updated)
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logAudit(ctx, action, "transaction", updated.ID, "ref", ref, "paid", updated.PaidAmount(), "outstanding", updated.Outstanding())
	return updated, nil
}
