package ledger

import (
	"strconv"
	"time"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
)

func (l *Ledger) paymentDate(date *time.Time) time.Time {
	if date != nil {
		return date.UTC()
	}
	return l.now()
}

// AddPayment appends a payment no larger than the outstanding balance. Only
// credit sales take payments.
func (l *Ledger) AddPayment(st *domain.State, transactionID string, req domain.PaymentRequest) (domain.Transaction, error) {
	tx, ok := st.Transactions[transactionID]
	if !ok {
		return domain.Transaction{}, apperr.NotFound("transaction", transactionID)
	}
	if tx.PaymentMethod != domain.PaymentCredit {
		return domain.Transaction{}, apperr.Validation("payments are only recorded on credit sales")
	}
	if req.Amount <= 0 {
		return domain.Transaction{}, apperr.Validation("payment amount must be greater than zero")
	}
	remaining := tx.Outstanding()
	if req.Amount > remaining {
		return domain.Transaction{}, apperr.Validation("payment %d exceeds outstanding balance %d by %d", req.Amount, remaining, req.Amount-remaining).
			WithDetail("outstanding", remaining).
			WithDetail("excess", req.Amount-remaining)
	}

	updated := domain.CloneTransaction(tx)
	updated.Payments = append(updated.Payments, domain.Payment{Amount: req.Amount, Date: l.paymentDate(req.Date)})
	updated.UpdatedAt = l.now()
	return updated, nil
}

// EditPayment changes the payment at index. The limit is the total minus the
// other payments, so the edited payment is not counted twice.
func (l *Ledger) EditPayment(st *domain.State, transactionID string, index int, req domain.PaymentRequest) (domain.Transaction, error) {
	tx, ok := st.Transactions[transactionID]
	if !ok {
		return domain.Transaction{}, apperr.NotFound("transaction", transactionID)
	}
	if index < 0 || index >= len(tx.Payments) {
		return domain.Transaction{}, apperr.NotFound("payment", strconv.Itoa(index))
	}
	if tx.PaymentMethod != domain.PaymentCredit {
		return domain.Transaction{}, apperr.Validation("payments are only recorded on credit sales")
	}
	if req.Amount <= 0 {
		return domain.Transaction{}, apperr.Validation("payment amount must be greater than zero")
	}
	limit := tx.TotalAmount - (tx.PaidAmount() - tx.Payments[index].Amount)
	if req.Amount > limit {
		return domain.Transaction{}, apperr.Validation("payment %d exceeds outstanding balance %d by %d", req.Amount, limit, req.Amount-limit).
			WithDetail("outstanding", limit).
			WithDetail("excess", req.Amount-limit)
	}

	updated := domain.CloneTransaction(tx)
	updated.Payments[index].Amount = req.Amount
	if req.Date != nil {
		updated.Payments[index].Date = req.Date.UTC()
	}
	updated.UpdatedAt = l.now()
	return updated, nil
}

func (l *Ledger) DeletePayment(st *domain.State, transactionID string, index int) (domain.Transaction, error) {
	tx, ok := st.Transactions[transactionID]
	if !ok {
		return domain.Transaction{}, apperr.NotFound("transaction", transactionID)
	}
	if index < 0 || index >= len(tx.Payments) {
		return domain.Transaction{}, apperr.NotFound("payment", strconv.Itoa(index))
	}

	updated := domain.CloneTransaction(tx)
	updated.Payments = append(updated.Payments[:index], updated.Payments[index+1:]...)
	updated.UpdatedAt = l.now()
	return updated, nil
}
