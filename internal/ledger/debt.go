package ledger

import (
	"sort"
	"time"

	"catatkas/backend/internal/domain"
)

// Status classifies a due date against today by calendar day.
func (l *Ledger) Status(due *time.Time, today time.Time) domain.DebtStatus {
	if due == nil {
		return domain.DebtUpcoming
	}
	dueDay, todayDay := l.Day(*due), l.Day(today)
	switch {
	case dueDay.Before(todayDay):
		return domain.DebtOverdue
	case dueDay.Equal(todayDay):
		return domain.DebtDueToday
	}
	return domain.DebtUpcoming
}

func isOpenDebt(tx domain.Transaction) bool {
	return tx.PaymentMethod == domain.PaymentCredit && tx.Outstanding() > 0
}

func oldestFirst(a, b domain.Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}

// Debts lists open credit sales, oldest first. An empty contactID means all
// contacts, walk-in credit included.
func (l *Ledger) Debts(st *domain.State, contactID string) []domain.DebtEntry {
	today := l.now()
	open := make([]domain.Transaction, 0)
	for _, tx := range st.Transactions {
		if !isOpenDebt(tx) {
			continue
		}
		if contactID != "" && tx.ContactID != contactID {
			continue
		}
		open = append(open, tx)
	}
	sort.Slice(open, func(i, j int) bool { return oldestFirst(open[i], open[j]) })

	out := make([]domain.DebtEntry, 0, len(open))
	for _, tx := range open {
		entry := domain.DebtEntry{
			TransactionID: tx.ID,
			InvoiceNumber: tx.InvoiceNumber,
			ContactID:     tx.ContactID,
			Date:          tx.Date,
			TotalAmount:   tx.TotalAmount,
			PaidAmount:    tx.PaidAmount(),
			Outstanding:   tx.Outstanding(),
			Status:        l.Status(tx.DueDate, today),
		}
		if tx.DueDate != nil {
			due := *tx.DueDate
			entry.DueDate = &due
		}
		if c, ok := st.Contacts[tx.ContactID]; ok {
			entry.ContactName = c.Name
		}
		out = append(out, entry)
	}
	return out
}

// ContactDebts sums open debts per contact, largest balance first.
func (l *Ledger) ContactDebts(st *domain.State) []domain.ContactDebt {
	byContact := make(map[string]*domain.ContactDebt)
	for _, entry := range l.Debts(st, "") {
		if entry.ContactID == "" {
			continue
		}
		summary, ok := byContact[entry.ContactID]
		if !ok {
			summary = &domain.ContactDebt{ContactID: entry.ContactID, ContactName: entry.ContactName}
			byContact[entry.ContactID] = summary
		}
		summary.Outstanding += entry.Outstanding
		summary.OpenCount++
		if entry.Status == domain.DebtOverdue {
			summary.OverdueCount++
		}
		if entry.DueDate != nil && (summary.OldestDue == nil || entry.DueDate.Before(*summary.OldestDue)) {
			due := *entry.DueDate
			summary.OldestDue = &due
		}
	}

	out := make([]domain.ContactDebt, 0, len(byContact))
	for _, summary := range byContact {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Outstanding != out[j].Outstanding {
			return out[i].Outstanding > out[j].Outstanding
		}
		return out[i].ContactID < out[j].ContactID
	})
	return out
}

// OldestOpenDebt is the credit sale a contact-level payment is applied to.
func OldestOpenDebt(st *domain.State, contactID string) (domain.Transaction, bool) {
	var (
		oldest domain.Transaction
		found  bool
	)
	for _, tx := range st.Transactions {
		if tx.ContactID != contactID || !isOpenDebt(tx) {
			continue
		}
		if !found || oldestFirst(tx, oldest) {
			oldest, found = tx, true
		}
	}
	return oldest, found
}

func HasOpenDebt(st *domain.State, contactID string) bool {
	_, ok := OldestOpenDebt(st, contactID)
	return ok
}
