package service

import (
	"context"
	"strings"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/ledger"
)

func (s *Service) ExportBackup(ctx context.Context) (domain.Backup, error) {
	var out domain.Backup
	err := s.view(ctx, func(st *domain.State) error {
		out = st.Backup()
		return nil
	})
	return out, err
}

// ImportBackup replaces every collection of the signed-in tenant with the
// backup contents. Nothing is written when validation fails.
func (s *Service) ImportBackup(ctx context.Context, backup domain.Backup) error {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return err
	}
	st, err := stateFromBackup(backup)
	if err != nil {
		return err
	}
	if err := s.repo.Replace(ctx, tenantID, st); err != nil {
		return err
	}

	s.logAudit(ctx, "backup_import", "tenant", tenantID,
		"products", len(st.Products),
		"transactions", len(st.Transactions),
		"contacts", len(st.Contacts),
		"expenses", len(st.Expenses),
		"stock_ins", len(st.StockIns),
	)
	return nil
}

func stateFromBackup(b domain.Backup) (*domain.State, error) {
	st := domain.NewState()

	for _, p := range b.Products {
		if strings.TrimSpace(p.ID) == "" {
			return nil, apperr.Validation("backup product without id")
		}
		if _, dup := st.Products[p.ID]; dup {
			return nil, apperr.Validation("duplicate product id %q in backup", p.ID)
		}
		if p.Stock < 0 {
			return nil, apperr.Validation("product %q has negative stock in backup", p.Name)
		}
		if p.Price < 0 || p.Cost < 0 {
			return nil, apperr.Validation("product %q has a negative price or cost in backup", p.Name)
		}
		if p.StockHistory == nil {
			p.StockHistory = []domain.StockHistoryEntry{}
		}
		st.Products[p.ID] = p
	}

	for _, c := range b.Contacts {
		if strings.TrimSpace(c.ID) == "" {
			return nil, apperr.Validation("backup contact without id")
		}
		if _, dup := st.Contacts[c.ID]; dup {
			return nil, apperr.Validation("duplicate contact id %q in backup", c.ID)
		}
		if c.NextInvoiceNumber < 1 {
			c.NextInvoiceNumber = 1
		}
		st.Contacts[c.ID] = c
	}

	invoices := make(map[string]string, len(b.Transactions))
	for _, tx := range b.Transactions {
		if strings.TrimSpace(tx.ID) == "" {
			return nil, apperr.Validation("backup transaction without id")
		}
		if _, dup := st.Transactions[tx.ID]; dup {
			return nil, apperr.Validation("duplicate transaction id %q in backup", tx.ID)
		}
		if err := checkBackupTransaction(tx); err != nil {
			return nil, err
		}
		if tx.InvoiceNumber != "" {
			if other, dup := invoices[tx.InvoiceNumber]; dup {
				return nil, apperr.Validation("transactions %q and %q share invoice number %q", other, tx.ID, tx.InvoiceNumber)
			}
			invoices[tx.InvoiceNumber] = tx.ID
		}
		if tx.Payments == nil {
			tx.Payments = []domain.Payment{}
		}
		st.Transactions[tx.ID] = tx
	}

	for _, e := range b.Expenses {
		if strings.TrimSpace(e.ID) == "" {
			return nil, apperr.Validation("backup expense without id")
		}
		if _, dup := st.Expenses[e.ID]; dup {
			return nil, apperr.Validation("duplicate expense id %q in backup", e.ID)
		}
		if e.Amount <= 0 {
			return nil, apperr.Validation("expense %q must have a positive amount", e.ID)
		}
		st.Expenses[e.ID] = e
	}

	for _, entry := range b.StockInEntries {
		if strings.TrimSpace(entry.ID) == "" {
			return nil, apperr.Validation("backup stock-in entry without id")
		}
		if _, dup := st.StockIns[entry.ID]; dup {
			return nil, apperr.Validation("duplicate stock-in id %q in backup", entry.ID)
		}
		for _, item := range entry.Items {
			if item.Quantity < 1 {
				return nil, apperr.Validation("stock-in %q has quantity %d for product %q", entry.ID, item.Quantity, item.ProductID)
			}
		}
		st.StockIns[entry.ID] = entry
	}

	st.Company = b.CompanyInfo
	if st.Company.NextInvoiceNumber < 1 {
		st.Company.NextInvoiceNumber = 1
	}
	if b.Theme != "" {
		st.Preferences.Theme = b.Theme
	}
	st.Preferences.Correction = b.Correction
	return st, nil
}

// checkBackupTransaction holds an imported sale to the rules a committed sale
// satisfies: the total matches its lines and payments stay within it.
func checkBackupTransaction(tx domain.Transaction) error {
	if !tx.PaymentMethod.Valid() {
		return apperr.Validation("transaction %q has unknown payment method %q", tx.ID, tx.PaymentMethod)
	}
	if len(tx.Items) == 0 {
		return apperr.Validation("transaction %q has no items", tx.ID)
	}
	total, err := ledger.ItemsTotal(tx.Items)
	if err != nil {
		return apperr.Validation("transaction %q: %s", tx.ID, err.Error())
	}
	if total != tx.TotalAmount {
		return apperr.Validation("transaction %q total %d does not match its items (%d)", tx.ID, tx.TotalAmount, total)
	}
	paid, err := ledger.PaymentsTotal(tx.Payments)
	if err != nil {
		return apperr.Validation("transaction %q: %s", tx.ID, err.Error())
	}
	if paid > 0 && tx.PaymentMethod != domain.PaymentCredit {
		return apperr.Validation("transaction %q records payments but is not a credit sale", tx.ID)
	}
	if paid > tx.TotalAmount {
		return apperr.Validation("transaction %q is paid beyond its total", tx.ID)
	}
	return nil
}
