package ledger

import (
	"math"
	"strings"
	"time"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/xid"
)

// SaleResult is everything a sale commit touches.
type SaleResult struct {
	Transaction domain.Transaction
	Products    []domain.Product
	Contact     *domain.Contact
	Company     *domain.CompanyInfo
}

type DeleteResult struct {
	TransactionID string
	Products      []domain.Product
	// MissingProducts lists product ids that no longer exist and were not restocked.
	MissingProducts []string
}

type saleLine struct {
	productID string
	quantity  int
	unitPrice *int64
}

// normalizeLines validates quantities and merges repeated products, keeping
// the order of first appearance.
func normalizeLines(items []domain.SaleItemRequest) ([]saleLine, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("a sale needs at least one item")
	}
	index := make(map[string]int, len(items))
	lines := make([]saleLine, 0, len(items))
	for _, item := range items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			return nil, apperr.Validation("item product id is required")
		}
		if item.Quantity < 1 {
			return nil, apperr.Validation("quantity for product %q must be at least 1", productID)
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			return nil, apperr.Validation("unit price for product %q must not be negative", productID)
		}
		if i, ok := index[productID]; ok {
			merged, ok := addInt(lines[i].quantity, item.Quantity)
			if !ok {
				return nil, apperr.Validation("quantity for product %q is too large", productID)
			}
			lines[i].quantity = merged
			if item.UnitPrice != nil {
				lines[i].unitPrice = item.UnitPrice
			}
			continue
		}
		index[productID] = len(lines)
		lines = append(lines, saleLine{productID: productID, quantity: item.Quantity, unitPrice: item.UnitPrice})
	}
	return lines, nil
}

func reservedQuantities(items []domain.TransactionItem) map[string]int {
	reserved := make(map[string]int, len(items))
	for _, item := range items {
		reserved[item.ProductID] += item.Quantity
	}
	return reserved
}

func (l *Ledger) validateHeader(st *domain.State, req domain.SaleRequest) error {
	if !req.PaymentMethod.Valid() {
		return apperr.Validation("payment method must be cash, credit or transfer")
	}
	if req.ContactID != "" {
		if _, ok := st.Contacts[req.ContactID]; !ok {
			return apperr.NotFound("contact", req.ContactID)
		}
	}
	if req.CreditTermDays != nil {
		if req.PaymentMethod != domain.PaymentCredit {
			return apperr.Validation("credit term is only valid for credit sales")
		}
		if *req.CreditTermDays < 1 {
			return apperr.Validation("credit term must be at least 1 day")
		}
	}
	if req.PaidAmount < 0 {
		return apperr.Validation("paid amount must not be negative")
	}
	return nil
}

// dueDate implements date + (days-1) on calendar days.
func (l *Ledger) dueDate(req domain.SaleRequest, saleDate time.Time, previous *time.Time) *time.Time {
	if req.PaymentMethod != domain.PaymentCredit {
		return nil
	}
	if req.CreditTermDays != nil {
		due := l.Day(saleDate).AddDate(0, 0, *req.CreditTermDays-1)
		return &due
	}
	if req.DueDate != nil {
		due := l.Day(*req.DueDate)
		return &due
	}
	if previous != nil {
		due := *previous
		return &due
	}
	return nil
}

// buildItems checks stock for every line and prices it. available returns the
// stock usable by the sale; priceOf supplies the snapshot for lines without an
// explicit price.
func buildItems(
	st *domain.State,
	lines []saleLine,
	available func(p domain.Product) int,
	priceOf func(p domain.Product) (int64, int64),
) ([]domain.TransactionItem, int64, error) {
	items := make([]domain.TransactionItem, 0, len(lines))
	for _, line := range lines {
		p, ok := st.Products[line.productID]
		if !ok {
			return nil, 0, apperr.NotFound("product", line.productID)
		}
		if avail := available(p); line.quantity > avail {
			return nil, 0, apperr.InsufficientStock(p.ID, p.Name, line.quantity, avail)
		}
		price, cost := priceOf(p)
		if line.unitPrice != nil {
			price = *line.unitPrice
		}
		items = append(items, domain.TransactionItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.quantity,
			UnitPrice:   price,
			UnitCost:    cost,
		})
	}
	total, err := ItemsTotal(items)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CommitSale validates a new sale against current stock and returns the
// transaction, the decremented products and the bumped invoice counter.
func (l *Ledger) CommitSale(st *domain.State, req domain.SaleRequest) (SaleResult, error) {
	if err := l.validateHeader(st, req); err != nil {
		return SaleResult{}, err
	}
	lines, err := normalizeLines(req.Items)
	if err != nil {
		return SaleResult{}, err
	}

	items, total, err := buildItems(st, lines,
		func(p domain.Product) int { return p.Stock },
		func(p domain.Product) (int64, int64) { return p.Price, p.Cost },
	)
	if err != nil {
		return SaleResult{}, err
	}

	if req.PaidAmount > 0 && req.PaymentMethod != domain.PaymentCredit {
		return SaleResult{}, apperr.Validation("paid amount is only recorded for credit sales")
	}
	if req.PaidAmount > total {
		return SaleResult{}, apperr.Validation("paid amount %d exceeds sale total %d", req.PaidAmount, total)
	}

	now := l.now()
	saleDate := now
	if req.Date != nil {
		saleDate = req.Date.UTC()
	}

	tx := domain.Transaction{
		ID:            xid.New("tx"),
		Items:         items,
		TotalAmount:   total,
		Date:          saleDate,
		PaymentMethod: req.PaymentMethod,
		ContactID:     req.ContactID,
		DueDate:       l.dueDate(req, saleDate, nil),
		Payments:      []domain.Payment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.PaidAmount > 0 {
		tx.Payments = append(tx.Payments, domain.Payment{Amount: req.PaidAmount, Date: now})
	}

	result := SaleResult{Transaction: tx}
	result.Transaction.InvoiceNumber, result.Contact, result.Company = assignInvoiceNumber(st, req.ContactID)

	for _, item := range items {
		p := domain.CloneProduct(st.Products[item.ProductID])
		if err := applyStockChange(&p, -item.Quantity, domain.StockReasonSale, tx.ID, now); err != nil {
			return SaleResult{}, err
		}
		result.Products = append(result.Products, p)
	}
	return result, nil
}

// UpdateSale replaces the items and header of an existing sale. The original
// quantities count as available stock, so reducing a line never fails.
func (l *Ledger) UpdateSale(st *domain.State, transactionID string, req domain.SaleRequest) (SaleResult, error) {
	original, ok := st.Transactions[transactionID]
	if !ok {
		return SaleResult{}, apperr.NotFound("transaction", transactionID)
	}
	if err := l.validateHeader(st, req); err != nil {
		return SaleResult{}, err
	}
	if req.PaidAmount != 0 {
		return SaleResult{}, apperr.Validation("payments of an existing sale are changed through its payments")
	}
	if req.PaymentMethod != domain.PaymentCredit && len(original.Payments) > 0 {
		return SaleResult{}, apperr.Validation("delete the recorded payments before changing a credit sale to %s", req.PaymentMethod)
	}
	lines, err := normalizeLines(req.Items)
	if err != nil {
		return SaleResult{}, err
	}

	reserved := reservedQuantities(original.Items)
	snapshots := make(map[string]domain.TransactionItem, len(original.Items))
	for _, item := range original.Items {
		if _, seen := snapshots[item.ProductID]; !seen {
			snapshots[item.ProductID] = item
		}
	}

	items, total, err := buildItems(st, lines,
		func(p domain.Product) int {
			if avail, ok := addInt(p.Stock, reserved[p.ID]); ok {
				return avail
			}
			return math.MaxInt
		},
		func(p domain.Product) (int64, int64) {
			if snap, ok := snapshots[p.ID]; ok {
				return snap.UnitPrice, snap.UnitCost
			}
			return p.Price, p.Cost
		},
	)
	if err != nil {
		return SaleResult{}, err
	}

	if paid := original.PaidAmount(); paid > total {
		return SaleResult{}, apperr.Validation("new total %d is below the %d already paid", total, paid)
	}

	now := l.now()
	saleDate := original.Date
	if req.Date != nil {
		saleDate = req.Date.UTC()
	}

	updated := domain.CloneTransaction(original)
	updated.Items = items
	updated.TotalAmount = total
	updated.Date = saleDate
	updated.PaymentMethod = req.PaymentMethod
	updated.ContactID = req.ContactID
	updated.DueDate = l.dueDate(req, saleDate, original.DueDate)
	updated.UpdatedAt = now

	requested := reservedQuantities(items)
	order := make([]string, 0, len(items)+len(original.Items))
	seen := make(map[string]bool, cap(order))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			order = append(order, item.ProductID)
		}
	}
	for _, item := range original.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			order = append(order, item.ProductID)
		}
	}

	result := SaleResult{Transaction: updated}
	for _, productID := range order {
		change := reserved[productID] - requested[productID]
		if change == 0 {
			continue
		}
		current, ok := st.Products[productID]
		if !ok {
			// dropped line whose product was deleted from the catalog
			continue
		}
		p := domain.CloneProduct(current)
		if err := applyStockChange(&p, change, domain.StockReasonSaleUpdate, updated.ID, now); err != nil {
			return SaleResult{}, err
		}
		result.Products = append(result.Products, p)
	}
	return result, nil
}

// DeleteSale returns every sold quantity to stock. A missing transaction is a
// NotFound error, so a repeated delete never restocks twice.
func (l *Ledger) DeleteSale(st *domain.State, transactionID string) (DeleteResult, error) {
	tx, ok := st.Transactions[transactionID]
	if !ok {
		return DeleteResult{}, apperr.NotFound("transaction", transactionID)
	}

	now := l.now()
	result := DeleteResult{TransactionID: tx.ID}
	returned := reservedQuantities(tx.Items)
	done := make(map[string]bool, len(returned))
	for _, item := range tx.Items {
		if done[item.ProductID] {
			continue
		}
		done[item.ProductID] = true

		current, ok := st.Products[item.ProductID]
		if !ok {
			result.MissingProducts = append(result.MissingProducts, item.ProductID)
			continue
		}
		p := domain.CloneProduct(current)
		if err := applyStockChange(&p, returned[item.ProductID], domain.StockReasonSaleDelete, tx.ID, now); err != nil {
			return DeleteResult{}, err
		}
		result.Products = append(result.Products, p)
	}
	return result, nil
}
