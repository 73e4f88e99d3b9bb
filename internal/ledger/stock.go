package ledger

import (
	"strings"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/xid"
)

// NewProduct builds a catalog entry. Opening stock is recorded as an
// "initial" history entry.
func (l *Ledger) NewProduct(req domain.ProductCreateRequest) (domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, apperr.Validation("product name is required")
	}
	if req.Price < 0 || req.Cost < 0 {
		return domain.Product{}, apperr.Validation("price and cost must not be negative")
	}
	if req.InitialStock < 0 {
		return domain.Product{}, apperr.Validation("initial stock must not be negative")
	}

	now := l.now()
	p := domain.Product{
		ID:           xid.New("prd"),
		Name:         name,
		Category:     strings.TrimSpace(req.Category),
		Price:        req.Price,
		Cost:         req.Cost,
		StockHistory: []domain.StockHistoryEntry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.InitialStock > 0 {
		if err := applyStockChange(&p, req.InitialStock, domain.StockReasonInitial, "", now); err != nil {
			return domain.Product{}, err
		}
	}
	return p, nil
}

// AdjustStock sets an absolute stock level. changed is false when the level
// already matches; no history entry is written then.
func (l *Ledger) AdjustStock(st *domain.State, productID string, newStock int) (domain.Product, bool, error) {
	current, ok := st.Products[productID]
	if !ok {
		return domain.Product{}, false, apperr.NotFound("product", productID)
	}
	if newStock < 0 {
		return domain.Product{}, false, apperr.Validation("stock for %q must not be negative", current.Name)
	}

	p := domain.CloneProduct(current)
	delta := newStock - p.Stock
	if delta == 0 {
		return p, false, nil
	}
	if err := applyStockChange(&p, delta, domain.StockReasonAdjustment, "", l.now()); err != nil {
		return domain.Product{}, false, err
	}
	return p, true, nil
}

// StockIn records received goods and raises stock for each line.
func (l *Ledger) StockIn(st *domain.State, req domain.StockInRequest) (domain.StockInEntry, []domain.Product, error) {
	if len(req.Items) == 0 {
		return domain.StockInEntry{}, nil, apperr.Validation("stock-in needs at least one item")
	}

	merged := make(map[string]int, len(req.Items))
	order := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		productID := strings.TrimSpace(item.ProductID)
		if item.Quantity < 1 {
			return domain.StockInEntry{}, nil, apperr.Validation("stock-in quantity for %q must be at least 1", productID)
		}
		if _, ok := st.Products[productID]; !ok {
			return domain.StockInEntry{}, nil, apperr.NotFound("product", productID)
		}
		if _, seen := merged[productID]; !seen {
			order = append(order, productID)
		}
		qty, ok := addInt(merged[productID], item.Quantity)
		if !ok {
			return domain.StockInEntry{}, nil, apperr.Validation("stock-in quantity for %q is too large", productID)
		}
		merged[productID] = qty
	}

	now := l.now()
	entry := domain.StockInEntry{
		ID:        xid.New("sin"),
		Date:      now,
		Reference: strings.TrimSpace(req.Reference),
		Items:     make([]domain.StockInItem, 0, len(order)),
	}
	if req.Date != nil {
		entry.Date = req.Date.UTC()
	}

	products := make([]domain.Product, 0, len(order))
	for _, productID := range order {
		entry.Items = append(entry.Items, domain.StockInItem{ProductID: productID, Quantity: merged[productID]})
		p := domain.CloneProduct(st.Products[productID])
		if err := applyStockChange(&p, merged[productID], domain.StockReasonStockIn, entry.ID, now); err != nil {
			return domain.StockInEntry{}, nil, err
		}
		products = append(products, p)
	}
	return entry, products, nil
}

// DeleteStockIn takes the received quantities back out of stock. It fails if
// any product no longer has enough stock.
func (l *Ledger) DeleteStockIn(st *domain.State, stockInID string) ([]domain.Product, error) {
	entry, ok := st.StockIns[stockInID]
	if !ok {
		return nil, apperr.NotFound("stock-in entry", stockInID)
	}

	received := make(map[string]int, len(entry.Items))
	order := make([]string, 0, len(entry.Items))
	for _, item := range entry.Items {
		if _, seen := received[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		qty, ok := addInt(received[item.ProductID], item.Quantity)
		if !ok {
			return nil, apperr.Validation("stock-in quantity for %q is too large", item.ProductID)
		}
		received[item.ProductID] = qty
	}

	now := l.now()
	products := make([]domain.Product, 0, len(order))
	for _, productID := range order {
		current, ok := st.Products[productID]
		if !ok {
			continue
		}
		qty := received[productID]
		if current.Stock < qty {
			return nil, apperr.InsufficientStock(current.ID, current.Name, qty, current.Stock)
		}
		p := domain.CloneProduct(current)
		if err := applyStockChange(&p, -qty, domain.StockReasonStockInDelete, entry.ID, now); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
