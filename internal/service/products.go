package service

import (
	"context"
	"strings"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/repository"
)

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := s.view(ctx, func(st *domain.State) error {
		out = st.ProductList()
		return nil
	})
	return out, err
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var out domain.Product
	err := s.view(ctx, func(st *domain.State) error {
		p, ok := st.Products[id]
		if !ok {
			return apperr.NotFound("product", id)
		}
		out = domain.CloneProduct(p)
		return nil
	})
	return out, err
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	product, err := s.ledger.NewProduct(req)
	if err != nil {
		return domain.Product{}, err
	}

	err = s.update(ctx, func(tx *repository.Tx) error {
		tx.PutProduct(product)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", product.ID, "name", product.Name, "price", product.Price, "stock", product.Stock)
	return product, nil
}

// UpdateProduct applies a partial update. A stock value is routed through the
// adjustment rule in the same commit.
func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	var saved domain.Product
	err := s.update(ctx, func(tx *repository.Tx) error {
		current, ok := tx.State().Products[id]
		if !ok {
			return apperr.NotFound("product", id)
		}
		updated := domain.CloneProduct(current)
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("product name is required")
			}
			updated.Name = name
		}
		if req.Category != nil {
			updated.Category = strings.TrimSpace(*req.Category)
		}
		if req.Price != nil {
			if *req.Price < 0 {
				return apperr.Validation("price must not be negative")
			}
			updated.Price = *req.Price
		}
		if req.Cost != nil {
			if *req.Cost < 0 {
				return apperr.Validation("cost must not be negative")
			}
			updated.Cost = *req.Cost
		}
		updated.UpdatedAt = s.ledger.Now()
		tx.PutProduct(updated)

		if req.Stock != nil {
			adjusted, changed, err := s.ledger.AdjustStock(tx.State(), id, *req.Stock)
			if err != nil {
				return err
			}
			if changed {
				tx.PutProduct(adjusted)
			}
		}
		saved = domain.CloneProduct(tx.State().Products[id])
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", saved.ID, "price", saved.Price, "cost", saved.Cost, "stock", saved.Stock)
	return saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	err := s.update(ctx, func(tx *repository.Tx) error {
		if _, ok := tx.State().Products[id]; !ok {
			return apperr.NotFound("product", id)
		}
		tx.DeleteProduct(id)
		return nil
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, "product_delete", "product", id)
	return nil
}

func (s *Service) AdjustStock(ctx context.Context, id string, req domain.StockAdjustRequest) (domain.Product, error) {
	var (
		product domain.Product
		changed bool
	)
	err := s.update(ctx, func(tx *repository.Tx) error {
		var err error
		product, changed, err = s.ledger.AdjustStock(tx.State(), id, req.Stock)
		if err != nil {
			return err
		}
		if changed {
			tx.PutProduct(product)
		}
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	if changed {
		last := product.StockHistory[len(product.StockHistory)-1]
		s.logAudit(ctx, "stock_adjust", "product", product.ID, "change", last.Change, "stock", product.Stock)
	}
	return product, nil
}

func (s *Service) ListStockIns(ctx context.Context) ([]domain.StockInEntry, error) {
	var out []domain.StockInEntry
	err := s.view(ctx, func(st *domain.State) error {
		out = st.StockInList()
		return nil
	})
	return out, err
}

func (s *Service) CreateStockIn(ctx context.Context, req domain.StockInRequest) (domain.StockInEntry, error) {
	var entry domain.StockInEntry
	err := s.update(ctx, func(tx *repository.Tx) error {
		created, products, err := s.ledger.StockIn(tx.State(), req)
		if err != nil {
			return err
		}
		for _, p := range products {
			tx.PutProduct(p)
		}
		tx.PutStockIn(created)
		entry = created
		return nil
	})
	if err != nil {
		return domain.StockInEntry{}, err
	}

	s.logAudit(ctx, "stock_in_create", "stock_in", entry.ID, "items", len(entry.Items), "reference", entry.Reference)
	return entry, nil
}

func (s *Service) DeleteStockIn(ctx context.Context, id string) error {
	err := s.update(ctx, func(tx *repository.Tx) error {
		products, err := s.ledger.DeleteStockIn(tx.State(), id)
		if err != nil {
			return err
		}
		for _, p := range products {
			tx.PutProduct(p)
		}
		tx.DeleteStockIn(id)
		return nil
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, "stock_in_delete", "stock_in", id)
	return nil
}
