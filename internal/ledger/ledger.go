// Package ledger holds the stock, sale and debt rules. Every function reads a
// domain.State without changing it and returns the entities that must be
// written back together; the caller commits them as one unit.
package ledger

import (
	"time"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/xid"
)

type Ledger struct {
	loc *time.Location
	now func() time.Time
}

// New returns a Ledger that compares due dates in loc (UTC when nil).
func New(loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{
		loc: loc,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	return &Ledger{loc: l.loc, now: now}
}

func (l *Ledger) Now() time.Time {
	return l.now()
}

func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Day truncates t to midnight in the ledger's location.
func (l *Ledger) Day(t time.Time) time.Time {
	y, m, d := t.In(l.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, l.loc)
}

// applyStockChange moves p.Stock by change and appends the matching history
// entry. It is the only place stock is modified.
func applyStockChange(p *domain.Product, change int, reason domain.StockReason, reference string, at time.Time) error {
	stock, ok := addInt(p.Stock, change)
	if !ok {
		return apperr.Validation("stock for %q is too large", p.Name)
	}
	p.Stock = stock
	p.StockHistory = append(p.StockHistory, domain.StockHistoryEntry{
		ID:         xid.New("sh"),
		Date:       at,
		Change:     change,
		Reason:     reason,
		Reference:  reference,
		StockAfter: p.Stock,
	})
	p.UpdatedAt = at
	return nil
}
