package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"catatkas/backend/internal/domain"
)

const dateLayout = "2006-01-02"

// Summary aggregates sales, costs and expenses dated within [from, to] by
// calendar day, plus current receivables and low-stock products.
func (l *Ledger) Summary(st *domain.State, from, to time.Time, lowStockThreshold int) domain.DashboardSummary {
	fromDay, toDay := l.Day(from), l.Day(to)
	inRange := func(t time.Time) bool {
		day := l.Day(t)
		return !day.Before(fromDay) && !day.After(toDay)
	}

	out := domain.DashboardSummary{
		From:       fromDay.Format(dateLayout),
		To:         toDay.Format(dateLayout),
		Correction: st.Preferences.Correction,
		LowStock:   []domain.LowStockProduct{},
	}

	for _, tx := range st.Transactions {
		if tx.PaymentMethod == domain.PaymentCredit {
			out.Receivables += max(tx.Outstanding(), 0)
			for _, p := range tx.Payments {
				if inRange(p.Date) {
					out.CashReceived += p.Amount
				}
			}
		}
		if !inRange(tx.Date) {
			continue
		}
		out.TransactionCount++
		out.SalesTotal += tx.TotalAmount
		for _, item := range tx.Items {
			out.CostOfGoodsSold += int64(item.Quantity) * item.UnitCost
		}
		if tx.PaymentMethod != domain.PaymentCredit {
			out.CashReceived += tx.TotalAmount
		}
	}
	for _, e := range st.Expenses {
		if inRange(e.Date) {
			out.ExpensesTotal += e.Amount
		}
	}

	out.GrossProfit = out.SalesTotal - out.CostOfGoodsSold
	out.NetProfit = out.GrossProfit - out.ExpensesTotal
	out.GrossMarginPct = marginPercent(out.GrossProfit, out.SalesTotal)

	for _, p := range st.Products {
		if p.Stock <= lowStockThreshold {
			out.LowStock = append(out.LowStock, domain.LowStockProduct{ProductID: p.ID, Name: p.Name, Stock: p.Stock})
		}
	}
	sort.Slice(out.LowStock, func(i, j int) bool {
		if out.LowStock[i].Stock != out.LowStock[j].Stock {
			return out.LowStock[i].Stock < out.LowStock[j].Stock
		}
		return out.LowStock[i].ProductID < out.LowStock[j].ProductID
	})
	return out
}

func marginPercent(profit, sales int64) string {
	if sales == 0 {
		return "0.00"
	}
	return decimal.NewFromInt(profit).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(sales)).
		StringFixed(2)
}
