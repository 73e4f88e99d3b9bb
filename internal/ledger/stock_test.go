package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
)

func TestNewProductRecordsInitialStock(t *testing.T) {
	l := newTestLedger()

	p, err := l.NewProduct(domain.ProductCreateRequest{Name: "  Gula 1kg ", Price: 16000, Cost: 14000, InitialStock: 12})
	require.NoError(t, err)
	assert.Equal(t, "Gula 1kg", p.Name)
	assert.Equal(t, 12, p.Stock)
	require.Len(t, p.StockHistory, 1)
	assert.Equal(t, domain.StockReasonInitial, p.StockHistory[0].Reason)

	empty, err := l.NewProduct(domain.ProductCreateRequest{Name: "Garam"})
	require.NoError(t, err)
	assert.Empty(t, empty.StockHistory)

	_, err = l.NewProduct(domain.ProductCreateRequest{Name: "Minyak", InitialStock: -1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAdjustStock(t *testing.T) {
	l := newTestLedger()
	st := seedState()

	p, changed, err := l.AdjustStock(st, "P", 4)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 4, p.Stock)
	require.Len(t, p.StockHistory, 1)
	assert.Equal(t, -6, p.StockHistory[0].Change)
	assert.Equal(t, domain.StockReasonAdjustment, p.StockHistory[0].Reason)
	assert.Equal(t, 10, st.Products["P"].Stock)

	_, changed, err = l.AdjustStock(st, "P", 10)
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = l.AdjustStock(st, "P", -1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = l.AdjustStock(st, "missing", 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestStockInAndDelete(t *testing.T) {
	l := newTestLedger()
	st := seedState()

	entry, products, err := l.StockIn(st, domain.StockInRequest{
		Reference: "PO-17",
		Items:     []domain.StockInItem{{ProductID: "Q", Quantity: 5}, {ProductID: "Q", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, entry.Items, 1)
	assert.Equal(t, 6, entry.Items[0].Quantity)
	require.Len(t, products, 1)
	assert.Equal(t, 8, products[0].Stock)
	assert.Equal(t, domain.StockReasonStockIn, products[0].StockHistory[0].Reason)
	assert.Equal(t, entry.ID, products[0].StockHistory[0].Reference)

	st.StockIns[entry.ID] = entry
	st.Products["Q"] = products[0]

	reverted, err := l.DeleteStockIn(st, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reverted[0].Stock)

	low := st.Products["Q"]
	low.Stock = 3
	st.Products["Q"] = low
	_, err = l.DeleteStockIn(st, entry.ID)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))

	_, _, err = l.StockIn(st, domain.StockInRequest{Items: []domain.StockInItem{{ProductID: "P", Quantity: 0}}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDebtClassificationIsDateOnly(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 2026-03-10 20:00 WIB
	now := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	l := New(jakarta).WithClock(func() time.Time { return now })

	yesterday := time.Date(2026, 3, 9, 23, 59, 0, 0, jakarta)
	todayMorning := time.Date(2026, 3, 10, 0, 0, 0, 0, jakarta)
	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, jakarta)

	assert.Equal(t, domain.DebtOverdue, l.Status(&yesterday, now))
	assert.Equal(t, domain.DebtDueToday, l.Status(&todayMorning, now))
	assert.Equal(t, domain.DebtUpcoming, l.Status(&tomorrow, now))
	assert.Equal(t, domain.DebtUpcoming, l.Status(nil, now))
}

func TestDebtsAndContactSummary(t *testing.T) {
	l := newTestLedger()
	st := seedState()
	past := fixedNow.AddDate(0, 0, -3)
	future := fixedNow.AddDate(0, 0, 5)

	st.Transactions["t1"] = domain.Transaction{ID: "t1", ContactID: "C", TotalAmount: 9000, PaymentMethod: domain.PaymentCredit,
		Date: fixedNow.AddDate(0, 0, -10), DueDate: &past, Payments: []domain.Payment{{Amount: 4000}}}
	st.Transactions["t2"] = domain.Transaction{ID: "t2", ContactID: "C", TotalAmount: 2000, PaymentMethod: domain.PaymentCredit,
		Date: fixedNow.AddDate(0, 0, -1), DueDate: &future}
	st.Transactions["t3"] = domain.Transaction{ID: "t3", ContactID: "C", TotalAmount: 1000, PaymentMethod: domain.PaymentCredit,
		Date: fixedNow, Payments: []domain.Payment{{Amount: 1000}}}
	st.Transactions["t4"] = domain.Transaction{ID: "t4", ContactID: "C", TotalAmount: 7000, PaymentMethod: domain.PaymentCash, Date: fixedNow}

	debts := l.Debts(st, "C")
	require.Len(t, debts, 2)
	assert.Equal(t, "t1", debts[0].TransactionID)
	assert.Equal(t, int64(5000), debts[0].Outstanding)
	assert.Equal(t, domain.DebtOverdue, debts[0].Status)
	assert.Equal(t, "Bu Sari", debts[0].ContactName)
	assert.Equal(t, domain.DebtUpcoming, debts[1].Status)

	summary := l.ContactDebts(st)
	require.Len(t, summary, 1)
	assert.Equal(t, int64(7000), summary[0].Outstanding)
	assert.Equal(t, 2, summary[0].OpenCount)
	assert.Equal(t, 1, summary[0].OverdueCount)
	assert.Equal(t, past, *summary[0].OldestDue)

	oldest, ok := OldestOpenDebt(st, "C")
	require.True(t, ok)
	assert.Equal(t, "t1", oldest.ID)
	assert.False(t, HasOpenDebt(st, "someone-else"))
}

func TestSummary(t *testing.T) {
	l := newTestLedger()
	st := seedState()
	st.Preferences.Correction = -500
	st.Transactions["t1"] = domain.Transaction{ID: "t1", TotalAmount: 9000, PaymentMethod: domain.PaymentCash, Date: fixedNow,
		Items: []domain.TransactionItem{{ProductID: "P", Quantity: 3, UnitPrice: 3000, UnitCost: 2000}}}
	st.Transactions["t2"] = domain.Transaction{ID: "t2", TotalAmount: 3000, PaymentMethod: domain.PaymentCredit, Date: fixedNow,
		Items:    []domain.TransactionItem{{ProductID: "Q", Quantity: 2, UnitPrice: 1500, UnitCost: 1000}},
		Payments: []domain.Payment{{Amount: 1000, Date: fixedNow}}}
	st.Transactions["old"] = domain.Transaction{ID: "old", TotalAmount: 100000, PaymentMethod: domain.PaymentCash, Date: fixedNow.AddDate(0, -1, 0)}
	st.Expenses["e1"] = domain.Expense{ID: "e1", Amount: 2500, Date: fixedNow}

	sum := l.Summary(st, fixedNow, fixedNow, 2)
	assert.Equal(t, "2026-03-10", sum.From)
	assert.Equal(t, 2, sum.TransactionCount)
	assert.Equal(t, int64(12000), sum.SalesTotal)
	assert.Equal(t, int64(8000), sum.CostOfGoodsSold)
	assert.Equal(t, int64(4000), sum.GrossProfit)
	assert.Equal(t, "33.33", sum.GrossMarginPct)
	assert.Equal(t, int64(1500), sum.NetProfit)
	assert.Equal(t, int64(10000), sum.CashReceived)
	assert.Equal(t, int64(2000), sum.Receivables)
	assert.Equal(t, int64(-500), sum.Correction)
	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, "Q", sum.LowStock[0].ProductID)
}
