package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
)

func TestRepeatedLinesCannotWrapQuantity(t *testing.T) {
	l := newTestLedger()
	st := seedState()
	half := math.MaxInt/2 + 1

	_, err := l.CommitSale(st, domain.SaleRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: "P", Quantity: half},
			{ProductID: "P", Quantity: half},
		},
		PaymentMethod: domain.PaymentCash,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 10, st.Products["P"].Stock)
	assert.Empty(t, st.Products["P"].StockHistory)
}

func TestLineAmountOverflowRejected(t *testing.T) {
	l := newTestLedger()
	st := seedState()
	st.Products["P"] = domain.Product{ID: "P", Name: "Kopi Sachet", Price: 3000, Stock: 10}

	_, err := l.CommitSale(st, domain.SaleRequest{
		Items:         []domain.SaleItemRequest{{ProductID: "P", Quantity: 4, UnitPrice: ptr(int64(1<<62 + 1))}},
		PaymentMethod: domain.PaymentCash,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = l.CommitSale(st, domain.SaleRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: "P", Quantity: 1, UnitPrice: ptr(int64(math.MaxInt64))},
			{ProductID: "Q", Quantity: 1},
		},
		PaymentMethod: domain.PaymentCash,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 10, st.Products["P"].Stock)
	assert.Equal(t, 2, st.Products["Q"].Stock)
}

func TestStockInCannotWrapStock(t *testing.T) {
	l := newTestLedger()
	st := seedState()
	half := math.MaxInt/2 + 1

	_, _, err := l.StockIn(st, domain.StockInRequest{Items: []domain.StockInItem{
		{ProductID: "P", Quantity: half},
		{ProductID: "P", Quantity: half},
	}})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = l.StockIn(st, domain.StockInRequest{Items: []domain.StockInItem{
		{ProductID: "P", Quantity: math.MaxInt - 5},
	}})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 10, st.Products["P"].Stock)
}

func TestItemsTotal(t *testing.T) {
	total, err := ItemsTotal([]domain.TransactionItem{
		{ProductID: "P", Quantity: 3, UnitPrice: 3000},
		{ProductID: "Q", Quantity: 2, UnitPrice: 1500},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), total)

	_, err = ItemsTotal([]domain.TransactionItem{{ProductID: "P", Quantity: 0, UnitPrice: 3000}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = ItemsTotal([]domain.TransactionItem{{ProductID: "P", Quantity: 1, UnitPrice: -1}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPaymentsTotalRejectsNonPositive(t *testing.T) {
	paid, err := PaymentsTotal([]domain.Payment{{Amount: 4000}, {Amount: 1000}})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), paid)

	_, err = PaymentsTotal([]domain.Payment{{Amount: 4000}, {Amount: -500}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = PaymentsTotal([]domain.Payment{{Amount: math.MaxInt64}, {Amount: 1}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
