package assistant

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/repository"
	"catatkas/backend/internal/service"
	"catatkas/backend/internal/store/memory"
)

func newTestExecutor(t *testing.T) (*Executor, *service.Service, context.Context) {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := service.New(repository.New(memory.New()), nil, service.Options{Location: time.UTC}).
		WithClock(func() time.Time { return now })
	ctx := service.WithActor(context.Background(), domain.Actor{UserID: "u1", Username: "owner"})

	_, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "Kopi Sachet", Price: 3000, Cost: 2000, InitialStock: 10})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "Teh Botol", Price: 4500, Cost: 3000, InitialStock: 1})
	require.NoError(t, err)
	_, err = svc.CreateContact(ctx, domain.ContactRequest{Name: "Bu Sari"})
	require.NoError(t, err)

	return NewExecutor(svc), svc, ctx
}

func TestExecuteCreditSaleThenPayment(t *testing.T) {
	exec, svc, ctx := newTestExecutor(t)

	res := exec.Execute(ctx, AddSale{
		Items:         []SaleLine{{ProductName: "kopi", Quantity: 3}},
		PaymentMethod: domain.PaymentCredit,
		ContactName:   "sari",
	})
	require.True(t, res.Success, res.Error)
	sale := res.Data.(SaleData)
	assert.Equal(t, int64(9000), sale.TotalAmount)
	assert.Equal(t, "Bu Sari", sale.ContactName)

	res = exec.Execute(ctx, AddPayment{ContactName: "Bu Sari", Amount: 4000})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, int64(5000), res.Data.(PaymentData).Outstanding)

	res = exec.Execute(ctx, AddPayment{ContactName: "Bu Sari", Amount: 6000})
	assert.False(t, res.Success)
	assert.Equal(t, apperr.KindValidation, res.Code)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, products[0].Stock)
}

func TestExecuteReportsInsufficientStockAsPayload(t *testing.T) {
	exec, _, ctx := newTestExecutor(t)

	res := exec.Execute(ctx, AddSale{
		Items:         []SaleLine{{ProductName: "Teh Botol", Quantity: 2}},
		PaymentMethod: domain.PaymentCash,
	})
	assert.False(t, res.Success)
	assert.Equal(t, apperr.KindInsufficientStock, res.Code)
	assert.Contains(t, res.Error, "Teh Botol")
}

func TestExecuteUnknownProduct(t *testing.T) {
	exec, _, ctx := newTestExecutor(t)

	res := exec.Execute(ctx, UpdateProduct{ProductName: "Gula", Price: ptr(int64(1))})
	assert.False(t, res.Success)
	assert.Equal(t, apperr.KindNotFound, res.Code)
}

func TestExecuteUpdateProduct(t *testing.T) {
	exec, _, ctx := newTestExecutor(t)

	res := exec.Execute(ctx, UpdateProduct{ProductName: "teh", Price: ptr(int64(5000)), Stock: ptr(12)})
	require.True(t, res.Success, res.Error)
	p := res.Data.(domain.Product)
	assert.Equal(t, int64(5000), p.Price)
	assert.Equal(t, 12, p.Stock)
}

func TestDecodeValidatesAtBoundary(t *testing.T) {
	_, err := Decode(ToolAddSale, `{"items":[],"paymentMethod":"cash"}`)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Decode(ToolAddPayment, `{"contactName":"Sari","amount":0}`)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Decode(ToolUpdateProduct, `{"productName":"Kopi","colour":"red"}`)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Decode("drop_tables", `{}`)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	cmd, err := Decode(ToolAddSale, `{"items":[{"productName":"Kopi","quantity":2}],"paymentMethod":"cash"}`)
	require.NoError(t, err)
	assert.Equal(t, ToolAddSale, cmd.Tool())
}

func TestHandleToolCallsAnswersEveryCall(t *testing.T) {
	exec, _, ctx := newTestExecutor(t)

	msgs := exec.HandleToolCalls(ctx, []openai.ToolCall{
		{ID: "call_1", Type: openai.ToolTypeFunction, Function: openai.FunctionCall{Name: ToolAddSale, Arguments: `{"items":[{"productName":"Kopi","quantity":1}],"paymentMethod":"cash"}`}},
		{ID: "call_2", Type: openai.ToolTypeFunction, Function: openai.FunctionCall{Name: ToolAddPayment, Arguments: `not json`}},
	})
	require.Len(t, msgs, 2)

	assert.Equal(t, openai.ChatMessageRoleTool, msgs[0].Role)
	assert.Equal(t, "call_1", msgs[0].ToolCallID)
	var first Result
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Content), &first))
	assert.True(t, first.Success)

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(msgs[1].Content), &second))
	assert.Equal(t, false, second["success"])
	assert.NotEmpty(t, second["error"])
}

func TestToolsCoverEveryCommand(t *testing.T) {
	names := map[string]bool{}
	for _, tool := range Tools() {
		names[tool.Function.Name] = true
	}
	assert.Equal(t, map[string]bool{ToolAddSale: true, ToolAddPayment: true, ToolUpdateProduct: true}, names)
}

func ptr[T any](v T) *T {
	return &v
}

func TestExecuteAmbiguousNameCarriesReason(t *testing.T) {
	exec, svc, ctx := newTestExecutor(t)
	_, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "Kopi Susu", Price: 5000, InitialStock: 4})
	require.NoError(t, err)

	res := exec.Execute(ctx, AddSale{
		Items:         []SaleLine{{ProductName: "kopi", Quantity: 1}},
		PaymentMethod: domain.PaymentCash,
	})
	assert.False(t, res.Success)
	assert.Equal(t, apperr.KindValidation, res.Code)
	assert.Equal(t, ReasonAmbiguous, res.Details["reason"])
	assert.Equal(t, []string{"Kopi Sachet", "Kopi Susu"}, res.Details["candidates"])
}
