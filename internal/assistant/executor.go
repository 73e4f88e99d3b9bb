package assistant

import (
	"context"
	"encoding/json"

	"github.com/sashabaranov/go-openai"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/logger"
)

// Operations is the slice of the service the assistant is allowed to drive.
type Operations interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	CreateSale(ctx context.Context, req domain.SaleRequest) (domain.Transaction, error)
	PayOldestDebt(ctx context.Context, contactID string, amount int64) (domain.Transaction, error)
	UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error)
}

// Result is what the agent gets back for every command.
type Result struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    apperr.Kind    `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type SaleData struct {
	TransactionID string `json:"transactionId"`
	InvoiceNumber string `json:"invoiceNumber"`
	TotalAmount   int64  `json:"totalAmount"`
	ContactName   string `json:"contactName,omitempty"`
}

type PaymentData struct {
	TransactionID string `json:"transactionId"`
	InvoiceNumber string `json:"invoiceNumber"`
	ContactName   string `json:"contactName"`
	Paid          int64  `json:"paid"`
	Outstanding   int64  `json:"outstanding"`
}

type Executor struct {
	ops Operations
}

func NewExecutor(ops Operations) *Executor {
	return &Executor{ops: ops}
}

// Execute runs one command. Failures are reported inside the Result.
func (e *Executor) Execute(ctx context.Context, cmd Command) Result {
	if cmd == nil {
		return failure(ctx, "", apperr.Validation("missing command"))
	}
	if err := cmd.Validate(); err != nil {
		return failure(ctx, cmd.Tool(), err)
	}

	var (
		data any
		err  error
	)
	switch c := cmd.(type) {
	case AddSale:
		data, err = e.addSale(ctx, c)
	case AddPayment:
		data, err = e.addPayment(ctx, c)
	case UpdateProduct:
		data, err = e.updateProduct(ctx, c)
	default:
		err = apperr.Validation("unsupported command %q", cmd.Tool())
	}
	if err != nil {
		return failure(ctx, cmd.Tool(), err)
	}
	return Result{Success: true, Data: data}
}

// ExecuteCall decodes and runs a raw tool invocation.
func (e *Executor) ExecuteCall(ctx context.Context, tool string, arguments string) Result {
	cmd, err := Decode(tool, arguments)
	if err != nil {
		return failure(ctx, tool, err)
	}
	return e.Execute(ctx, cmd)
}

// HandleToolCalls answers each model tool call with a tool-role message.
func (e *Executor) HandleToolCalls(ctx context.Context, calls []openai.ToolCall) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(calls))
	for _, call := range calls {
		result := e.ExecuteCall(ctx, call.Function.Name, call.Function.Arguments)
		content, err := json.Marshal(result)
		if err != nil {
			content = []byte(`{"success":false,"error":"could not encode result"}`)
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    string(content),
			Name:       call.Function.Name,
			ToolCallID: call.ID,
		})
	}
	return out
}

func (e *Executor) addSale(ctx context.Context, c AddSale) (SaleData, error) {
	products, err := e.ops.ListProducts(ctx)
	if err != nil {
		return SaleData{}, err
	}

	req := domain.SaleRequest{
		PaymentMethod:  c.PaymentMethod,
		CreditTermDays: c.CreditTermDays,
		Items:          make([]domain.SaleItemRequest, 0, len(c.Items)),
	}
	for _, line := range c.Items {
		product, err := Resolve(products, productName, line.ProductName, "product")
		if err != nil {
			return SaleData{}, err
		}
		req.Items = append(req.Items, domain.SaleItemRequest{ProductID: product.ID, Quantity: line.Quantity})
	}

	var contactName string
	if c.ContactName != "" {
		contact, err := e.resolveContact(ctx, c.ContactName)
		if err != nil {
			return SaleData{}, err
		}
		req.ContactID = contact.ID
		contactName = contact.Name
	}

	tx, err := e.ops.CreateSale(ctx, req)
	if err != nil {
		return SaleData{}, err
	}
	return SaleData{
		TransactionID: tx.ID,
		InvoiceNumber: tx.InvoiceNumber,
		TotalAmount:   tx.TotalAmount,
		ContactName:   contactName,
	}, nil
}

func (e *Executor) addPayment(ctx context.Context, c AddPayment) (PaymentData, error) {
	contact, err := e.resolveContact(ctx, c.ContactName)
	if err != nil {
		return PaymentData{}, err
	}
	tx, err := e.ops.PayOldestDebt(ctx, contact.ID, c.Amount)
	if err != nil {
		return PaymentData{}, err
	}
	return PaymentData{
		TransactionID: tx.ID,
		InvoiceNumber: tx.InvoiceNumber,
		ContactName:   contact.Name,
		Paid:          c.Amount,
		Outstanding:   tx.Outstanding(),
	}, nil
}

func (e *Executor) updateProduct(ctx context.Context, c UpdateProduct) (domain.Product, error) {
	products, err := e.ops.ListProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	product, err := Resolve(products, productName, c.ProductName, "product")
	if err != nil {
		return domain.Product{}, err
	}
	return e.ops.UpdateProduct(ctx, product.ID, domain.ProductUpdateRequest{
		Name:  c.Name,
		Price: c.Price,
		Cost:  c.Cost,
		Stock: c.Stock,
	})
}

func (e *Executor) resolveContact(ctx context.Context, name string) (domain.Contact, error) {
	contacts, err := e.ops.ListContacts(ctx)
	if err != nil {
		return domain.Contact{}, err
	}
	return Resolve(contacts, func(c domain.Contact) string { return c.Name }, name, "contact")
}

func productName(p domain.Product) string {
	return p.Name
}

func failure(ctx context.Context, tool string, err error) Result {
	appErr, ok := apperr.As(err)
	if !ok {
		logger.Error(ctx, "assistant command failed", "tool", tool, "error", err)
		return Result{Success: false, Error: "internal error"}
	}
	if appErr.Kind == apperr.KindPersistence {
		logger.Warn(ctx, "assistant command not saved", "tool", tool, "error", err)
	}
	return Result{Success: false, Error: appErr.Message, Code: appErr.Kind, Details: appErr.Details}
}
